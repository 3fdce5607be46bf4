package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/session"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

var errInvalidCredentials = httpErr{Error: "invalid credentials"}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

type mailRecorder struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

func setup(t *testing.T) (Server, account.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewAccountRepository(db)
	acctSvc := account.NewService(testLogger{}, repo, dummydb.NewProfileStore(db), new(mailRecorder))

	srv := NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         testLogger{},
			AccountSvc:     acctSvc,
			Issuer:         session.NewIssuer(core.Conf),
		},
	)
	return srv, repo
}

func createAccount(t *testing.T, repo account.Repository, role account.Role, email, rollNo, pwd, profileID string) account.Account {
	now := time.Now().UTC()
	acct := account.Account{
		ID:        uuid.New().String(),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if email != "" {
		acct.Email = null.StringFrom(email)
	}
	if rollNo != "" {
		acct.RollNo = null.StringFrom(rollNo)
	}
	if profileID != "" {
		acct.ProfileID = null.StringFrom(profileID)
	}
	if err := acct.SetPassword(pwd); err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	acct, err := repo.CreateAccount(context.Background(), acct)
	if err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	return acct
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookies  []*http.Cookie
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// login logs the given credentials in and returns the issued cookies.
func login(t *testing.T, srv Server, creds account.Login) []*http.Cookie {
	req, rec := newRequest(http.MethodPost, "/api/login", marchallObj(t, creds))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login() failed: code = %v; body = %v", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func getCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
