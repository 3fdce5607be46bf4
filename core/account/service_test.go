package account_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

type testLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *testLogger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *testLogger) Debug(msg string, args ...interface{}) {}
func (l *testLogger) Info(msg string, args ...interface{})  {}
func (l *testLogger) Warn(msg string, args ...interface{})  {}
func (l *testLogger) Error(msg string, args ...interface{}) { l.log(msg) }
func (l *testLogger) Fatal(msg string, args ...interface{}) { l.log(msg) }

type mailRecorder struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

func setup(t *testing.T) (*account.Service, account.Repository, *testLogger, *mailRecorder) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewAccountRepository(db)
	logger := new(testLogger)
	mail := new(mailRecorder)
	svc := account.NewService(logger, repo, dummydb.NewProfileStore(db), mail)
	return svc, repo, logger, mail
}

func createAccount(t *testing.T, repo account.Repository, role account.Role, email, rollNo, pwd, profileID string) account.Account {
	t.Helper()
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

func TestService_Authenticate(t *testing.T) {
	svc, repo, logger, _ := setup(t)
	ctx := context.Background()

	admin := createAccount(t, repo, account.RoleAdmin, "admin@test.cd", "", "adminpwd", "")
	teacher := createAccount(t, repo, account.RoleTeacher, "teacher@test.cd", "", "teacherpwd", "prof-1")
	student := createAccount(t, repo, account.RoleStudent, "", "MCA001", "studentpwd", "prof-2")
	createAccount(t, repo, account.RoleTeacher, "unlinked@test.cd", "", "teacherpwd", "")
	createAccount(t, repo, account.RoleStudent, "", "MCA002", "studentpwd", "")

	tests := []struct {
		name    string
		login   account.Login
		want    account.Verified
		wantErr error
	}{
		{
			name:  "admin ok",
			login: account.Login{Role: account.RoleAdmin, Email: "admin@test.cd", Password: "adminpwd"},
			want:  account.Verified{AccountID: admin.ID, Role: account.RoleAdmin},
		},
		{
			name:  "teacher ok carries profile id",
			login: account.Login{Role: account.RoleTeacher, Email: "teacher@test.cd", Password: "teacherpwd"},
			want:  account.Verified{AccountID: teacher.ID, Role: account.RoleTeacher, ProfileID: "prof-1"},
		},
		{
			name:  "student ok carries roll number",
			login: account.Login{Role: account.RoleStudent, RollNo: "MCA001", Password: "studentpwd"},
			want:  account.Verified{AccountID: student.ID, Role: account.RoleStudent, RollNo: "MCA001"},
		},
		{
			name:    "unknown email",
			login:   account.Login{Role: account.RoleAdmin, Email: "ghost@test.cd", Password: "adminpwd"},
			wantErr: account.ErrNotFound,
		},
		{
			name:    "unknown roll number",
			login:   account.Login{Role: account.RoleStudent, RollNo: "MCA999", Password: "studentpwd"},
			wantErr: account.ErrNotFound,
		},
		{
			name:    "wrong password",
			login:   account.Login{Role: account.RoleAdmin, Email: "admin@test.cd", Password: "nope"},
			wantErr: account.ErrBadPassword,
		},
		{
			// the stored role is authoritative: a correct password never
			// rescues a wrong role claim
			name:    "teacher creds under admin claim",
			login:   account.Login{Role: account.RoleAdmin, Email: "teacher@test.cd", Password: "teacherpwd"},
			wantErr: account.ErrRoleMismatch,
		},
		{
			name:    "unlinked teacher fails with integrity error",
			login:   account.Login{Role: account.RoleTeacher, Email: "unlinked@test.cd", Password: "teacherpwd"},
			wantErr: account.ErrLinkMissing,
		},
		{
			name:    "unlinked student fails even with wrong password",
			login:   account.Login{Role: account.RoleStudent, RollNo: "MCA002", Password: "nope"},
			wantErr: account.ErrLinkMissing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.login)
			if err != tt.wantErr {
				t.Fatalf("Authenticate() error = %v; wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Authenticate() = %+v; want %+v", got, tt.want)
			}
		})
	}

	// integrity failures must be reported for operator attention
	if len(logger.errors) != 2 {
		t.Errorf("logged integrity errors = %d; want 2", len(logger.errors))
	}
}

func TestService_Authenticate_invalidInput(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Authenticate(context.Background(), account.Login{Role: account.RoleStudent})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("Authenticate() error = %T (%v); want *core.ValidationError", err, err)
	}
}

func TestService_RegisterStudent(t *testing.T) {
	svc, _, _, mail := setup(t)
	ctx := context.Background()

	v, err := svc.RegisterStudent(ctx, account.NewStudent{Name: "Hero", RollNo: "MCA001", Password: "pwd"})
	if err != nil {
		t.Fatalf("RegisterStudent() error = %v", err)
	}
	if v.Role != account.RoleStudent || v.RollNo != "MCA001" {
		t.Errorf("RegisterStudent() = %+v; want STUDENT/MCA001", v)
	}

	// the new account can log in right away
	got, err := svc.Authenticate(ctx, account.Login{Role: account.RoleStudent, RollNo: "MCA001", Password: "pwd"})
	if err != nil {
		t.Fatalf("Authenticate() after register error = %v", err)
	}
	if got.AccountID != v.AccountID {
		t.Errorf("Authenticate() account = %s; want %s", got.AccountID, v.AccountID)
	}

	// no email on file, no welcome mail
	if len(mail.sent) != 0 {
		t.Errorf("welcome mails sent = %d; want 0", len(mail.sent))
	}

	// duplicate roll number
	if _, err = svc.RegisterStudent(ctx, account.NewStudent{Name: "Copy", RollNo: "MCA001", Password: "pwd"}); err != account.ErrAccountExists {
		t.Errorf("RegisterStudent() duplicate error = %v; want %v", err, account.ErrAccountExists)
	}
}

func TestService_RegisterTeacher(t *testing.T) {
	svc, _, _, mail := setup(t)
	ctx := context.Background()

	v, err := svc.RegisterTeacher(ctx, account.NewTeacher{Name: "Teacher", Email: "Teacher@Test.CD", Password: "pwd"})
	if err != nil {
		t.Fatalf("RegisterTeacher() error = %v", err)
	}
	if v.Role != account.RoleTeacher || v.ProfileID == "" {
		t.Errorf("RegisterTeacher() = %+v; want TEACHER with profile id", v)
	}
	if len(mail.sent) != 1 {
		t.Errorf("welcome mails sent = %d; want 1", len(mail.sent))
	}

	// email was lowered on the way in
	if _, err := svc.Authenticate(ctx, account.Login{Role: account.RoleTeacher, Email: "teacher@test.cd", Password: "pwd"}); err != nil {
		t.Errorf("Authenticate() after register error = %v", err)
	}
}

func TestService_RegisterAdmin(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	origCode := core.Conf.AdminRegCode
	core.Conf.AdminRegCode = "s3cret"
	defer func() { core.Conf.AdminRegCode = origCode }()

	if _, err := svc.RegisterAdmin(ctx, account.NewAdmin{Email: "admin@test.cd", Password: "pwd"}); err != account.ErrBadAdminCode {
		t.Errorf("RegisterAdmin() without code error = %v; want %v", err, account.ErrBadAdminCode)
	}
	if _, err := svc.RegisterAdmin(ctx, account.NewAdmin{Email: "admin@test.cd", Password: "pwd", AdminCode: "nope"}); err != account.ErrBadAdminCode {
		t.Errorf("RegisterAdmin() with bad code error = %v; want %v", err, account.ErrBadAdminCode)
	}

	v, err := svc.RegisterAdmin(ctx, account.NewAdmin{Email: "admin@test.cd", Password: "pwd", AdminCode: "s3cret"})
	if err != nil {
		t.Fatalf("RegisterAdmin() error = %v", err)
	}
	if v.Role != account.RoleAdmin || v.ProfileID != "" || v.RollNo != "" {
		t.Errorf("RegisterAdmin() = %+v; want bare ADMIN", v)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.RegisterStudent(ctx, account.NewStudent{Name: "X"}); err == nil {
		t.Error("RegisterStudent() error = nil; want validation error")
	}
	if _, err := svc.RegisterTeacher(ctx, account.NewTeacher{Name: "X", Email: "not-an-email", Password: "pwd"}); err == nil {
		t.Error("RegisterTeacher() error = nil; want validation error")
	}
	if _, err := svc.RegisterAdmin(ctx, account.NewAdmin{}); err == nil {
		t.Error("RegisterAdmin() error = nil; want validation error")
	}
}
