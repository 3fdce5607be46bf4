package account

import (
	"testing"

	"github.com/trezcool/shule/core"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("expected *core.ValidationError, got %T (%v)", err, err)
	}
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestLogin_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		login      Login
		want       Lookup
		wantFields []string
	}{
		{
			name:       "missing everything",
			login:      Login{},
			wantFields: []string{"role", "password"},
		},
		{
			name:       "bogus role",
			login:      Login{Role: "SUPERUSER", Password: "pwd"},
			wantFields: []string{"role"},
		},
		{
			name:       "student without roll number",
			login:      Login{Role: RoleStudent, Password: "pwd"},
			wantFields: []string{"rollNo"},
		},
		{
			name:       "admin without email",
			login:      Login{Role: RoleAdmin, Password: "pwd"},
			wantFields: []string{"email"},
		},
		{
			name:       "teacher without email",
			login:      Login{Role: RoleTeacher, Password: "pwd"},
			wantFields: []string{"email"},
		},
		{
			name:       "student without password",
			login:      Login{Role: RoleStudent, RollNo: "MCA001"},
			wantFields: []string{"password"},
		},
		{
			name:  "student resolves to roll number index",
			login: Login{Role: RoleStudent, RollNo: " MCA001 ", Password: "pwd"},
			want:  Lookup{Index: ByRollNo, Key: "MCA001"},
		},
		{
			name:  "admin resolves to email index, lowered",
			login: Login{Role: RoleAdmin, Email: " Admin@Test.CD ", Password: "pwd"},
			want:  Lookup{Index: ByEmail, Key: "admin@test.cd"},
		},
		{
			name:  "teacher resolves to email index",
			login: Login{Role: RoleTeacher, Email: "teacher@test.cd", Password: "pwd"},
			want:  Lookup{Index: ByEmail, Key: "teacher@test.cd"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.login.Resolve()
			if len(tt.wantFields) > 0 {
				if err == nil {
					t.Fatalf("Resolve() error = nil; want fields %v", tt.wantFields)
				}
				flds := fieldErrors(t, err)
				for _, f := range tt.wantFields {
					if _, ok := flds[f]; !ok {
						t.Errorf("Resolve() missing field error %q; got %v", f, flds)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestAccount_CheckPassword(t *testing.T) {
	var acct Account
	if err := acct.SetPassword("s3cret"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := acct.CheckPassword("s3cret"); err != nil {
		t.Errorf("CheckPassword() error = %v; want nil", err)
	}
	if err := acct.CheckPassword("nope"); err == nil {
		t.Error("CheckPassword() error = nil; want mismatch")
	}
}
