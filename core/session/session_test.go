package session

import (
	"strings"
	"testing"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

func testIssuer() *Issuer {
	conf := *core.Conf
	conf.SecretKey = "test-secret"
	return NewIssuer(&conf)
}

func TestIssuer_IssueVerify(t *testing.T) {
	iss := testIssuer()

	tests := []struct {
		name     string
		verified account.Verified
		wantAux  string
	}{
		{
			name:     "admin has no auxiliary id",
			verified: account.Verified{AccountID: "acct-1", Role: account.RoleAdmin},
		},
		{
			name:     "teacher aux is the profile id",
			verified: account.Verified{AccountID: "acct-2", Role: account.RoleTeacher, ProfileID: "prof-1"},
			wantAux:  "prof-1",
		},
		{
			name:     "student aux is the roll number",
			verified: account.Verified{AccountID: "acct-3", Role: account.RoleStudent, RollNo: "MCA001"},
			wantAux:  "MCA001",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := iss.Issue(tt.verified)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			if tokens.Session == "" {
				t.Fatal("Issue() produced an empty session token")
			}
			if tokens.Role != tt.verified.Role {
				t.Errorf("Issue() role tag = %s; want %s", tokens.Role, tt.verified.Role)
			}
			if tokens.Aux != tt.wantAux {
				t.Errorf("Issue() aux = %q; want %q", tokens.Aux, tt.wantAux)
			}

			desc, err := iss.Verify(tokens.Session)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			want := Descriptor{AccountID: tt.verified.AccountID, Role: tt.verified.Role, Aux: tt.wantAux}
			if desc != want {
				t.Errorf("Verify() = %+v; want %+v", desc, want)
			}
		})
	}
}

func TestIssuer_Verify_rejects(t *testing.T) {
	iss := testIssuer()

	tokens, err := iss.Issue(account.Verified{AccountID: "acct-1", Role: account.RoleStudent, RollNo: "MCA001"})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// token signed with a different key
	other := *core.Conf
	other.SecretKey = "other-secret"
	foreign, err := NewIssuer(&other).Issue(account.Verified{AccountID: "acct-1", Role: account.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// tampered payload: flip a character in the claims segment
	parts := strings.SplitN(tokens.Session, ".", 3)
	tampered := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty"},
		{name: "garbage", token: "lmaooolol"},
		{name: "not a jwt", token: "a.b.c"},
		{name: "foreign signature", token: foreign.Session},
		{name: "tampered claims", token: tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iss.Verify(tt.token); err == nil {
				t.Error("Verify() error = nil; want rejection")
			}
		})
	}
}

func TestLandingPath(t *testing.T) {
	admin := account.Verified{AccountID: "a", Role: account.RoleAdmin}
	teacher := account.Verified{AccountID: "t", Role: account.RoleTeacher, ProfileID: "prof-1"}
	student := account.Verified{AccountID: "s", Role: account.RoleStudent, RollNo: "MCA001"}

	tests := []struct {
		name     string
		verified account.Verified
		redirect string
		want     string
	}{
		{name: "admin lands on admin root", verified: admin, want: "/admin"},
		{name: "teacher lands on own page", verified: teacher, want: "/teacher/prof-1"},
		{name: "student lands on student root", verified: student, want: "/student"},
		{name: "requested target wins", verified: student, redirect: "/MCA001/profile", want: "/MCA001/profile"},
		{name: "requested target wins for admin too", verified: admin, redirect: "/admin/students", want: "/admin/students"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LandingPath(tt.verified, tt.redirect); got != tt.want {
				t.Errorf("LandingPath() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestTeardown(t *testing.T) {
	// idempotent: tearing down twice yields the same cleared token set
	if Teardown() != (Tokens{}) || Teardown() != (Tokens{}) {
		t.Error("Teardown() returned non-empty tokens")
	}
}
