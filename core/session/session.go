package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

var (
	errInvalidToken = errors.New("invalid session token")

	nowFunc = time.Now // mockable
)

// Descriptor is the logical record of "who is this request acting as",
// carried entirely by client-held tokens; the server keeps no session table.
type Descriptor struct {
	AccountID string
	Role      account.Role
	Aux       string // public auxiliary id; advisory only, never authoritative
}

// Claims is the signed payload of the session token.
type Claims struct {
	jwt.StandardClaims
	Role account.Role `json:"role"`
	Aux  string       `json:"aux,omitempty"`
}

// Tokens is the set of client-held values issued at login.
// Session is a bearer secret; Role is the server-readable role tag; Aux is a
// client-readable convenience value (roll number / teacher profile id).
type Tokens struct {
	Session string
	Role    account.Role
	Aux     string
}

// Issuer builds and verifies signed session tokens.
type Issuer struct {
	appName    string
	signingKey []byte
}

func NewIssuer(conf *core.Config) *Issuer {
	return &Issuer{
		appName:    conf.AppName,
		signingKey: []byte(conf.SecretKey),
	}
}

// NewDescriptor builds the session Descriptor for a verified account.
// The auxiliary id is role-dependent: roll number for students, profile id
// for teachers, absent for admins.
func NewDescriptor(v account.Verified) Descriptor {
	desc := Descriptor{
		AccountID: v.AccountID,
		Role:      v.Role,
	}
	switch v.Role {
	case account.RoleStudent:
		desc.Aux = v.RollNo
	case account.RoleTeacher:
		desc.Aux = v.ProfileID
	}
	return desc
}

// Issue signs a session token for a verified account and returns the full
// token set to be attached to the response. It has no other side effect.
func (iss *Issuer) Issue(v account.Verified) (Tokens, error) {
	desc := NewDescriptor(v)
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:   iss.appName,
			Subject:  desc.AccountID,
			IssuedAt: nowFunc().Unix(),
		},
		Role: desc.Role,
		Aux:  desc.Aux,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(iss.signingKey)
	if err != nil {
		return Tokens{}, errors.Wrap(err, "signing session token")
	}
	return Tokens{Session: ss, Role: desc.Role, Aux: desc.Aux}, nil
}

// Verify parses a session token and returns its Descriptor.
// Any failure (bad signature, malformed value, unknown role) means the
// session is treated as absent.
func (iss *Issuer) Verify(tokenStr string) (Descriptor, error) {
	if tokenStr == "" {
		return Descriptor{}, errInvalidToken
	}

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return iss.signingKey, nil
	})
	if err != nil || !token.Valid {
		return Descriptor{}, errInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return Descriptor{}, errInvalidToken
	}

	return Descriptor{
		AccountID: claims.Subject,
		Role:      claims.Role,
		Aux:       claims.Aux,
	}, nil
}

// LandingPath determines the post-login target: an explicitly requested
// redirect wins when non-empty, otherwise each role lands in its own area.
func LandingPath(v account.Verified, redirect string) string {
	if redirect != "" {
		return redirect
	}
	switch v.Role {
	case account.RoleAdmin:
		return "/admin"
	case account.RoleTeacher:
		return "/teacher/" + v.ProfileID
	default:
		return "/student"
	}
}

// Teardown produces the cleared token set. Stateless by construction: there is
// nothing to reconcile server-side, so it always succeeds and is idempotent.
func Teardown() Tokens {
	return Tokens{}
}
