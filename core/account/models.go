package account

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

// Role is the closed set of portal roles. It is authoritative from the store:
// a client-claimed role is never written into a session without verification.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Index names a Credential Store lookup strategy.
type Index string

const (
	ByEmail  Index = "by-email"
	ByRollNo Index = "by-roll-number"
)

// Lookup is a resolved Credential Store query: which index to hit and with what key.
type Lookup struct {
	Index Index
	Key   string
}

// Account is a credential record. Exactly one identifying key is set per
// scheme: Email for ADMIN/TEACHER, RollNo for STUDENT. ProfileID links to the
// teacher/student profile record and is absent for ADMIN.
type Account struct {
	ID           string      `json:"id" db:"id"`
	Role         Role        `json:"role" db:"role"`
	Email        null.String `json:"email" db:"email"`
	RollNo       null.String `json:"roll_no" db:"roll_no"`
	ProfileID    null.String `json:"profile_id" db:"profile_id"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// Verified is a role-agnostic, authenticated account: the single input to
// session issuance for all three login schemes.
type Verified struct {
	AccountID string
	Role      Role
	ProfileID string // teacher profile id; empty otherwise
	RollNo    string // student roll number; empty otherwise
}

// StudentProfile and TeacherProfile are the narrow profile-store records this
// core needs; the wider portal data (departments, years, ...) lives elsewhere.
type StudentProfile struct {
	ID     string `json:"id" db:"id"`
	RollNo string `json:"roll_no" db:"roll_no"`
	Name   string `json:"name" db:"name"`
}

type TeacherProfile struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Login contains the credentials presented by a login request.
// The identifying field is role-dependent: Email for ADMIN/TEACHER,
// RollNo for STUDENT.
type Login struct {
	Role     Role   `json:"role"`
	Email    string `json:"email"`
	RollNo   string `json:"rollNo"`
	Password string `json:"password"`
	Redirect string `json:"redirect"`
}

// Resolve validates the request and maps it to a Credential Store lookup.
// It runs before any store access; an invalid request never triggers a lookup.
func (l *Login) Resolve() (Lookup, error) {
	l.Email = core.CleanString(l.Email, true /* lower */)
	l.RollNo = core.CleanString(l.RollNo)
	l.Redirect = core.CleanString(l.Redirect)

	var flds []core.FieldError
	if !l.Role.Valid() {
		flds = append(flds, core.FieldError{Field: "role", Error: "a valid role is required"})
	}
	if l.Password == "" {
		flds = append(flds, core.FieldError{Field: "password", Error: "this field is required"})
	}

	var lookup Lookup
	switch l.Role {
	case RoleStudent:
		if l.RollNo == "" {
			flds = append(flds, core.FieldError{Field: "rollNo", Error: "this field is required"})
		}
		lookup = Lookup{Index: ByRollNo, Key: l.RollNo}
	case RoleAdmin, RoleTeacher:
		if l.Email == "" {
			flds = append(flds, core.FieldError{Field: "email", Error: "this field is required"})
		}
		lookup = Lookup{Index: ByEmail, Key: l.Email}
	}

	if len(flds) > 0 {
		return Lookup{}, core.NewValidationError(nil, flds...)
	}
	return lookup, nil
}

// NewStudent contains information needed to register a new student account.
type NewStudent struct {
	Name     string `json:"name" validate:"required"`
	RollNo   string `json:"rollNo" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.RollNo = core.CleanString(ns.RollNo)
	return core.Validate.Struct(ns)
}

// NewTeacher contains information needed to register a new teacher account.
type NewTeacher struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return core.Validate.Struct(nt)
}

// NewAdmin contains information needed to register a new admin account.
// AdminCode must match the configured registration code when one is set.
type NewAdmin struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	AdminCode string `json:"adminCode"`
}

func (na *NewAdmin) Validate() error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	return core.Validate.Struct(na)
}
