package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var (
	// credential failures; collapsed to one generic message at the API edge
	ErrNotFound     = errors.New("account not found")
	ErrBadPassword  = errors.New("password mismatch")
	ErrRoleMismatch = errors.New("account role does not match the claimed role")

	// server-side data-integrity fault, never reported as a credentials problem
	ErrLinkMissing = errors.New("account has no linked profile")

	// registration failures
	ErrAccountExists = errors.New("an account with this key already exists")
	ErrBadAdminCode  = errors.New("invalid admin registration code")
)

type (
	// Repository is the Credential Store: one getter per lookup index.
	Repository interface {
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		GetAccountByRollNo(ctx context.Context, rollNo string) (Account, error)
		CreateAccount(ctx context.Context, acct Account) (Account, error)
	}

	// ProfileStore creates the profile records accounts link to.
	ProfileStore interface {
		CreateStudentProfile(ctx context.Context, prof StudentProfile) (StudentProfile, error)
		CreateTeacherProfile(ctx context.Context, prof TeacherProfile) (TeacherProfile, error)
	}

	Service struct {
		logger   core.Logger
		repo     Repository
		profiles ProfileStore
		mailSvc  core.EmailService
	}
)

func NewService(logger core.Logger, repo Repository, profiles ProfileStore, mailSvc core.EmailService) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		profiles: profiles,
		mailSvc:  mailSvc,
	}
}

// Authenticate resolves the login request to a store lookup and verifies the
// presented password against the stored hash. The stored role is authoritative:
// a credential presented under a different role claim fails even when the
// password would match.
func (svc *Service) Authenticate(ctx context.Context, login Login) (Verified, error) {
	lookup, err := login.Resolve()
	if err != nil {
		return Verified{}, err
	}

	var acct Account
	switch lookup.Index {
	case ByRollNo:
		acct, err = svc.repo.GetAccountByRollNo(ctx, lookup.Key)
	default:
		acct, err = svc.repo.GetAccountByEmail(ctx, lookup.Key)
	}
	if err != nil {
		return Verified{}, err
	}

	if acct.Role != login.Role {
		return Verified{}, ErrRoleMismatch
	}
	if acct.Role != RoleAdmin && !acct.ProfileID.Valid {
		svc.logger.Error(fmt.Sprintf("account %s (%s) has no linked profile", acct.ID, acct.Role), ErrLinkMissing)
		return Verified{}, ErrLinkMissing
	}
	if err := acct.CheckPassword(login.Password); err != nil {
		return Verified{}, ErrBadPassword
	}

	return verified(acct), nil
}

// RegisterStudent creates a student profile and its linked account.
func (svc *Service) RegisterStudent(ctx context.Context, ns NewStudent) (Verified, error) {
	if err := ns.Validate(); err != nil {
		return Verified{}, err
	}
	if err := svc.checkKeyFree(ctx, Lookup{Index: ByRollNo, Key: ns.RollNo}); err != nil {
		return Verified{}, err
	}

	prof, err := svc.profiles.CreateStudentProfile(ctx, StudentProfile{
		ID:     uuid.New().String(),
		RollNo: ns.RollNo,
		Name:   ns.Name,
	})
	if err != nil {
		return Verified{}, err
	}

	acct := Account{
		Role:      RoleStudent,
		RollNo:    null.StringFrom(ns.RollNo),
		ProfileID: null.StringFrom(prof.ID),
	}
	acct, err = svc.create(ctx, acct, ns.Password)
	if err != nil {
		return Verified{}, err
	}
	return verified(acct), nil
}

// RegisterTeacher creates a teacher profile and its linked account.
func (svc *Service) RegisterTeacher(ctx context.Context, nt NewTeacher) (Verified, error) {
	if err := nt.Validate(); err != nil {
		return Verified{}, err
	}
	if err := svc.checkKeyFree(ctx, Lookup{Index: ByEmail, Key: nt.Email}); err != nil {
		return Verified{}, err
	}

	prof, err := svc.profiles.CreateTeacherProfile(ctx, TeacherProfile{
		ID:   uuid.New().String(),
		Name: nt.Name,
	})
	if err != nil {
		return Verified{}, err
	}

	acct := Account{
		Role:      RoleTeacher,
		Email:     null.StringFrom(nt.Email),
		ProfileID: null.StringFrom(prof.ID),
	}
	acct, err = svc.create(ctx, acct, nt.Password)
	if err != nil {
		return Verified{}, err
	}
	svc.sendWelcomeEmail(nt.Name, nt.Email)
	return verified(acct), nil
}

// RegisterAdmin creates an admin account. Admins carry no linked profile.
func (svc *Service) RegisterAdmin(ctx context.Context, na NewAdmin) (Verified, error) {
	if err := na.Validate(); err != nil {
		return Verified{}, err
	}
	if code := core.Conf.AdminRegCode; code != "" && na.AdminCode != code {
		return Verified{}, ErrBadAdminCode
	}
	if err := svc.checkKeyFree(ctx, Lookup{Index: ByEmail, Key: na.Email}); err != nil {
		return Verified{}, err
	}

	acct := Account{
		Role:  RoleAdmin,
		Email: null.StringFrom(na.Email),
	}
	acct, err := svc.create(ctx, acct, na.Password)
	if err != nil {
		return Verified{}, err
	}
	svc.sendWelcomeEmail("", na.Email)
	return verified(acct), nil
}

func (svc *Service) create(ctx context.Context, acct Account, pwd string) (Account, error) {
	now := time.Now().UTC()
	acct.ID = uuid.New().String()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	if err := acct.SetPassword(pwd); err != nil {
		return Account{}, err
	}
	return svc.repo.CreateAccount(ctx, acct)
}

func (svc *Service) checkKeyFree(ctx context.Context, lookup Lookup) error {
	var err error
	switch lookup.Index {
	case ByRollNo:
		_, err = svc.repo.GetAccountByRollNo(ctx, lookup.Key)
	default:
		_, err = svc.repo.GetAccountByEmail(ctx, lookup.Key)
	}
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrAccountExists
}

func (svc *Service) sendWelcomeEmail(name, email string) {
	if email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: name, Address: email}},
		Subject: "Welcome!",
		BodyStr: "Your " + core.Conf.AppName + " account has been created. You can now log in to the portal.",
	})
}

func verified(acct Account) Verified {
	v := Verified{
		AccountID: acct.ID,
		Role:      acct.Role,
	}
	switch acct.Role {
	case RoleStudent:
		v.RollNo = acct.RollNo.String
	case RoleTeacher:
		v.ProfileID = acct.ProfileID.String
	}
	return v
}
