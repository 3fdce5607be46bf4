package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/account"
)

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

const accountColumns = `id, role, email, roll_no, profile_id, password_hash, created_at, updated_at`

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	var acct account.Account
	err := repo.db.GetContext(ctx, &acct,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "getting account by email")
	}
	return acct, nil
}

func (repo *accountRepository) GetAccountByRollNo(ctx context.Context, rollNo string) (account.Account, error) {
	var acct account.Account
	err := repo.db.GetContext(ctx, &acct,
		`SELECT `+accountColumns+` FROM accounts WHERE roll_no = $1`, rollNo)
	if err == sql.ErrNoRows {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "getting account by roll number")
	}
	return acct, nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO accounts (id, role, email, roll_no, profile_id, password_hash, created_at, updated_at)
		 VALUES (:id, :role, :email, :roll_no, :profile_id, :password_hash, :created_at, :updated_at)`, acct)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "creating account")
	}
	return acct, nil
}

type profileStore struct {
	db *sqlx.DB
}

var _ account.ProfileStore = (*profileStore)(nil) // interface compliance check

func NewProfileStore(db *sqlx.DB) account.ProfileStore {
	return &profileStore{db: db}
}

func (store *profileStore) CreateStudentProfile(ctx context.Context, prof account.StudentProfile) (account.StudentProfile, error) {
	_, err := store.db.NamedExecContext(ctx,
		`INSERT INTO student_profiles (id, roll_no, name) VALUES (:id, :roll_no, :name)`, prof)
	if err != nil {
		return account.StudentProfile{}, errors.Wrap(err, "creating student profile")
	}
	return prof, nil
}

func (store *profileStore) CreateTeacherProfile(ctx context.Context, prof account.TeacherProfile) (account.TeacherProfile, error) {
	_, err := store.db.NamedExecContext(ctx,
		`INSERT INTO teacher_profiles (id, name) VALUES (:id, :name)`, prof)
	if err != nil {
		return account.TeacherProfile{}, errors.Wrap(err, "creating teacher profile")
	}
	return prof, nil
}
