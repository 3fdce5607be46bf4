package dummydb

import (
	"context"

	"github.com/trezcool/shule/core/account"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.accounts}
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acct := range repo.db.table {
		if acct.Email.Valid && acct.Email.String == email {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByRollNo(ctx context.Context, rollNo string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acct := range repo.db.table {
		if acct.RollNo.Valid && acct.RollNo.String == rollNo {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[acct.ID] = &acct
	return acct, nil
}

type profileStore struct {
	db *profileTable
}

var _ account.ProfileStore = (*profileStore)(nil) // interface compliance check

func NewProfileStore(db *DB) account.ProfileStore {
	return &profileStore{db: db.profiles}
}

func (store *profileStore) CreateStudentProfile(ctx context.Context, prof account.StudentProfile) (account.StudentProfile, error) {
	store.db.Lock()
	defer store.db.Unlock()

	store.db.students[prof.ID] = &prof
	return prof, nil
}

func (store *profileStore) CreateTeacherProfile(ctx context.Context, prof account.TeacherProfile) (account.TeacherProfile, error) {
	store.db.Lock()
	defer store.db.Unlock()

	store.db.teachers[prof.ID] = &prof
	return prof, nil
}
