package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/account"
)

type (
	DB struct {
		accounts *accountTable
		profiles *profileTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
	}

	profileTable struct {
		sync.RWMutex
		students map[string]*account.StudentProfile
		teachers map[string]*account.TeacherProfile
	}
)

func Open() (*DB, error) {
	db := &DB{
		accounts: &accountTable{table: make(map[string]*account.Account)},
		profiles: &profileTable{
			students: make(map[string]*account.StudentProfile),
			teachers: make(map[string]*account.TeacherProfile),
		},
	}
	return db, nil
}
