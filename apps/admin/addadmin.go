package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

// addAdmin creates an admin account, bypassing the registration code gate.
func (cli *commandLine) addAdmin(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.acctRepo.GetAccountByEmail(ctx, email); err == nil {
		return account.ErrAccountExists
	} else if err != account.ErrNotFound {
		return err
	}

	now := time.Now().UTC()
	acct := account.Account{
		ID:        uuid.New().String(),
		Role:      account.RoleAdmin,
		Email:     null.StringFrom(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.acctRepo.CreateAccount(ctx, acct)
	return err
}
