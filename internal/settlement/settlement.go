// Package settlement connects the register service to the token ledger.
package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
)

// ErrNilLedger is returned when the adapter is built without a ledger.
var ErrNilLedger = errors.New("settlement: ledger is nil")

// Ledger is the subset of *token.Ledger the register settles against.
type Ledger interface {
	Transfer(ctx context.Context, from token.Account, to token.Account, amount token.Amount) (token.TransferRecord, error)
	TransferFrom(ctx context.Context, spender token.Account, from token.Account, to token.Account, amount token.Amount) (token.TransferRecord, error)
	BalanceOf(ctx context.Context, account token.Account) (token.Amount, error)
}

// Tokens implements register.TokenService over a token ledger.
type Tokens struct {
	ledger Ledger
}

// New returns an adapter over ledger.
func New(ledger Ledger) (*Tokens, error) {
	if ledger == nil {
		return nil, ErrNilLedger
	}
	return &Tokens{ledger: ledger}, nil
}

// TransferFrom moves amount from one principal to another using spender's allowance.
func (tokens *Tokens) TransferFrom(ctx context.Context, spender register.Principal, from register.Principal, to register.Principal, amount register.Amount) error {
	spenderAccount, err := Account(spender)
	if err != nil {
		return err
	}
	fromAccount, err := Account(from)
	if err != nil {
		return err
	}
	toAccount, err := Account(to)
	if err != nil {
		return err
	}
	tokenAmount, err := token.NewAmount(amount.Int64())
	if err != nil {
		return err
	}
	_, err = tokens.ledger.TransferFrom(ctx, spenderAccount, fromAccount, toAccount, tokenAmount)
	return err
}

// Transfer moves amount out of from's balance.
func (tokens *Tokens) Transfer(ctx context.Context, from register.Principal, to register.Principal, amount register.Amount) error {
	fromAccount, err := Account(from)
	if err != nil {
		return err
	}
	toAccount, err := Account(to)
	if err != nil {
		return err
	}
	tokenAmount, err := token.NewAmount(amount.Int64())
	if err != nil {
		return err
	}
	_, err = tokens.ledger.Transfer(ctx, fromAccount, toAccount, tokenAmount)
	return err
}

// BalanceOf returns the token balance of account.
func (tokens *Tokens) BalanceOf(ctx context.Context, account register.Principal) (register.Amount, error) {
	tokenAccount, err := Account(account)
	if err != nil {
		return 0, err
	}
	balance, err := tokens.ledger.BalanceOf(ctx, tokenAccount)
	if err != nil {
		return 0, err
	}
	amount, err := register.NewAmount(balance.Int64())
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", account, err)
	}
	return amount, nil
}

// Account converts a register principal into a token account.
func Account(principal register.Principal) (token.Account, error) {
	return token.NewAccount(principal.String())
}
