package application_test

import (
	"context"
	"crypto/ed25519"
	"errors"
	"strconv"
	"testing"
	"time"

	balanceledger "mystic/contexts/finance-core/balance-ledger"
	balanceerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"
	"mystic/contexts/finance-core/payment-ledger/adapters/memory"
	"mystic/contexts/finance-core/payment-ledger/application"
	domainerrors "mystic/contexts/finance-core/payment-ledger/domain/errors"
	"mystic/internal/shared/authsig"

	"github.com/shopspring/decimal"
)

const custodyAccount = "custody-vault"

type accessStub struct {
	operators map[string]bool
}

func (a accessStub) RequireOperator(_ context.Context, account string) error {
	if !a.operators[account] {
		return errors.New("caller is missing the required role")
	}
	return nil
}

func (a accessStub) OperatorAccounts(_ context.Context) ([]string, error) {
	accounts := make([]string, 0, len(a.operators))
	for account := range a.operators {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type fixture struct {
	service *application.Service
	ledger  balanceledger.Module
	now     time.Time
}

func newFixture(t *testing.T, operators ...string) fixture {
	t.Helper()
	access := accessStub{operators: make(map[string]bool)}
	for _, account := range operators {
		access.operators[account] = true
	}
	ledger := balanceledger.NewInMemoryModule(nil)
	store := memory.NewStore()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	service := &application.Service{
		Ledger:  ledger.Service,
		Nonces:  store,
		Access:  access,
		IDGen:   store,
		Clock:   fixedClock{now: now},
		Custody: custodyAccount,
	}
	return fixture{service: service, ledger: ledger, now: now}
}

func newOperatorKey(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	account, priv, err := authsig.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	return account, priv
}

func signClaim(priv ed25519.PrivateKey, account string, amount decimal.Decimal, nonce uint64, expiry int64) []byte {
	digest := authsig.Digest(authsig.PurposeClaimWithdraw,
		account,
		amount.String(),
		strconv.FormatUint(nonce, 10),
		strconv.FormatInt(expiry, 10),
	)
	return authsig.Sign(priv, digest)
}

func mustBalance(t *testing.T, f fixture, account string) decimal.Decimal {
	t.Helper()
	balance, err := f.ledger.Service.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s: %v", account, err)
	}
	return balance
}

func TestDepositMovesFundsIntoCustody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(500)

	if err := f.ledger.Service.Mint(ctx, "alice", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.ledger.Service.Approve(ctx, "alice", custodyAccount, amount); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.service.Deposit(ctx, "alice", amount); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if got := mustBalance(t, f, custodyAccount); !got.Equal(amount) {
		t.Fatalf("custody balance = %s, want %s", got, amount)
	}
	if got := mustBalance(t, f, "alice"); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("alice balance = %s, want 500", got)
	}
}

func TestDepositRejectsZeroAmount(t *testing.T) {
	f := newFixture(t)
	err := f.service.Deposit(context.Background(), "alice", decimal.Zero)
	if !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("deposit zero error = %v, want ErrInvalidAmount", err)
	}
}

func TestDepositRequiresAllowance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.ledger.Service.Mint(ctx, "alice", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	err := f.service.Deposit(ctx, "alice", decimal.NewFromInt(100))
	if !errors.Is(err, domainerrors.ErrInsufficientAllowance) {
		t.Fatalf("deposit error = %v, want ErrInsufficientAllowance", err)
	}
	if got := mustBalance(t, f, custodyAccount); !got.IsZero() {
		t.Fatalf("custody balance = %s, want 0", got)
	}
}

func TestWithdrawRequiresOperator(t *testing.T) {
	f := newFixture(t, "operator-1")
	ctx := context.Background()

	if err := f.ledger.Service.Mint(ctx, custodyAccount, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.service.Withdraw(ctx, "alice", "alice", decimal.NewFromInt(100)); err == nil {
		t.Fatal("expected withdraw by non-operator to fail")
	}
	if err := f.service.Withdraw(ctx, "operator-1", "alice", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("operator withdraw: %v", err)
	}
	if got := mustBalance(t, f, "alice"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("alice balance = %s, want 100", got)
	}
}

func TestClaimWithdrawHappyPath(t *testing.T) {
	operator, priv := newOperatorKey(t)
	f := newFixture(t, operator)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)
	expiry := f.now.Add(time.Hour).Unix()

	if err := f.ledger.Service.Mint(ctx, custodyAccount, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	signature := signClaim(priv, "alice", amount, 0, expiry)
	if err := f.service.ClaimWithdraw(ctx, "alice", amount, 0, expiry, signature); err != nil {
		t.Fatalf("claim withdraw: %v", err)
	}

	if got := mustBalance(t, f, "alice"); !got.Equal(amount) {
		t.Fatalf("alice balance = %s, want %s", got, amount)
	}
	nonce, err := f.service.NonceOf(ctx, "alice")
	if err != nil {
		t.Fatalf("nonce of: %v", err)
	}
	if nonce != 1 {
		t.Fatalf("nonce = %d, want 1", nonce)
	}
}

func TestClaimWithdrawReplayFails(t *testing.T) {
	operator, priv := newOperatorKey(t)
	f := newFixture(t, operator)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)
	expiry := f.now.Add(time.Hour).Unix()

	if err := f.ledger.Service.Mint(ctx, custodyAccount, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	signature := signClaim(priv, "alice", amount, 0, expiry)
	if err := f.service.ClaimWithdraw(ctx, "alice", amount, 0, expiry, signature); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	err := f.service.ClaimWithdraw(ctx, "alice", amount, 0, expiry, signature)
	if !errors.Is(err, domainerrors.ErrInvalidNonce) {
		t.Fatalf("replay error = %v, want ErrInvalidNonce", err)
	}
	// Only the first claim paid out.
	if got := mustBalance(t, f, "alice"); !got.Equal(amount) {
		t.Fatalf("alice balance = %s, want %s", got, amount)
	}
}

func TestClaimWithdrawRejectsFutureNonce(t *testing.T) {
	operator, priv := newOperatorKey(t)
	f := newFixture(t, operator)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)
	expiry := f.now.Add(time.Hour).Unix()

	if err := f.ledger.Service.Mint(ctx, custodyAccount, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	// Nonce 5 is validly signed but ahead of the stored counter.
	signature := signClaim(priv, "alice", amount, 5, expiry)
	err := f.service.ClaimWithdraw(ctx, "alice", amount, 5, expiry, signature)
	if !errors.Is(err, domainerrors.ErrInvalidNonce) {
		t.Fatalf("future nonce error = %v, want ErrInvalidNonce", err)
	}
}

func TestClaimWithdrawRejectsExpired(t *testing.T) {
	operator, priv := newOperatorKey(t)
	f := newFixture(t, operator)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)

	if err := f.ledger.Service.Mint(ctx, custodyAccount, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Expiry exactly at the current instant is already rejected.
	expiry := f.now.Unix()
	signature := signClaim(priv, "alice", amount, 0, expiry)
	err := f.service.ClaimWithdraw(ctx, "alice", amount, 0, expiry, signature)
	if !errors.Is(err, domainerrors.ErrExpired) {
		t.Fatalf("expiry-at-now error = %v, want ErrExpired", err)
	}

	// The nonce was not consumed by the failed attempt.
	nonce, err := f.service.NonceOf(ctx, "alice")
	if err != nil {
		t.Fatalf("nonce of: %v", err)
	}
	if nonce != 0 {
		t.Fatalf("nonce = %d, want 0", nonce)
	}
}

func TestClaimWithdrawKeepsNonceWhenCustodyCannotPay(t *testing.T) {
	operator, priv := newOperatorKey(t)
	f := newFixture(t, operator)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)
	expiry := f.now.Add(time.Hour).Unix()

	// Custody holds nothing, so the payout cannot settle. The authorization
	// must survive: a consumed nonce with no payout would burn it for good.
	signature := signClaim(priv, "carol", amount, 0, expiry)
	err := f.service.ClaimWithdraw(ctx, "carol", amount, 0, expiry, signature)
	if !errors.Is(err, balanceerrors.ErrInsufficientBalance) {
		t.Fatalf("claim error = %v, want ledger ErrInsufficientBalance", err)
	}
	nonce, err := f.service.NonceOf(ctx, "carol")
	if err != nil {
		t.Fatalf("nonce of: %v", err)
	}
	if nonce != 0 {
		t.Fatalf("nonce after failed payout = %d, want 0", nonce)
	}
	if got := mustBalance(t, f, "carol"); !got.IsZero() {
		t.Fatalf("carol balance = %s, want 0", got)
	}

	// Once custody is funded the very same authorization pays out.
	if err := f.ledger.Service.Mint(ctx, custodyAccount, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.service.ClaimWithdraw(ctx, "carol", amount, 0, expiry, signature); err != nil {
		t.Fatalf("claim after funding custody: %v", err)
	}
	if got := mustBalance(t, f, "carol"); !got.Equal(amount) {
		t.Fatalf("carol balance = %s, want %s", got, amount)
	}
}

func TestClaimWithdrawSignatureBindsEveryParameter(t *testing.T) {
	operator, priv := newOperatorKey(t)
	f := newFixture(t, operator)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)
	expiry := f.now.Add(time.Hour).Unix()

	if err := f.ledger.Service.Mint(ctx, custodyAccount, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	signature := signClaim(priv, "alice", amount, 0, expiry)

	cases := []struct {
		name    string
		caller  string
		amount  decimal.Decimal
		nonce   uint64
		expiry  int64
		wantErr error
	}{
		{"different caller", "bob", amount, 0, expiry, domainerrors.ErrVerificationFailed},
		{"inflated amount", "alice", decimal.NewFromInt(9999), 0, expiry, domainerrors.ErrVerificationFailed},
		{"shifted expiry", "alice", amount, 0, expiry + 3600, domainerrors.ErrVerificationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.service.ClaimWithdraw(ctx, tc.caller, tc.amount, tc.nonce, tc.expiry, signature)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestClaimWithdrawRejectsNonOperatorSignature(t *testing.T) {
	operator, _ := newOperatorKey(t)
	_, rogue := newOperatorKey(t)
	f := newFixture(t, operator)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)
	expiry := f.now.Add(time.Hour).Unix()

	signature := signClaim(rogue, "alice", amount, 0, expiry)
	err := f.service.ClaimWithdraw(ctx, "alice", amount, 0, expiry, signature)
	if !errors.Is(err, domainerrors.ErrVerificationFailed) {
		t.Fatalf("rogue signature error = %v, want ErrVerificationFailed", err)
	}
}
