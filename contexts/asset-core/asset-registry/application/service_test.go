package application_test

import (
	"context"
	"crypto/ed25519"
	"errors"
	"strconv"
	"testing"

	"mystic/contexts/asset-core/asset-registry/adapters/memory"
	"mystic/contexts/asset-core/asset-registry/application"
	domainerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
	"mystic/internal/shared/authsig"
)

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

func newTestService(t *testing.T, operators ...string) (*application.Service, *memory.Store) {
	t.Helper()
	access := accessStub{operators: make(map[string]bool)}
	for _, account := range operators {
		access.operators[account] = true
	}
	store := memory.NewStore("https://assets.example/")
	service := &application.Service{
		Repo:   store,
		Access: access,
		IDGen:  store,
		Clock:  store,
	}
	return service, store
}

func newOperatorKey(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	account, priv, err := authsig.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	return account, priv
}

func TestMintRequiresOperator(t *testing.T) {
	service, _ := newTestService(t, "operator-1")

	if err := service.Mint(context.Background(), "random-user", "alice", 1); err == nil {
		t.Fatal("expected mint by non-operator to fail")
	}
	if err := service.Mint(context.Background(), "operator-1", "alice", 1); err != nil {
		t.Fatalf("operator mint: %v", err)
	}

	owner, err := service.OwnerOf(context.Background(), 1)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != "alice" {
		t.Fatalf("owner = %q, want alice", owner)
	}
}

func TestMintRejectsDuplicateID(t *testing.T) {
	service, _ := newTestService(t, "operator-1")

	if err := service.Mint(context.Background(), "operator-1", "alice", 7); err != nil {
		t.Fatalf("first mint: %v", err)
	}
	err := service.Mint(context.Background(), "operator-1", "bob", 7)
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		t.Fatalf("second mint error = %v, want ErrAlreadyExists", err)
	}
}

func TestClaimVerifiesOperatorSignature(t *testing.T) {
	operator, priv := newOperatorKey(t)
	service, _ := newTestService(t, operator)

	digest := authsig.Digest(authsig.PurposeMintClaim, "alice", "42")
	signature := authsig.Sign(priv, digest)

	if err := service.Claim(context.Background(), "alice", 42, signature); err != nil {
		t.Fatalf("claim: %v", err)
	}
	owner, err := service.OwnerOf(context.Background(), 42)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != "alice" {
		t.Fatalf("owner = %q, want alice", owner)
	}
}

func TestClaimSignatureBindsCallerAndAsset(t *testing.T) {
	operator, priv := newOperatorKey(t)
	service, _ := newTestService(t, operator)

	digest := authsig.Digest(authsig.PurposeMintClaim, "alice", "42")
	signature := authsig.Sign(priv, digest)

	// Someone else cannot redeem alice's authorization.
	err := service.Claim(context.Background(), "bob", 42, signature)
	if !errors.Is(err, domainerrors.ErrVerificationFailed) {
		t.Fatalf("claim by bob error = %v, want ErrVerificationFailed", err)
	}
	// Nor does it cover a different asset id.
	err = service.Claim(context.Background(), "alice", 43, signature)
	if !errors.Is(err, domainerrors.ErrVerificationFailed) {
		t.Fatalf("claim of 43 error = %v, want ErrVerificationFailed", err)
	}
}

func TestClaimRejectsNonOperatorSignature(t *testing.T) {
	operator, _ := newOperatorKey(t)
	_, rogue := newOperatorKey(t)
	service, _ := newTestService(t, operator)

	digest := authsig.Digest(authsig.PurposeMintClaim, "alice", "42")
	signature := authsig.Sign(rogue, digest)

	err := service.Claim(context.Background(), "alice", 42, signature)
	if !errors.Is(err, domainerrors.ErrVerificationFailed) {
		t.Fatalf("claim error = %v, want ErrVerificationFailed", err)
	}
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	operator, priv := newOperatorKey(t)
	service, _ := newTestService(t, operator)
	ctx := context.Background()

	if err := service.Mint(ctx, operator, "alice", 1); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := service.Deposit(ctx, "alice", 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// Deposited assets cannot move or deposit again.
	if err := service.Deposit(ctx, "alice", 1); !errors.Is(err, domainerrors.ErrAlreadyDeposited) {
		t.Fatalf("second deposit error = %v, want ErrAlreadyDeposited", err)
	}
	if err := service.Transfer(ctx, "alice", "alice", "bob", 1); !errors.Is(err, domainerrors.ErrTokenLocked) {
		t.Fatalf("transfer while locked error = %v, want ErrTokenLocked", err)
	}

	nonce, err := service.CurrentNonce(ctx, 1)
	if err != nil {
		t.Fatalf("current nonce: %v", err)
	}
	digest := authsig.Digest(authsig.PurposeWithdrawAsset, "1", strconv.FormatUint(nonce, 10))
	signature := authsig.Sign(priv, digest)

	if err := service.Withdraw(ctx, "alice", 1, nonce, signature); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	// Transferability is restored.
	if err := service.Transfer(ctx, "alice", "alice", "bob", 1); err != nil {
		t.Fatalf("transfer after withdraw: %v", err)
	}
}

func TestWithdrawNonceIsSingleUse(t *testing.T) {
	operator, priv := newOperatorKey(t)
	service, _ := newTestService(t, operator)
	ctx := context.Background()

	if err := service.Mint(ctx, operator, "alice", 1); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := service.Deposit(ctx, "alice", 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	digest := authsig.Digest(authsig.PurposeWithdrawAsset, "1", "0")
	signature := authsig.Sign(priv, digest)
	if err := service.Withdraw(ctx, "alice", 1, 0, signature); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if err := service.Deposit(ctx, "alice", 1); err != nil {
		t.Fatalf("re-deposit: %v", err)
	}
	// Replaying the consumed nonce fails even with a valid signature.
	err := service.Withdraw(ctx, "alice", 1, 0, signature)
	if !errors.Is(err, domainerrors.ErrInvalidNonce) {
		t.Fatalf("replay error = %v, want ErrInvalidNonce", err)
	}

	nonce, err := service.CurrentNonce(ctx, 1)
	if err != nil {
		t.Fatalf("current nonce: %v", err)
	}
	if nonce != 1 {
		t.Fatalf("nonce = %d, want 1", nonce)
	}
}

func TestWithdrawRequiresDeposit(t *testing.T) {
	operator, priv := newOperatorKey(t)
	service, _ := newTestService(t, operator)
	ctx := context.Background()

	if err := service.Mint(ctx, operator, "alice", 1); err != nil {
		t.Fatalf("mint: %v", err)
	}
	digest := authsig.Digest(authsig.PurposeWithdrawAsset, "1", "0")
	signature := authsig.Sign(priv, digest)

	err := service.Withdraw(ctx, "alice", 1, 0, signature)
	if !errors.Is(err, domainerrors.ErrNotLocked) {
		t.Fatalf("withdraw unlocked error = %v, want ErrNotLocked", err)
	}
}

func TestTransferRestrictionMatrix(t *testing.T) {
	service, _ := newTestService(t, "operator-1")
	ctx := context.Background()

	if err := service.Mint(ctx, "operator-1", "alice", 1); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := service.SetTransferRestriction(ctx, "operator-1", true); err != nil {
		t.Fatalf("set restriction: %v", err)
	}

	// Neither side allowlisted: blocked.
	err := service.Transfer(ctx, "alice", "alice", "bob", 1)
	if !errors.Is(err, domainerrors.ErrRestrictedTransfer) {
		t.Fatalf("restricted transfer error = %v, want ErrRestrictedTransfer", err)
	}

	// Allowlisted recipient: allowed.
	if err := service.SetMarketplaceAllowlist(ctx, "operator-1", "market", true); err != nil {
		t.Fatalf("set allowlist: %v", err)
	}
	if err := service.Transfer(ctx, "alice", "alice", "market", 1); err != nil {
		t.Fatalf("transfer to allowlisted: %v", err)
	}
	// Allowlisted sender: allowed.
	if err := service.Transfer(ctx, "market", "market", "carol", 1); err != nil {
		t.Fatalf("transfer from allowlisted: %v", err)
	}

	// Restriction lifted: ordinary transfers resume.
	if err := service.SetTransferRestriction(ctx, "operator-1", false); err != nil {
		t.Fatalf("clear restriction: %v", err)
	}
	if err := service.Transfer(ctx, "carol", "carol", "bob", 1); err != nil {
		t.Fatalf("unrestricted transfer: %v", err)
	}
}

func TestRestrictionDoesNotBlockMint(t *testing.T) {
	operator, priv := newOperatorKey(t)
	service, _ := newTestService(t, operator)
	ctx := context.Background()

	if err := service.SetTransferRestriction(ctx, operator, true); err != nil {
		t.Fatalf("set restriction: %v", err)
	}
	if err := service.Mint(ctx, operator, "alice", 1); err != nil {
		t.Fatalf("mint under restriction: %v", err)
	}
	digest := authsig.Digest(authsig.PurposeMintClaim, "bob", "2")
	if err := service.Claim(ctx, "bob", 2, authsig.Sign(priv, digest)); err != nil {
		t.Fatalf("claim under restriction: %v", err)
	}
}

func TestApprovalAllowsThirdPartyTransfer(t *testing.T) {
	service, _ := newTestService(t, "operator-1")
	ctx := context.Background()

	if err := service.Mint(ctx, "operator-1", "alice", 1); err != nil {
		t.Fatalf("mint: %v", err)
	}
	err := service.Transfer(ctx, "broker", "alice", "bob", 1)
	if !errors.Is(err, domainerrors.ErrNotOwnerNorApproved) {
		t.Fatalf("unapproved transfer error = %v, want ErrNotOwnerNorApproved", err)
	}

	if err := service.Approve(ctx, "alice", 1, "broker"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := service.Transfer(ctx, "broker", "alice", "bob", 1); err != nil {
		t.Fatalf("approved transfer: %v", err)
	}

	// The approval was consumed by the transfer.
	approved, err := service.IsApprovedFor(ctx, 1, "broker")
	if err != nil {
		t.Fatalf("is approved for: %v", err)
	}
	if approved {
		t.Fatal("approval should not survive the transfer")
	}
}

func TestApprovalForAllCoversEveryAsset(t *testing.T) {
	service, _ := newTestService(t, "operator-1")
	ctx := context.Background()

	if err := service.Mint(ctx, "operator-1", "alice", 1); err != nil {
		t.Fatalf("mint 1: %v", err)
	}
	if err := service.Mint(ctx, "operator-1", "alice", 2); err != nil {
		t.Fatalf("mint 2: %v", err)
	}
	if err := service.SetApprovalForAll(ctx, "alice", "broker", true); err != nil {
		t.Fatalf("set approval for all: %v", err)
	}

	if err := service.Transfer(ctx, "broker", "alice", "bob", 1); err != nil {
		t.Fatalf("transfer 1: %v", err)
	}
	if err := service.Transfer(ctx, "broker", "alice", "carol", 2); err != nil {
		t.Fatalf("transfer 2: %v", err)
	}

	if err := service.SetApprovalForAll(ctx, "bob", "broker", false); err != nil {
		t.Fatalf("revoke approval for all: %v", err)
	}
	err := service.Transfer(ctx, "broker", "bob", "carol", 1)
	if !errors.Is(err, domainerrors.ErrNotOwnerNorApproved) {
		t.Fatalf("revoked transfer error = %v, want ErrNotOwnerNorApproved", err)
	}
}

func TestTokenURIOverrideWinsOverBase(t *testing.T) {
	service, _ := newTestService(t, "operator-1")
	ctx := context.Background()

	if err := service.Mint(ctx, "operator-1", "alice", 9); err != nil {
		t.Fatalf("mint: %v", err)
	}
	uri, err := service.TokenURI(ctx, 9)
	if err != nil {
		t.Fatalf("token uri: %v", err)
	}
	if uri != "https://assets.example/9" {
		t.Fatalf("uri = %q, want base-derived", uri)
	}

	if err := service.SetTokenURI(ctx, "operator-1", 9, "ipfs://override"); err != nil {
		t.Fatalf("set token uri: %v", err)
	}
	uri, err = service.TokenURI(ctx, 9)
	if err != nil {
		t.Fatalf("token uri after override: %v", err)
	}
	if uri != "ipfs://override" {
		t.Fatalf("uri = %q, want override", uri)
	}
}
