package application

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	balanceerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"
	domainerrors "mystic/contexts/finance-core/payment-ledger/domain/errors"
	"mystic/contexts/finance-core/payment-ledger/ports"
	"mystic/internal/shared/authsig"

	"github.com/shopspring/decimal"
)

const sourceService = "payment-ledger"

// Service moves fungible value into and out of a custody account. The
// operator-initiated path needs the role; the self-service claim path needs
// an operator signature over (caller, amount, nonce, expiry), with a strict
// per-account nonce so each authorization is single-use. State-changing
// operations run under a single writer lock so the nonce check and the payout
// it guards are atomic relative to every other call.
type Service struct {
	Ledger  ports.TokenLedger
	Nonces  ports.NonceRepository
	Access  ports.AccessControl
	Events  ports.EventPublisher
	IDGen   ports.IDGenerator
	Clock   ports.Clock
	Logger  *slog.Logger
	Custody string

	mu sync.Mutex
}

// Deposit moves amount from the caller into custody. The caller must have
// approved the custody account as spender beforehand.
func (s *Service) Deposit(ctx context.Context, caller string, amount decimal.Decimal) error {
	if strings.TrimSpace(caller) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if !amount.IsPositive() {
		return domainerrors.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	allowance, err := s.Ledger.Allowance(ctx, caller, s.Custody)
	if err != nil {
		return err
	}
	if allowance.LessThan(amount) {
		return domainerrors.ErrInsufficientAllowance
	}
	// Insufficient balance propagates from the ledger unchanged.
	if err := s.Ledger.TransferFrom(ctx, s.Custody, caller, s.Custody, amount); err != nil {
		return err
	}

	s.logAndPublish(ctx, "payment.deposited", caller, map[string]any{
		"account": caller,
		"amount":  amount.String(),
	})
	return nil
}

// Withdraw is the direct operator-initiated payout: no signature or nonce.
func (s *Service) Withdraw(ctx context.Context, caller string, to string, amount decimal.Decimal) error {
	if strings.TrimSpace(to) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if !amount.IsPositive() {
		return domainerrors.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Access.RequireOperator(ctx, caller); err != nil {
		return err
	}
	if err := s.Ledger.Transfer(ctx, s.Custody, to, amount); err != nil {
		return err
	}

	s.logAndPublish(ctx, "payment.withdrawn", to, map[string]any{
		"account":  to,
		"operator": caller,
		"amount":   amount.String(),
	})
	return nil
}

// ClaimWithdraw pays amount out of custody to the caller on the strength of
// an operator signature. expiry is a unix-seconds timestamp; authorizations
// are rejected from that instant on. The stored per-account nonce must match
// exactly and is incremented in the same step as the payout.
func (s *Service) ClaimWithdraw(ctx context.Context, caller string, amount decimal.Decimal, nonce uint64, expiry int64, signature []byte) error {
	if strings.TrimSpace(caller) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if !amount.IsPositive() {
		return domainerrors.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	digest := authsig.Digest(authsig.PurposeClaimWithdraw,
		caller,
		amount.String(),
		strconv.FormatUint(nonce, 10),
		strconv.FormatInt(expiry, 10),
	)
	if err := s.verifyOperatorSignature(ctx, digest, signature); err != nil {
		return err
	}

	stored, err := s.Nonces.NonceOf(ctx, caller)
	if err != nil {
		return err
	}
	if nonce != stored {
		return domainerrors.ErrInvalidNonce
	}
	if s.now().Unix() >= expiry {
		return domainerrors.ErrExpired
	}

	// Prove custody can cover the payout before the nonce is consumed. A
	// bump with no payout would permanently burn the signed authorization.
	custody, err := s.Ledger.BalanceOf(ctx, s.Custody)
	if err != nil {
		return err
	}
	if custody.LessThan(amount) {
		return balanceerrors.ErrInsufficientBalance
	}

	if err := s.Nonces.BumpNonce(ctx, caller, nonce); err != nil {
		return err
	}
	if err := s.Ledger.Transfer(ctx, s.Custody, caller, amount); err != nil {
		return err
	}

	s.logAndPublish(ctx, "payment.claim_withdrawn", caller, map[string]any{
		"account": caller,
		"amount":  amount.String(),
		"nonce":   nonce,
	})
	return nil
}

// NonceOf returns the caller's next expected claim-withdraw nonce.
func (s *Service) NonceOf(ctx context.Context, account string) (uint64, error) {
	if strings.TrimSpace(account) == "" {
		return 0, domainerrors.ErrInvalidAccount
	}
	return s.Nonces.NonceOf(ctx, account)
}

// CustodyBalance reports how much value the ledger currently holds in
// custody.
func (s *Service) CustodyBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.Ledger.BalanceOf(ctx, s.Custody)
}

func (s *Service) verifyOperatorSignature(ctx context.Context, digest [authsig.DigestSize]byte, signature []byte) error {
	operators, err := s.Access.OperatorAccounts(ctx)
	if err != nil {
		return err
	}
	if _, ok := authsig.VerifyAny(operators, digest, signature); !ok {
		return domainerrors.ErrVerificationFailed
	}
	return nil
}

func (s *Service) logAndPublish(ctx context.Context, eventType string, account string, payload map[string]any) {
	logger := ResolveLogger(s.Logger)
	logger.Info("payment state changed",
		"event", strings.ReplaceAll(eventType, ".", "_"),
		"module", "finance-core/payment-ledger",
		"layer", "application",
		"account", account,
	)

	if s.Events == nil {
		return
	}
	eventID := ""
	if s.IDGen != nil {
		if id, err := s.IDGen.NewID(ctx); err == nil {
			eventID = id
		}
	}
	if err := s.Events.Publish(ctx, ports.EventEnvelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  sourceService,
		OccurredAtUTC:  s.now(),
		EntityType:     "payment-account",
		EntityID:       account,
		PayloadVersion: 1,
		Payload:        payload,
	}); err != nil {
		logger.Warn("payment event publish failed",
			"event", "payment_event_publish_failed",
			"module", "finance-core/payment-ledger",
			"layer", "application",
			"account", account,
			"error", err.Error(),
		)
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
