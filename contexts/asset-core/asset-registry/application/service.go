package application

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"mystic/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
	"mystic/contexts/asset-core/asset-registry/domain/services"
	"mystic/contexts/asset-core/asset-registry/ports"
	"mystic/internal/shared/authsig"
)

const sourceService = "asset-registry"

// Service implements the asset lifecycle. All state-changing operations run
// under a single writer lock so signature/nonce checks and the mutations they
// guard are atomic relative to every other call.
type Service struct {
	Repo   ports.Repository
	Access ports.AccessControl
	Events ports.EventPublisher
	IDGen  ports.IDGenerator
	Clock  ports.Clock
	Logger *slog.Logger

	mu sync.Mutex
}

// Mint creates an asset owned by to. Caller must hold the operator role.
func (s *Service) Mint(ctx context.Context, caller string, to string, assetID uint64) error {
	if strings.TrimSpace(to) == "" {
		return domainerrors.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Access.RequireOperator(ctx, caller); err != nil {
		return err
	}
	return s.mintLocked(ctx, to, assetID, "asset.minted")
}

// Claim mints an asset to the caller on the strength of an operator signature
// over (caller, assetID). The operator never submits a call of its own.
func (s *Service) Claim(ctx context.Context, caller string, assetID uint64, signature []byte) error {
	if strings.TrimSpace(caller) == "" {
		return domainerrors.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	digest := authsig.Digest(authsig.PurposeMintClaim, caller, formatID(assetID))
	if err := s.verifyOperatorSignature(ctx, digest, signature); err != nil {
		return err
	}
	return s.mintLocked(ctx, caller, assetID, "asset.claimed")
}

// Deposit locks the asset, modeling its entry into the external system. No
// signature is required; this is a unilateral lock by the owner.
func (s *Service) Deposit(ctx context.Context, caller string, assetID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrApproved(ctx, asset, caller); err != nil {
		return err
	}
	if asset.Locked {
		return domainerrors.ErrAlreadyDeposited
	}
	if err := s.Repo.SetLocked(ctx, assetID, true, s.now()); err != nil {
		return err
	}

	s.logAndPublish(ctx, "asset.deposited", assetID, map[string]any{
		"asset_id": assetID,
		"owner":    asset.Owner,
	})
	return nil
}

// Withdraw unlocks a deposited asset. The operator pre-approves the unlock by
// signing (assetID, nonce); the stored per-asset nonce must match exactly and
// is incremented in the same step as the unlock, so a signed message is
// single-use.
func (s *Service) Withdraw(ctx context.Context, caller string, assetID uint64, nonce uint64, signature []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrApproved(ctx, asset, caller); err != nil {
		return err
	}
	if !asset.Locked {
		return domainerrors.ErrNotLocked
	}

	digest := authsig.Digest(authsig.PurposeWithdrawAsset, formatID(assetID), strconv.FormatUint(nonce, 10))
	if err := s.verifyOperatorSignature(ctx, digest, signature); err != nil {
		return err
	}
	if err := s.Repo.UnlockAndBumpNonce(ctx, assetID, nonce, s.now()); err != nil {
		return err
	}

	s.logAndPublish(ctx, "asset.withdrawn", assetID, map[string]any{
		"asset_id": assetID,
		"owner":    asset.Owner,
		"nonce":    nonce,
	})
	return nil
}

// Transfer is the normal ownership-transfer path, running the transfer hook:
// locked assets never move, and the restriction flag limits transfers to
// allowlisted marketplace accounts.
func (s *Service) Transfer(ctx context.Context, caller string, from string, to string, assetID uint64) error {
	if strings.TrimSpace(to) == "" {
		return domainerrors.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Owner != from {
		return domainerrors.ErrNotOwnerNorApproved
	}
	if err := s.requireOwnerOrApproved(ctx, asset, caller); err != nil {
		return err
	}
	if err := s.evaluateTransferPolicy(ctx, asset, caller, from, to); err != nil {
		return err
	}

	if err := s.Repo.TransferOwner(ctx, assetID, to, s.now()); err != nil {
		return err
	}

	s.logAndPublish(ctx, "asset.transferred", assetID, map[string]any{
		"asset_id": assetID,
		"from":     from,
		"to":       to,
	})
	return nil
}

// Approve grants a single-token transfer approval to spender.
func (s *Service) Approve(ctx context.Context, caller string, assetID uint64, spender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Owner != caller {
		hasAll, err := s.Repo.HasOperatorApproval(ctx, asset.Owner, caller)
		if err != nil {
			return err
		}
		if !hasAll {
			return domainerrors.ErrNotOwnerNorApproved
		}
	}
	return s.Repo.ApproveToken(ctx, assetID, spender)
}

// SetApprovalForAll grants or revokes blanket transfer rights to operator
// over every asset the caller owns.
func (s *Service) SetApprovalForAll(ctx context.Context, caller string, operator string, approved bool) error {
	if strings.TrimSpace(operator) == "" {
		return domainerrors.ErrInvalidAccount
	}
	return s.Repo.SetOperatorApproval(ctx, caller, operator, approved)
}

// SetTransferRestriction toggles the registry-wide restriction flag.
func (s *Service) SetTransferRestriction(ctx context.Context, caller string, enabled bool) error {
	if err := s.Access.RequireOperator(ctx, caller); err != nil {
		return err
	}
	return s.Repo.SetTransferRestriction(ctx, enabled)
}

// SetMarketplaceAllowlist flags an account as an approved marketplace.
func (s *Service) SetMarketplaceAllowlist(ctx context.Context, caller string, account string, allowed bool) error {
	if strings.TrimSpace(account) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.Access.RequireOperator(ctx, caller); err != nil {
		return err
	}
	return s.Repo.SetMarketplaceAllowed(ctx, account, allowed)
}

// SetBaseURI changes the default metadata prefix. Per-token overrides keep
// precedence.
func (s *Service) SetBaseURI(ctx context.Context, caller string, uri string) error {
	if err := s.Access.RequireOperator(ctx, caller); err != nil {
		return err
	}
	return s.Repo.SetBaseURI(ctx, uri)
}

// SetTokenURI installs a per-token metadata override.
func (s *Service) SetTokenURI(ctx context.Context, caller string, assetID uint64, uri string) error {
	if err := s.Access.RequireOperator(ctx, caller); err != nil {
		return err
	}
	return s.Repo.SetTokenURI(ctx, assetID, uri, s.now())
}

// OwnerOf returns the current owner.
func (s *Service) OwnerOf(ctx context.Context, assetID uint64) (string, error) {
	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	return asset.Owner, nil
}

// Exists reports whether the asset id has been minted.
func (s *Service) Exists(ctx context.Context, assetID uint64) (bool, error) {
	return s.Repo.AssetExists(ctx, assetID)
}

// GetAsset returns the full asset record.
func (s *Service) GetAsset(ctx context.Context, assetID uint64) (entities.Asset, error) {
	return s.Repo.GetAsset(ctx, assetID)
}

// TokenURI resolves the metadata URI for a minted asset.
func (s *Service) TokenURI(ctx context.Context, assetID uint64) (string, error) {
	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	cfg, err := s.Repo.Config(ctx)
	if err != nil {
		return "", err
	}
	return asset.TokenURI(cfg.BaseURI), nil
}

// CurrentNonce returns the stored withdraw nonce for an asset; callers fetch
// it before requesting an operator signature.
func (s *Service) CurrentNonce(ctx context.Context, assetID uint64) (uint64, error) {
	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return 0, err
	}
	return asset.WithdrawNonce, nil
}

// IsApprovedFor reports whether spender may move the asset on the owner's
// behalf, via single-token approval or approval-for-all.
func (s *Service) IsApprovedFor(ctx context.Context, assetID uint64, spender string) (bool, error) {
	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return false, err
	}
	if approval, err := s.Repo.TokenApproval(ctx, assetID); err != nil {
		return false, err
	} else if approval == spender {
		return true, nil
	}
	return s.Repo.HasOperatorApproval(ctx, asset.Owner, spender)
}

func (s *Service) mintLocked(ctx context.Context, to string, assetID uint64, eventType string) error {
	exists, err := s.Repo.AssetExists(ctx, assetID)
	if err != nil {
		return err
	}
	if exists {
		return domainerrors.ErrAlreadyExists
	}

	// The mint itself is exempt from the restriction flag; the policy treats
	// an empty from account as a mint origin.
	now := s.now()
	if err := s.Repo.CreateAsset(ctx, entities.Asset{
		AssetID:   assetID,
		Owner:     to,
		MintedAt:  now,
		UpdatedAt: now,
	}); err != nil {
		return err
	}

	s.logAndPublish(ctx, eventType, assetID, map[string]any{
		"asset_id": assetID,
		"owner":    to,
	})
	return nil
}

func (s *Service) requireOwnerOrApproved(ctx context.Context, asset entities.Asset, caller string) error {
	if caller == asset.Owner {
		return nil
	}
	approval, err := s.Repo.TokenApproval(ctx, asset.AssetID)
	if err != nil {
		return err
	}
	if approval == caller && caller != "" {
		return nil
	}
	hasAll, err := s.Repo.HasOperatorApproval(ctx, asset.Owner, caller)
	if err != nil {
		return err
	}
	if hasAll {
		return nil
	}
	return domainerrors.ErrNotOwnerNorApproved
}

func (s *Service) evaluateTransferPolicy(ctx context.Context, asset entities.Asset, caller string, from string, to string) error {
	cfg, err := s.Repo.Config(ctx)
	if err != nil {
		return err
	}
	fromAllowed, err := s.Repo.IsMarketplaceAllowed(ctx, from)
	if err != nil {
		return err
	}
	toAllowed, err := s.Repo.IsMarketplaceAllowed(ctx, to)
	if err != nil {
		return err
	}
	callerAllowed, err := s.Repo.IsMarketplaceAllowed(ctx, caller)
	if err != nil {
		return err
	}
	return services.EvaluateTransfer(asset, cfg.TransferRestricted, from, fromAllowed, toAllowed, callerAllowed)
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

func (s *Service) logAndPublish(ctx context.Context, eventType string, assetID uint64, payload map[string]any) {
	logger := ResolveLogger(s.Logger)
	logger.Info("asset state changed",
		"event", strings.ReplaceAll(eventType, ".", "_"),
		"module", "asset-core/asset-registry",
		"layer", "application",
		"asset_id", assetID,
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
		EntityType:     "asset",
		EntityID:       formatID(assetID),
		PayloadVersion: 1,
		Payload:        payload,
	}); err != nil {
		logger.Warn("asset event publish failed",
			"event", "asset_event_publish_failed",
			"module", "asset-core/asset-registry",
			"layer", "application",
			"asset_id", assetID,
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

func formatID(assetID uint64) string {
	return strconv.FormatUint(assetID, 10)
}
