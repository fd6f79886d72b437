package memory

import (
	"context"
	"sync"
	"time"

	"mystic/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "mystic/contexts/asset-core/asset-registry/domain/errors"

	"github.com/google/uuid"
)

type operatorApprovalKey struct {
	Owner    string
	Operator string
}

// Store is the in-memory registry repository used by tests and in-memory
// wiring.
type Store struct {
	mu sync.RWMutex

	assets            map[uint64]entities.Asset
	tokenApprovals    map[uint64]string
	operatorApprovals map[operatorApprovalKey]bool
	allowlist         map[string]bool
	config            entities.RegistryConfig
}

func NewStore(baseURI string) *Store {
	return &Store{
		assets:            make(map[uint64]entities.Asset),
		tokenApprovals:    make(map[uint64]string),
		operatorApprovals: make(map[operatorApprovalKey]bool),
		allowlist:         make(map[string]bool),
		config:            entities.RegistryConfig{BaseURI: baseURI},
	}
}

func (s *Store) CreateAsset(_ context.Context, asset entities.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[asset.AssetID]; exists {
		return domainerrors.ErrAlreadyExists
	}
	s.assets[asset.AssetID] = asset
	return nil
}

func (s *Store) GetAsset(_ context.Context, assetID uint64) (entities.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return entities.Asset{}, domainerrors.ErrNotFound
	}
	return asset, nil
}

func (s *Store) AssetExists(_ context.Context, assetID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assets[assetID]
	return ok, nil
}

func (s *Store) TransferOwner(_ context.Context, assetID uint64, to string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	asset.Owner = to
	asset.UpdatedAt = updatedAt.UTC()
	s.assets[assetID] = asset
	// A completed transfer consumes the single-token approval.
	delete(s.tokenApprovals, assetID)
	return nil
}

func (s *Store) SetLocked(_ context.Context, assetID uint64, locked bool, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	asset.Locked = locked
	asset.UpdatedAt = updatedAt.UTC()
	s.assets[assetID] = asset
	return nil
}

func (s *Store) UnlockAndBumpNonce(_ context.Context, assetID uint64, expectedNonce uint64, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if asset.WithdrawNonce != expectedNonce {
		return domainerrors.ErrInvalidNonce
	}
	asset.Locked = false
	asset.WithdrawNonce++
	asset.UpdatedAt = updatedAt.UTC()
	s.assets[assetID] = asset
	return nil
}

func (s *Store) SetTokenURI(_ context.Context, assetID uint64, uri string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	asset.URIOverride = uri
	asset.UpdatedAt = updatedAt.UTC()
	s.assets[assetID] = asset
	return nil
}

func (s *Store) ApproveToken(_ context.Context, assetID uint64, spender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[assetID]; !ok {
		return domainerrors.ErrNotFound
	}
	s.tokenApprovals[assetID] = spender
	return nil
}

func (s *Store) TokenApproval(_ context.Context, assetID uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenApprovals[assetID], nil
}

func (s *Store) SetOperatorApproval(_ context.Context, owner string, operator string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := operatorApprovalKey{Owner: owner, Operator: operator}
	if approved {
		s.operatorApprovals[key] = true
	} else {
		delete(s.operatorApprovals, key)
	}
	return nil
}

func (s *Store) HasOperatorApproval(_ context.Context, owner string, operator string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operatorApprovals[operatorApprovalKey{Owner: owner, Operator: operator}], nil
}

func (s *Store) Config(_ context.Context) (entities.RegistryConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, nil
}

func (s *Store) SetTransferRestriction(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.TransferRestricted = enabled
	return nil
}

func (s *Store) SetBaseURI(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.BaseURI = uri
	return nil
}

func (s *Store) SetMarketplaceAllowed(_ context.Context, account string, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if allowed {
		s.allowlist[account] = true
	} else {
		delete(s.allowlist, account)
	}
	return nil
}

func (s *Store) IsMarketplaceAllowed(_ context.Context, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowlist[account], nil
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator.
func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
