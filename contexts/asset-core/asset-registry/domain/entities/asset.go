package entities

import (
	"strconv"
	"time"
)

// Asset is a uniquely identified non-fungible item. Locked assets sit in the
// external system and cannot move through any transfer path until a signed
// withdrawal unlocks them.
type Asset struct {
	AssetID       uint64
	Owner         string
	Locked        bool
	WithdrawNonce uint64
	URIOverride   string
	MintedAt      time.Time
	UpdatedAt     time.Time
}

// TokenURI resolves the metadata URI: a per-token override wins, otherwise
// the registry base URI plus the decimal asset id.
func (a Asset) TokenURI(baseURI string) string {
	if a.URIOverride != "" {
		return a.URIOverride
	}
	return baseURI + strconv.FormatUint(a.AssetID, 10)
}

// Tradable reports whether the asset can move through the normal transfer
// path, ignoring the registry-level restriction flag.
func (a Asset) Tradable() bool {
	return !a.Locked
}

// RegistryConfig is the registry-wide transfer policy and metadata prefix.
type RegistryConfig struct {
	TransferRestricted bool
	BaseURI            string
}
