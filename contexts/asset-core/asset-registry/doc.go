// Package assetregistry owns non-fungible asset identity: minting, signed
// claim minting, the deposit/withdraw lock lifecycle, approvals, and the
// transfer-restriction policy that limits transfers to mint operations or
// allowlisted marketplace accounts.
package assetregistry
