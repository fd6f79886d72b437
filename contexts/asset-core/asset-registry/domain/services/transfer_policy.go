package services

import (
	"mystic/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
)

// EvaluateTransfer runs the transfer hook for a prospective ownership change.
// A mint origin is represented by an empty from account. Locked assets never
// move. When the restriction flag is on, the transfer must originate from a
// mint, touch an allowlisted marketplace account on either side, or be
// mediated by one (an allowlisted caller moving an asset it is approved
// for).
func EvaluateTransfer(
	asset entities.Asset,
	restricted bool,
	from string,
	fromAllowlisted bool,
	toAllowlisted bool,
	callerAllowlisted bool,
) error {
	if asset.Locked {
		return domainerrors.ErrTokenLocked
	}
	if !restricted {
		return nil
	}
	if from == "" {
		return nil
	}
	if fromAllowlisted || toAllowlisted || callerAllowlisted {
		return nil
	}
	return domainerrors.ErrRestrictedTransfer
}
