package services_test

import (
	"errors"
	"testing"

	"mystic/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
	"mystic/contexts/asset-core/asset-registry/domain/services"
)

func TestEvaluateTransfer(t *testing.T) {
	cases := []struct {
		name        string
		locked      bool
		restricted  bool
		from        string
		fromAllow   bool
		toAllow     bool
		callerAllow bool
		want        error
	}{
		{name: "unrestricted moves freely", from: "alice"},
		{name: "locked always blocked", locked: true, from: "alice", want: domainerrors.ErrTokenLocked},
		{name: "locked blocked even for allowlisted", locked: true, restricted: true, from: "alice", fromAllow: true, want: domainerrors.ErrTokenLocked},
		{name: "restricted blocks plain transfer", restricted: true, from: "alice", want: domainerrors.ErrRestrictedTransfer},
		{name: "restricted permits mint origin", restricted: true, from: ""},
		{name: "restricted permits allowlisted sender", restricted: true, from: "alice", fromAllow: true},
		{name: "restricted permits allowlisted recipient", restricted: true, from: "alice", toAllow: true},
		{name: "restricted permits allowlisted mediator", restricted: true, from: "alice", callerAllow: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			asset := entities.Asset{AssetID: 1, Owner: tc.from, Locked: tc.locked}
			err := services.EvaluateTransfer(asset, tc.restricted, tc.from, tc.fromAllow, tc.toAllow, tc.callerAllow)
			if !errors.Is(err, tc.want) {
				t.Fatalf("EvaluateTransfer = %v, want %v", err, tc.want)
			}
		})
	}
}
