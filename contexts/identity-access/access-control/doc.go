// Package accesscontrol contains role-based permission checks for the
// digital-asset platform: a closed role enumeration, idempotent grant/revoke
// operations, and the guard interface consumed by every other context.
package accesscontrol
