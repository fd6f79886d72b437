// Package balanceledger is the fungible-token collaborator: balances,
// allowances, and transfer semantics consumed by the payment ledger and the
// marketplace engine. The engine never reimplements this bookkeeping; it only
// calls through the ledger interface.
package balanceledger
