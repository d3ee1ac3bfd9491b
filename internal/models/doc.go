// Package models defines the core domain models for the trip ledger.
//
// # Models
//
//   - User: a registered account (credential hash never leaves the server)
//   - Member: the public projection of a User (id and name only)
//   - Trip: a named, time-stamped context grouping users and transactions
//   - Membership: "user participates in trip"
//   - Transaction: a single monetary event scoped to one trip
//   - Allocation: one user's lent/borrow stake within a transaction
//
// # Design Principles
//
//  1. Relationships are expressed with ID strings, never pointers.
//  2. Money is decimal.Decimal; floats never touch amounts.
//  3. Read-side aggregates (TransactionDetail) are separate types from the
//     rows they are built from.
package models
