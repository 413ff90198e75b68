// Package models defines the domain models for billsplit.
//
// # Bill state
//
// The caller (the browser UI or the CLI) owns the full bill state:
//   - Participant: a person with their own list of priced items
//   - DiscountConfig: one bill-wide discount (percentage or flat, optionally capped)
//   - AdditionalFee: shared fees (delivery, service) split equally
//
// BillState bundles the three so it can be encoded into a share token.
//
// # Derived models
//
// ParticipantSummary, BillTotals and BillSummary are produced by the calculator
// package on every recalculation. They are never stored.
//
// # Design Principles
//
//  1. Value-like models: identity is only the ID token, no pointers between models
//  2. Amounts are float64 in minor currency units (e.g. 25000 for Rp 25.000)
//  3. The core never mutates these values; it returns fresh summaries
package models
