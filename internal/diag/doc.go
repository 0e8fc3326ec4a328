// Package diag defines the diagnostic model shared by every analysis pass.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the usage rule pass and the hard-syntax discovery loop.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – two-level enum (Warning, Error) defined in severity.go.
//   - Kind – compact numeric identifier (see kinds.go) with stable string forms.
//   - Pos – 1-based line/column of the issue in a buffer snapshot.
//   - Message – human oriented text; keep it short and actionable.
//   - Suggested – optional replacement text the editor surface can apply as a
//     one-click fix.
//
// # Ordering
//
// Diagnostics are recomputed wholesale on every validation pass and sorted with
// Bag.Sort before publication: line, then column, then a fixed kind priority
// (hard syntax before usage rules before advisories). The same input always
// renders the same order.
//
// # Consumers
//
//   - internal/diagfmt: renders diagnostics into pretty/json formats.
//   - internal/fix: applies Suggested replacements to a snapshot.
//   - internal/driver: coordinates bags per file and transports the data to
//     CLI commands.
package diag
