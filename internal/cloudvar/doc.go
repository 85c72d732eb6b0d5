// Package cloudvar provides the foundational value types for driftsync.
//
// This package contains the tracked-variable set, string coercion, and
// canonical snapshot encoding. All other internal packages import
// cloudvar; cloudvar imports nothing internal. This keeps it the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Variable values are strings at every protocol and storage boundary.
//     Coercion to string is one-way; no native typing is reconstructed.
//   - Variable names are NFC-normalized before any comparison, so the
//     same name always matches regardless of the sender's Unicode form.
//   - Snapshot encoding is canonical (sorted keys, NFC strings) so the
//     same variable state always serializes to the same bytes.
package cloudvar
