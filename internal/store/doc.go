// Package store provides durable SQLite-backed snapshot storage for
// persistent cloud variable sessions.
//
// The store keeps two tables: the latest full snapshot per storage key,
// and an append-only history of individual variable updates derived by
// diffing consecutive snapshots. The history gives the CLI an audit
// trail and lets a restarted process resume its logical clock from the
// highest sequence number it ever issued.
package store
