// Package ir provides the canonical intermediate representation for compiled
// schema documents.
//
// This package contains types and their serialization only. All other
// internal packages import ir; ir imports nothing internal. This keeps the IR
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed sum type; every attribute in a canonical document
//     carries exactly one variant, untyped scalars never survive
//     canonicalization
//   - A Document is immutable once produced; validator and backends consume
//     it without mutation
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only
//     serialization used for content-addressed identity
package ir
