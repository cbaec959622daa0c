// Package writers persists per-frame reports.
//
// Design:
//   - Every sink implements Sink; a failed Append is fatal to the session.
//   - CSV is the primary log; JSONL and SQLite are optional archives.
//   - JSONL goes through pkg/api (v1) for a stable wire format.
package writers
