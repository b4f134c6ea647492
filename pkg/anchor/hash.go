package anchor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StableHash computes the deterministic digest of the anchor's effective
// policy meaning: SHA-256 over "level|scope|active|statement", hex encoded.
// If any of those fields change, the hash changes. Trace replay compares
// snapshot hashes against current hashes to detect content drift, so the
// serialization here must never change.
func (a *Anchor) StableHash() string {
	return HashFields(a.Level, a.Scope, a.Active, a.Statement)
}

// HashFields computes the stable hash from raw field values. Trace snapshots
// use this to recompute hashes from snapshot columns without materializing an
// Anchor.
func HashFields(level int, scope string, active bool, statement string) string {
	activeBit := 0
	if active {
		activeBit = 1
	}
	payload := fmt.Sprintf("%d|%s|%d|%s", level, scope, activeBit, statement)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
