// Package hashtab implements the bidirectional hash<->string table: a
// deterministic 64-bit hash of a name lets patches refer to identifiers
// that have been renamed by obfuscation.
package hashtab

import "hash/fnv"

// Hash computes the 64-bit FNV-1a hash of s's UTF-8 bytes. This algorithm is
// part of the wire contract for persisted hashtab files: it
// must never change, or existing hashtab files become unreadable.
func Hash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
