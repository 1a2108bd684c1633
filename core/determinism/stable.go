// Package determinism provides primitives for reproducible runs: content
// fingerprints of the inputs, run IDs derived from them, and sorted
// iteration over maps.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"

	"github.com/google/uuid"
)

// runNamespace scopes run IDs derived from input fingerprints
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("shipment-cost/run"))

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// Fingerprint hashes a sequence of named inputs. Adding the same inputs in
// the same order always yields the same hash.
type Fingerprint struct {
	h hash.Hash
}

// NewFingerprint creates an empty fingerprint
func NewFingerprint() *Fingerprint {
	return &Fingerprint{h: sha256.New()}
}

// Add mixes a named input into the fingerprint
func (f *Fingerprint) Add(name string, data []byte) *Fingerprint {
	f.h.Write([]byte(name))
	f.h.Write([]byte{0})
	f.h.Write([]byte(fmt.Sprint(len(data))))
	f.h.Write([]byte{0})
	f.h.Write(data)
	return f
}

// Sum returns the content hash of everything added so far
func (f *Fingerprint) Sum() ContentHash {
	var out ContentHash
	copy(out[:], f.h.Sum(nil))
	return out
}

// RunID derives a stable run identifier from an input hash
func RunID(h ContentHash) string {
	return uuid.NewSHA1(runNamespace, h[:]).String()
}

// SortedKeys returns a sorted copy of map keys
func SortedKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}
