package streamparse

import "github.com/cespare/xxhash/v2"

// internSeeds are common path literals pre-seeded into every pool so their
// very first lookup is a hit. Manifest and lockfile names dominate real
// diffs, together with the /dev/null placeholder.
var internSeeds = []string{
	"/dev/null",
	"package.json",
	"package-lock.json",
	"go.mod",
	"go.sum",
	"Cargo.toml",
	"Cargo.lock",
	"pom.xml",
	"requirements.txt",
	"Makefile",
	"Dockerfile",
	"README.md",
}

// Interner deduplicates decoded strings, chiefly file paths, so repeated
// values share one allocation. Entries are keyed by xxhash with content
// verification, so colliding strings are all retained.
type Interner struct {
	entries map[uint64][]string
	unique  int
	hits    uint64
}

// InternStats reports pool usage.
type InternStats struct {
	Unique int    // distinct strings held
	Hits   uint64 // lookups answered from the pool
}

// NewInterner creates a pool pre-seeded with common path literals.
func NewInterner() *Interner {
	in := &Interner{}
	in.seed()
	return in
}

func (in *Interner) seed() {
	in.entries = make(map[uint64][]string, len(internSeeds)*2)
	in.unique = 0
	for _, s := range internSeeds {
		h := xxhash.Sum64String(s)
		in.entries[h] = append(in.entries[h], s)
		in.unique++
	}
}

// Intern returns the canonical instance of s, adding it on first sight.
func (in *Interner) Intern(s string) string {
	h := xxhash.Sum64String(s)
	for _, e := range in.entries[h] {
		if e == s {
			in.hits++
			return e
		}
	}
	in.entries[h] = append(in.entries[h], s)
	in.unique++
	return s
}

// InternBytes returns the canonical decoded string for b, decoding at most
// once per unique byte content.
func (in *Interner) InternBytes(b []byte) string {
	h := xxhash.Sum64(b)
	for _, e := range in.entries[h] {
		if e == string(b) {
			in.hits++
			return e
		}
	}
	s := string(b)
	in.entries[h] = append(in.entries[h], s)
	in.unique++
	return s
}

// Has reports whether s is already pooled, without counting a hit.
func (in *Interner) Has(s string) bool {
	for _, e := range in.entries[xxhash.Sum64String(s)] {
		if e == s {
			return true
		}
	}
	return false
}

// Stats returns current pool usage.
func (in *Interner) Stats() InternStats {
	return InternStats{Unique: in.unique, Hits: in.hits}
}

// Clear empties the pool, re-seeds the common literals, and zeroes the hit
// counter.
func (in *Interner) Clear() {
	in.hits = 0
	in.seed()
}
