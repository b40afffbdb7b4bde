package streamparse

import "bytes"

// LazyString defers decoding a span of the arena's source buffer into text
// until first read. Comparison operations work on the raw bytes so callers
// never materialize a string just to compare it.
//
// A LazyString is valid only for the arena generation it was created
// against; use after Reset panics with ErrStaleView rather than reading
// reused storage.
type LazyString struct {
	arena   *Arena
	gen     uint64
	span    Span
	decoded string
	done    bool
}

func newLazyString(a *Arena, span Span) *LazyString {
	return &LazyString{arena: a, gen: a.gen, span: span}
}

func (ls *LazyString) bytes() []byte {
	if ls.gen != ls.arena.gen {
		panic(ErrStaleView)
	}
	return ls.arena.Bytes(ls.span)
}

// ByteLen returns the encoded length without decoding.
func (ls *LazyString) ByteLen() int { return ls.span.Len() }

// Value decodes the span on first access and memoizes the result.
func (ls *LazyString) Value() string {
	if !ls.done {
		ls.decoded = string(ls.bytes())
		ls.done = true
	}
	return ls.decoded
}

// Equals reports whether both strings hold identical bytes.
func (ls *LazyString) Equals(other *LazyString) bool {
	if ls.span.Len() != other.span.Len() {
		return false
	}
	return bytes.Equal(ls.bytes(), other.bytes())
}

// StartsWith reports whether the content begins with prefix.
func (ls *LazyString) StartsWith(prefix string) bool {
	b := ls.bytes()
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

// EndsWith reports whether the content ends with suffix.
func (ls *LazyString) EndsWith(suffix string) bool {
	b := ls.bytes()
	return len(b) >= len(suffix) && string(b[len(b)-len(suffix):]) == suffix
}
