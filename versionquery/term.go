// Package versionquery - query terms and selection symbols.
package versionquery

import (
	"strconv"
	"time"
)

// Mode classifies how a query term selects candidates.
type Mode uint8

const (
	// ModeExact keeps candidates whose field equals the term's literal value.
	ModeExact Mode = iota
	// ModeAny keeps every candidate.
	ModeAny
	// ModeLatest keeps the candidates holding the largest field value among
	// the candidates still in play.
	ModeLatest
	// ModeOldest keeps the candidates holding the smallest field value among
	// the candidates still in play.
	ModeOldest
)

// Symbol returns the grammar character for m ("*", "^" or "-"), or the empty
// string for ModeExact.
func (m Mode) Symbol() string {
	switch m {
	case ModeAny:
		return "*"
	case ModeLatest:
		return "^"
	case ModeOldest:
		return "-"
	}
	return ""
}

type termKind uint8

const (
	kindNumber termKind = iota
	kindStamp
	kindRawStamp
)

// Term is a single query field: a literal value or a selection symbol.
// Numeric literals serve the major, minor and patch fields; timestamp
// literals serve the commit-time field. The zero value is the numeric
// literal 0.
type Term struct {
	mode Mode
	kind termKind
	num  uint64
	ts   time.Time
	raw  string
}

// Selection symbol terms, usable on every term-valued field. Treat these as
// constants.
var (
	Any    = Term{mode: ModeAny}
	Latest = Term{mode: ModeLatest}
	Oldest = Term{mode: ModeOldest}
)

// Num returns an exact numeric term for a major, minor or patch field.
func Num(v uint64) Term {
	return Term{mode: ModeExact, kind: kindNumber, num: v}
}

// Stamp returns an exact commit-time term. The timestamp is normalized to
// UTC and truncated to whole seconds, the precision the grammar carries.
func Stamp(t time.Time) Term {
	return Term{mode: ModeExact, kind: kindStamp, ts: t.UTC().Truncate(time.Second)}
}

// RawStamp returns a commit-time term holding a token that did not parse as
// a timestamp. Raw terms round-trip verbatim through String and match no
// build.
func RawStamp(token string) Term {
	return Term{mode: ModeExact, kind: kindRawStamp, raw: token}
}

// Mode returns how the term selects candidates.
func (t Term) Mode() Mode { return t.mode }

// IsSymbol reports whether the term is one of the selection symbols.
func (t Term) IsSymbol() bool { return t.mode != ModeExact }

// Number returns the numeric literal of a term built with Num.
func (t Term) Number() uint64 { return t.num }

// Time returns the timestamp literal of a term built with Stamp.
func (t Term) Time() time.Time { return t.ts }

// Raw returns the verbatim token of a term built with RawStamp.
func (t Term) Raw() string { return t.raw }

// String renders the term in grammar form.
func (t Term) String() string {
	if t.mode != ModeExact {
		return t.mode.Symbol()
	}
	switch t.kind {
	case kindStamp:
		return t.ts.Format(time.RFC3339)
	case kindRawStamp:
		return t.raw
	default:
		return strconv.FormatUint(t.num, 10)
	}
}

// Equal reports whether two terms select identically. Timestamp literals
// are compared as instants.
func (t Term) Equal(other Term) bool {
	if t.mode != other.mode {
		return false
	}
	if t.mode != ModeExact {
		return true
	}
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case kindStamp:
		return t.ts.Equal(other.ts)
	case kindRawStamp:
		return t.raw == other.raw
	default:
		return t.num == other.num
	}
}
