// Package versionquery - query evaluation against a build catalog.
package versionquery

import (
	"time"

	"github.com/buildscout/buildcat-backend/model"
)

// Matcher evaluates version search queries against a fixed candidate list.
// The list is never mutated, so a Matcher is safe for concurrent use; Match
// allocates its own result slices.
type Matcher struct {
	builds []model.Build
}

// NewMatcher returns a matcher over the given candidate list. The slice is
// used as supplied: callers hand over ownership and result ordering follows
// the list's ordering.
func NewMatcher(builds []model.Build) *Matcher {
	return &Matcher{builds: builds}
}

// Match narrows the candidate list field by field, in the fixed order build
// hash, major, minor, patch, branch, commit time. Exact terms keep equal
// candidates; "*" and an unset branch or hash keep everything; "^" and "-"
// keep the candidates holding the extremum of the field, recomputed against
// the candidates that survived the earlier fields. An exhausted candidate
// set short-circuits the remaining fields.
//
// The result is an order-preserving subsequence of the candidate list,
// possibly empty. There is no error path: a query that matches nothing
// yields an empty result.
func (m *Matcher) Match(q Query) []model.Build {
	candidates := m.builds

	candidates = narrowByLiteral(candidates, q.buildHash, func(b model.Build) string { return b.BuildHash })
	if len(candidates) == 0 {
		return nil
	}
	candidates = narrowByNumber(candidates, q.major, func(b model.Build) uint64 { return b.VersionMajor })
	if len(candidates) == 0 {
		return nil
	}
	candidates = narrowByNumber(candidates, q.minor, func(b model.Build) uint64 { return b.VersionMinor })
	if len(candidates) == 0 {
		return nil
	}
	candidates = narrowByNumber(candidates, q.patch, func(b model.Build) uint64 { return b.VersionPatch })
	if len(candidates) == 0 {
		return nil
	}
	candidates = narrowByLiteral(candidates, q.branch, func(b model.Build) string { return b.Branch })
	if len(candidates) == 0 {
		return nil
	}
	return narrowByStamp(candidates, q.commitTime)
}

// narrowByLiteral filters on an identity field. An unset literal and the
// literal "*" keep every candidate; anything else keeps exact matches,
// including the empty string matching builds without a recorded value.
func narrowByLiteral(in []model.Build, lit *string, field func(model.Build) string) []model.Build {
	if lit == nil || *lit == "*" {
		return in
	}
	var out []model.Build
	for _, b := range in {
		if field(b) == *lit {
			out = append(out, b)
		}
	}
	return out
}

func narrowByNumber(in []model.Build, t Term, field func(model.Build) uint64) []model.Build {
	if len(in) == 0 {
		return nil
	}
	switch t.mode {
	case ModeAny:
		return in
	case ModeLatest:
		pick := field(in[0])
		for _, b := range in[1:] {
			if v := field(b); v > pick {
				pick = v
			}
		}
		return keepNumber(in, pick, field)
	case ModeOldest:
		pick := field(in[0])
		for _, b := range in[1:] {
			if v := field(b); v < pick {
				pick = v
			}
		}
		return keepNumber(in, pick, field)
	default:
		return keepNumber(in, t.num, field)
	}
}

func keepNumber(in []model.Build, want uint64, field func(model.Build) uint64) []model.Build {
	var out []model.Build
	for _, b := range in {
		if field(b) == want {
			out = append(out, b)
		}
	}
	return out
}

func narrowByStamp(in []model.Build, t Term) []model.Build {
	if len(in) == 0 {
		return nil
	}
	switch t.mode {
	case ModeAny:
		return in
	case ModeLatest:
		pick := in[0].CommitTime
		for _, b := range in[1:] {
			if b.CommitTime.After(pick) {
				pick = b.CommitTime
			}
		}
		return keepStamp(in, pick)
	case ModeOldest:
		pick := in[0].CommitTime
		for _, b := range in[1:] {
			if b.CommitTime.Before(pick) {
				pick = b.CommitTime
			}
		}
		return keepStamp(in, pick)
	default:
		// A raw token is not a timestamp, so nothing can equal it.
		if t.kind == kindRawStamp {
			return nil
		}
		return keepStamp(in, t.ts)
	}
}

func keepStamp(in []model.Build, want time.Time) []model.Build {
	var out []model.Build
	for _, b := range in {
		if b.CommitTime.Equal(want) {
			out = append(out, b)
		}
	}
	return out
}
