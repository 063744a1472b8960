// Package versionquery implements the version search query grammar used to
// pick builds out of the catalog.
//
// A query names the major, minor and patch fields either literally or with a
// selection symbol ("^" newest, "*" any, "-" oldest), optionally narrows by
// branch and build hash, and closes with a commit-time term:
//
//	<major>.<minor>.<patch>[-<branch>][+<build_hash>][@<commit_time>]
//
// "4.^.^-stable@^" reads as "the newest stable 4.x build". Queries are
// parsed with Parse, rendered with String and evaluated by Matcher.
package versionquery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The branch run is greedy and may itself contain hyphens and digits, so
// "1.2.3-release-candidate" carries the branch "release-candidate" and
// "1.2.3-4.5.6" carries the branch "4.5.6".
var queryPattern = regexp.MustCompile(
	`^([\^*-]|\d+)\.([\^*-]|\d+)\.([\^*-]|\d+)(?:-([^@+\s]+))?(?:\+(\w+))?(?:@([\^*-]|[\d T:+Z\^-]+))?$`)

// Accepted commit-time layouts. Both carry an explicit UTC offset; a token
// without one is kept verbatim as a raw term and matches nothing.
var stampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

// Query is a parsed version search query. Queries are immutable: every
// constructor validates the field combination, so an invalid query is never
// obtained. Branch and build hash are matched literally when set; the other
// four fields carry a Term.
type Query struct {
	major      Term
	minor      Term
	patch      Term
	branch     *string
	buildHash  *string
	commitTime Term
}

// New builds a query from the three version terms. Branch and build hash
// start unset (any value matches) and the commit-time field defaults to
// newest.
func New(major, minor, patch Term) (Query, error) {
	return newQuery(major, minor, patch, nil, nil, Latest)
}

// Default returns the "newest available build" query, ^.^.^@^.
func Default() Query {
	return Query{major: Latest, minor: Latest, patch: Latest, commitTime: Latest}
}

// Parse interprets s as a version search query. Successful parses are
// memoized, so repeated lookups of the same string are cheap and yield equal
// queries. Input that does not match the grammar yields a
// MalformedQueryError naming the input; grammatical input whose fields
// cannot be satisfied yields an InvalidQueryFieldsError.
func Parse(s string) (Query, error) {
	if q, ok := cache.get(s); ok {
		return q, nil
	}
	q, err := parseQuery(s)
	if err != nil {
		return Query{}, err
	}
	cache.put(s, q)
	return q, nil
}

func parseQuery(s string) (Query, error) {
	m := queryPattern.FindStringSubmatch(s)
	if m == nil {
		return Query{}, &MalformedQueryError{Input: s}
	}

	major, err := parseNumberTerm(m[1])
	if err != nil {
		return Query{}, &MalformedQueryError{Input: s}
	}
	minor, err := parseNumberTerm(m[2])
	if err != nil {
		return Query{}, &MalformedQueryError{Input: s}
	}
	patch, err := parseNumberTerm(m[3])
	if err != nil {
		return Query{}, &MalformedQueryError{Input: s}
	}

	var branch, buildHash *string
	if m[4] != "" {
		v := m[4]
		branch = &v
	}
	if m[5] != "" {
		v := m[5]
		buildHash = &v
	}

	// An absent commit-time segment means "newest".
	commitTime := Latest
	if m[6] != "" {
		commitTime = parseStampTerm(m[6])
	}

	return newQuery(major, minor, patch, branch, buildHash, commitTime)
}

func parseNumberTerm(token string) (Term, error) {
	switch token {
	case "^":
		return Latest, nil
	case "*":
		return Any, nil
	case "-":
		return Oldest, nil
	}
	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return Term{}, err
	}
	return Num(n), nil
}

func parseStampTerm(token string) Term {
	switch token {
	case "^":
		return Latest
	case "*":
		return Any
	case "-":
		return Oldest
	}
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return Stamp(t)
		}
	}
	// Deliberate leniency: an unparseable token is carried verbatim rather
	// than rejected. It round-trips through String and matches no build.
	return RawStamp(token)
}

func newQuery(major, minor, patch Term, branch, buildHash *string, commitTime Term) (Query, error) {
	q := Query{
		major:      major,
		minor:      minor,
		patch:      patch,
		branch:     branch,
		buildHash:  buildHash,
		commitTime: commitTime,
	}
	if err := q.validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func (q Query) validate() error {
	numeric := []struct {
		name string
		term Term
	}{
		{"major", q.major},
		{"minor", q.minor},
		{"patch", q.patch},
	}
	for _, f := range numeric {
		if f.term.mode == ModeExact && f.term.kind != kindNumber {
			return &InvalidQueryFieldsError{
				Detail: fmt.Sprintf(`%s must be a number or in ["^", "*", "-"]`, f.term),
			}
		}
	}
	if q.commitTime.mode == ModeExact && q.commitTime.kind == kindNumber {
		return &InvalidQueryFieldsError{
			Detail: fmt.Sprintf(`%s must be a timestamp or in ["^", "*", "-"]`, q.commitTime),
		}
	}
	if q.branch != nil && (*q.branch == "^" || *q.branch == "-") {
		return &InvalidQueryFieldsError{Detail: "branch cannot be temporally matched"}
	}
	if q.buildHash != nil && (*q.buildHash == "^" || *q.buildHash == "-") {
		return &InvalidQueryFieldsError{Detail: "build_hash cannot be temporally matched"}
	}
	return nil
}

// Major returns the major version term.
func (q Query) Major() Term { return q.major }

// Minor returns the minor version term.
func (q Query) Minor() Term { return q.minor }

// Patch returns the patch version term.
func (q Query) Patch() Term { return q.patch }

// Branch returns the branch literal and whether it is set.
func (q Query) Branch() (string, bool) {
	if q.branch == nil {
		return "", false
	}
	return *q.branch, true
}

// BuildHash returns the build hash literal and whether it is set.
func (q Query) BuildHash() (string, bool) {
	if q.buildHash == nil {
		return "", false
	}
	return *q.buildHash, true
}

// CommitTime returns the commit-time term.
func (q Query) CommitTime() Term { return q.commitTime }

// WithBranch returns a copy of q with the branch field replaced. A nil
// branch clears the field so any branch matches.
func (q Query) WithBranch(branch *string) (Query, error) {
	return newQuery(q.major, q.minor, q.patch, cloneString(branch), q.buildHash, q.commitTime)
}

// WithBuildHash returns a copy of q with the build hash field replaced. A
// nil hash clears the field so any hash matches.
func (q Query) WithBuildHash(buildHash *string) (Query, error) {
	return newQuery(q.major, q.minor, q.patch, q.branch, cloneString(buildHash), q.commitTime)
}

// WithCommitTime returns a copy of q with the commit-time term replaced.
func (q Query) WithCommitTime(commitTime Term) (Query, error) {
	return newQuery(q.major, q.minor, q.patch, q.branch, q.buildHash, commitTime)
}

// String renders the canonical text form. Unset or empty branch and build
// hash segments are omitted; the commit-time segment is always present, so
// Default().String() is "^.^.^@^". Parsing the result of String yields an
// equal query whenever branch and build hash are not the empty string.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.major.String())
	b.WriteByte('.')
	b.WriteString(q.minor.String())
	b.WriteByte('.')
	b.WriteString(q.patch.String())
	if q.branch != nil && *q.branch != "" {
		b.WriteByte('-')
		b.WriteString(*q.branch)
	}
	if q.buildHash != nil && *q.buildHash != "" {
		b.WriteByte('+')
		b.WriteString(*q.buildHash)
	}
	b.WriteByte('@')
	b.WriteString(q.commitTime.String())
	return b.String()
}

// Equal reports whether two queries select identically.
func (q Query) Equal(other Query) bool {
	return q.major.Equal(other.major) &&
		q.minor.Equal(other.minor) &&
		q.patch.Equal(other.patch) &&
		equalStringPtr(q.branch, other.branch) &&
		equalStringPtr(q.buildHash, other.buildHash) &&
		q.commitTime.Equal(other.commitTime)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
