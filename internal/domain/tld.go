package domain

import "strings"

// TLDMatch describes how ExtractTLD arrived at its answer.
type TLDMatch int

const (
	// TLDFound means the returned TLD is in the known set.
	TLDFound TLDMatch = iota
	// TLDNotRecognized means the set was available but nothing matched.
	TLDNotRecognized
	// TLDCacheUnavailable means there was no known set to match against.
	TLDCacheUnavailable
)

func (m TLDMatch) String() string {
	switch m {
	case TLDFound:
		return "found"
	case TLDNotRecognized:
		return "not_recognized"
	case TLDCacheUnavailable:
		return "cache_unavailable"
	}
	return "unknown"
}

// TLDSet is the set of TLDs the registrar currently prices.
type TLDSet map[string]struct{}

// NewTLDSet builds a set from TLD names. Names are lowercased.
func NewTLDSet(tlds ...string) TLDSet {
	set := make(TLDSet, len(tlds))
	for _, t := range tlds {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// Contains reports whether tld is a member of the set.
func (s TLDSet) Contains(tld string) bool {
	_, ok := s[strings.ToLower(tld)]
	return ok
}

// ExtractTLD finds the TLD of a full domain, a bare TLD or a multi-label TLD
// such as "co.uk".
//
// A dotless input is returned only when it is in the set. Otherwise every
// suffix is tried from longest to shortest and the first known one wins, so
// "example.co.uk" yields "co.uk" before "uk". When nothing matches, the last
// label is returned unchecked so callers always have something to show; the
// TLDMatch result tells the two cases apart.
func ExtractTLD(input string, known TLDSet) (string, TLDMatch) {
	s := strings.TrimLeft(strings.TrimSpace(input), ".")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return "", TLDNotRecognized
	}

	if !strings.Contains(s, ".") {
		if len(known) == 0 {
			return "", TLDCacheUnavailable
		}
		if known.Contains(s) {
			return strings.ToLower(s), TLDFound
		}
		return "", TLDNotRecognized
	}

	parts := strings.Split(s, ".")
	last := parts[len(parts)-1]
	if len(known) == 0 {
		return last, TLDCacheUnavailable
	}

	for i := range parts {
		candidate := strings.Join(parts[i:], ".")
		if known.Contains(candidate) {
			return strings.ToLower(candidate), TLDFound
		}
	}

	return last, TLDNotRecognized
}
