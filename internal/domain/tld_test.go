package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTLD(t *testing.T) {
	known := NewTLDSet("com", "uk", "co.uk", "com.mx", "mx", "io")

	tests := []struct {
		name      string
		input     string
		known     TLDSet
		wantTLD   string
		wantMatch TLDMatch
	}{
		{name: "simple", input: "example.com", known: known, wantTLD: "com", wantMatch: TLDFound},
		{name: "longest suffix wins", input: "example.co.uk", known: known, wantTLD: "co.uk", wantMatch: TLDFound},
		{name: "shorter suffix when only it is known", input: "example.co.uk", known: NewTLDSet("uk"), wantTLD: "uk", wantMatch: TLDFound},
		{name: "deep subdomain", input: "a.b.example.com.mx", known: known, wantTLD: "com.mx", wantMatch: TLDFound},
		{name: "bare tld", input: "uk", known: known, wantTLD: "uk", wantMatch: TLDFound},
		{name: "bare tld with leading dot", input: ".io", known: known, wantTLD: "io", wantMatch: TLDFound},
		{name: "bare multi-label tld", input: ".co.uk", known: known, wantTLD: "co.uk", wantMatch: TLDFound},
		{name: "case insensitive", input: "Example.COM", known: known, wantTLD: "com", wantMatch: TLDFound},
		{name: "trailing dot", input: "example.com.", known: known, wantTLD: "com", wantMatch: TLDFound},
		{name: "unknown bare tld", input: "zzz", known: known, wantTLD: "", wantMatch: TLDNotRecognized},
		{name: "unknown suffix keeps last label", input: "example.zzz", known: known, wantTLD: "zzz", wantMatch: TLDNotRecognized},
		{name: "empty", input: "", known: known, wantTLD: "", wantMatch: TLDNotRecognized},
		{name: "no cache bare", input: "uk", known: nil, wantTLD: "", wantMatch: TLDCacheUnavailable},
		{name: "no cache full domain", input: "example.co.uk", known: NewTLDSet(), wantTLD: "uk", wantMatch: TLDCacheUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTLD, gotMatch := ExtractTLD(tt.input, tt.known)
			assert.Equal(t, tt.wantTLD, gotTLD)
			assert.Equal(t, tt.wantMatch, gotMatch, "match was %s", gotMatch)
		})
	}
}
