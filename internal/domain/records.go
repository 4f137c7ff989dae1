package domain

import (
	"encoding/json"
	"strings"
)

// RecordTypes lists the DNS record types the registrar accepts.
var RecordTypes = []string{"A", "AAAA", "CNAME", "ALIAS", "MX", "TXT", "NS", "SRV", "TLSA", "CAA", "HTTPS", "SVCB"}

// IsValidRecordType reports whether t is one of RecordTypes, case-insensitively.
func IsValidRecordType(t string) bool {
	upper := strings.ToUpper(t)
	for _, rt := range RecordTypes {
		if rt == upper {
			return true
		}
	}
	return false
}

// DNSRecord is the payload for creating or editing a DNS record.
// Name is the subdomain; empty means the root of the domain. A nil TTL or
// Prio is left to the registrar's default; zero is sent as zero.
type DNSRecord struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
	TTL     *int   `json:"ttl,omitempty"`
	Prio    *int   `json:"prio,omitempty"`
	Notes   string `json:"notes,omitempty"`

	// Extra holds caller fields not modelled above. They are sent as given;
	// modelled fields win on a name clash.
	Extra map[string]any `json:"-"`
}

// MarshalJSON merges Extra with the modelled fields.
func (r DNSRecord) MarshalJSON() ([]byte, error) {
	type plain DNSRecord
	data, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(r.Extra)+len(fields))
	for k, v := range r.Extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Int returns a pointer to v, for the optional fields of DNSRecord.
func Int(v int) *int {
	return &v
}

// URLForward is the payload for adding a URL forward.
type URLForward struct {
	Subdomain   string `json:"subdomain"`
	Location    string `json:"location"`
	Type        string `json:"type"`        // temporary | permanent
	IncludePath string `json:"includePath"` // yes | no
	Wildcard    string `json:"wildcard"`    // yes | no
}

// DNSSECRecord is the payload for creating a DS record at the registry.
type DNSSECRecord struct {
	KeyTag          string `json:"keyTag,omitempty"`
	Alg             string `json:"alg,omitempty"`
	DigestType      string `json:"digestType,omitempty"`
	Digest          string `json:"digest,omitempty"`
	MaxSigLife      string `json:"maxSigLife,omitempty"`
	KeyDataFlags    string `json:"keyDataFlags,omitempty"`
	KeyDataProtocol string `json:"keyDataProtocol,omitempty"`
	KeyDataAlgo     string `json:"keyDataAlgo,omitempty"`
	KeyDataPubKey   string `json:"keyDataPubKey,omitempty"`
}

// YesNo renders a flag the way the registrar expects it.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
