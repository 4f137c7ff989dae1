package domain

import (
	"fmt"
	"strings"
)

const (
	maxDomainLength = 253
	minDomainLength = 3
	maxLabelLength  = 63
	punycodePrefix  = "xn--"
)

// ValidateDomain checks a domain name against RFC 1035/1123 syntax rules.
// Checks run in order and the first failure is returned as an
// *InvalidDomainError. A single trailing dot (FQDN form) is accepted.
func ValidateDomain(name string) error {
	if name == "" {
		return invalid(name, "Domain must be a non-empty string")
	}

	normalized := strings.TrimSuffix(name, ".")

	if len(normalized) > maxDomainLength {
		return invalid(name, fmt.Sprintf("Domain name too long (max %d characters)", maxDomainLength))
	}
	if len(normalized) < minDomainLength {
		return invalid(name, "Domain name too short (minimum format: a.b)")
	}

	labels := strings.Split(normalized, ".")
	if len(labels) < 2 {
		return invalid(name, "Domain must have at least 2 parts (domain.tld)")
	}

	for i, label := range labels {
		if label == "" {
			return invalid(name, "Domain labels cannot be empty")
		}
		if len(label) > maxLabelLength {
			return invalid(name, fmt.Sprintf("Domain label too long: %q (max %d characters)", label, maxLabelLength))
		}
		if !isLDH(label) {
			return invalid(name, fmt.Sprintf("Invalid characters in Domain label: %q", label))
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return invalid(name, fmt.Sprintf("Domain labels cannot start or end with hyphen: %q", label))
		}

		if i == len(labels)-1 {
			if len(label) < 2 {
				return invalid(name, fmt.Sprintf("Domain TLD too short: %q (minimum 2 characters)", label))
			}
			if !strings.HasPrefix(label, punycodePrefix) && !isAlpha(label) {
				return invalid(name, fmt.Sprintf("Domain TLD contains invalid characters: %q", label))
			}
		}
	}

	return nil
}

func invalid(name, reason string) error {
	return &InvalidDomainError{Domain: name, Reason: reason}
}

// isLDH reports whether s consists only of letters, digits and hyphens.
func isLDH(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isLetter(c) && !(c >= '0' && c <= '9') && c != '-' {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
