package usecase

import (
	"context"

	"github.com/thinko/swinelink/internal/domain"
)

// RegistrarUsecase is the set of registrar operations.
// This interface is handler-agnostic and is shared by the CLI, the HTTP proxy
// and the MCP server. Every method returns the upstream response body.
type RegistrarUsecase interface {
	// Account and domains
	Ping(ctx context.Context) (map[string]any, error)
	CheckAvailability(ctx context.Context, domainName string) (map[string]any, error)
	ListDomains(ctx context.Context) (map[string]any, error)
	GetPricing(ctx context.Context) (map[string]any, error)
	RegisterDomain(ctx context.Context, domainName string, costPennies int) (map[string]any, error)

	// DNS records
	DNSCreateRecord(ctx context.Context, domainName string, record domain.DNSRecord) (map[string]any, error)
	DNSListRecords(ctx context.Context, domainName string) (map[string]any, error)
	DNSRetrieveRecord(ctx context.Context, domainName, id string) (map[string]any, error)
	DNSRetrieveRecordByNameType(ctx context.Context, domainName, recordType, subdomain string) (map[string]any, error)
	DNSUpdateRecord(ctx context.Context, domainName, id string, record domain.DNSRecord) (map[string]any, error)
	DNSUpdateRecordByNameType(ctx context.Context, domainName, recordType, subdomain string, record domain.DNSRecord) (map[string]any, error)
	DNSDeleteRecord(ctx context.Context, domainName, id string) (map[string]any, error)
	DNSDeleteRecordByNameType(ctx context.Context, domainName, recordType, subdomain string) (map[string]any, error)

	// SSL
	SSLRetrieve(ctx context.Context, domainName string) (map[string]any, error)

	// URL forwarding
	URLForwardingList(ctx context.Context, domainName string) (map[string]any, error)
	URLForwardingCreate(ctx context.Context, domainName string, forward domain.URLForward) (map[string]any, error)
	URLForwardingDelete(ctx context.Context, domainName, id string) (map[string]any, error)

	// DNSSEC
	CreateDNSSECRecord(ctx context.Context, domainName string, record domain.DNSSECRecord) (map[string]any, error)
	GetDNSSECRecords(ctx context.Context, domainName string) (map[string]any, error)
	DeleteDNSSECRecord(ctx context.Context, domainName, keyTag string) (map[string]any, error)

	// Nameservers
	GetNameservers(ctx context.Context, domainName string) (map[string]any, error)
	UpdateNameservers(ctx context.Context, domainName string, nameservers []string) (map[string]any, error)

	// Glue records
	CreateGlueRecord(ctx context.Context, domainName, host, ip string) (map[string]any, error)
	UpdateGlueRecord(ctx context.Context, domainName, host, ip string) (map[string]any, error)
	DeleteGlueRecord(ctx context.Context, domainName, host string) (map[string]any, error)
	GetGlueRecords(ctx context.Context, domainName string) (map[string]any, error)
}
