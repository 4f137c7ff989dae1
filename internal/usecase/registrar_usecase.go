package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/external_resource/porkbun"
	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/internal/repository"
)

// registrarUsecase implements RegistrarUsecase interface
type registrarUsecase struct {
	client   porkbun.Client
	cooldown repository.CooldownRepository
	pricing  repository.PricingRepository
	logger   hclog.Logger
}

// NewRegistrarUsecase creates a new registrar usecase
func NewRegistrarUsecase(
	client porkbun.Client,
	cooldown repository.CooldownRepository,
	pricing repository.PricingRepository,
	logger hclog.Logger,
) RegistrarUsecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &registrarUsecase{
		client:   client,
		cooldown: cooldown,
		pricing:  pricing,
		logger:   logger,
	}
}

// Ping checks the credentials and returns the caller's IP
func (u *registrarUsecase) Ping(ctx context.Context) (map[string]any, error) {
	return u.post(ctx, "/ping", nil)
}

// CheckAvailability checks one domain, subject to the registrar's cooldown
func (u *registrarUsecase) CheckAvailability(ctx context.Context, domainName string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := u.cooldown.Check(); err != nil {
		return nil, err
	}

	// A warm cache lets the TLD be recognized; failure only degrades that.
	if !u.pricing.IsFresh() {
		if _, _, err := u.pricing.Get(ctx); err != nil {
			u.logger.Debug("pricing warm-up failed, continuing without it", "error", err)
		}
	}

	data, err := u.post(ctx, "/domain/checkDomain/"+domainName, nil)
	if err != nil {
		return nil, err
	}

	u.cooldown.RecordSuccess(data)

	tld, match := domain.ExtractTLD(domainName, u.pricing.ValidTLDs())
	u.logger.Debug("availability checked", "domain", domainName, "tld", tld, "tld_match", match)

	return enrichAvailability(data, domainName, tld), nil
}

// ListDomains lists every domain in the account
func (u *registrarUsecase) ListDomains(ctx context.Context) (map[string]any, error) {
	return u.post(ctx, "/domain/listAll", nil)
}

// GetPricing returns the pricing table, from cache when fresh
func (u *registrarUsecase) GetPricing(ctx context.Context) (map[string]any, error) {
	data, cached, err := u.pricing.Get(ctx)
	if err != nil {
		return nil, err
	}
	u.logger.Debug("pricing loaded", "cached", cached)

	out := map[string]any{"pricingDisclaimer": domain.PricingDisclaimer}
	for k, v := range data {
		out[k] = v
	}
	return out, nil
}

// RegisterDomain buys a domain. cost is in pennies and must match the
// registrar's current price.
func (u *registrarUsecase) RegisterDomain(ctx context.Context, domainName string, costPennies int) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if costPennies <= 0 {
		return nil, &domain.ArgumentError{Name: "cost", Reason: "must be a positive number of pennies"}
	}
	return u.post(ctx, "/domain/create/"+domainName, map[string]any{
		"cost":         costPennies,
		"agreeToTerms": "yes",
	})
}

// DNSCreateRecord creates a DNS record
func (u *registrarUsecase) DNSCreateRecord(ctx context.Context, domainName string, record domain.DNSRecord) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	body, err := toBody(record)
	if err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/create/"+domainName, body)
}

// DNSListRecords returns every DNS record of a domain
func (u *registrarUsecase) DNSListRecords(ctx context.Context, domainName string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/retrieve/"+domainName, nil)
}

// DNSRetrieveRecord returns one DNS record by ID
func (u *registrarUsecase) DNSRetrieveRecord(ctx context.Context, domainName, id string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("id", id); err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/retrieve/"+domainName+"/"+url.PathEscape(id), nil)
}

// DNSRetrieveRecordByNameType returns the records matching type and subdomain
func (u *registrarUsecase) DNSRetrieveRecordByNameType(ctx context.Context, domainName, recordType, subdomain string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("type", recordType); err != nil {
		return nil, err
	}
	return u.post(ctx, byNameTypePath("/dns/retrieveByNameType/", domainName, recordType, subdomain), nil)
}

// DNSUpdateRecord edits a DNS record by ID
func (u *registrarUsecase) DNSUpdateRecord(ctx context.Context, domainName, id string, record domain.DNSRecord) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("id", id); err != nil {
		return nil, err
	}
	body, err := toBody(record)
	if err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/edit/"+domainName+"/"+url.PathEscape(id), body)
}

// DNSUpdateRecordByNameType edits every record matching type and subdomain
func (u *registrarUsecase) DNSUpdateRecordByNameType(ctx context.Context, domainName, recordType, subdomain string, record domain.DNSRecord) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("type", recordType); err != nil {
		return nil, err
	}
	body, err := toBody(record)
	if err != nil {
		return nil, err
	}
	return u.post(ctx, byNameTypePath("/dns/editByNameType/", domainName, recordType, subdomain), body)
}

// DNSDeleteRecord deletes a DNS record by ID
func (u *registrarUsecase) DNSDeleteRecord(ctx context.Context, domainName, id string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("id", id); err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/delete/"+domainName+"/"+url.PathEscape(id), nil)
}

// DNSDeleteRecordByNameType deletes every record matching type and subdomain
func (u *registrarUsecase) DNSDeleteRecordByNameType(ctx context.Context, domainName, recordType, subdomain string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("type", recordType); err != nil {
		return nil, err
	}
	return u.post(ctx, byNameTypePath("/dns/deleteByNameType/", domainName, recordType, subdomain), nil)
}

// SSLRetrieve returns the SSL certificate bundle of a domain
func (u *registrarUsecase) SSLRetrieve(ctx context.Context, domainName string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	return u.post(ctx, "/ssl/retrieve/"+domainName, nil)
}

// URLForwardingList lists URL forwards
func (u *registrarUsecase) URLForwardingList(ctx context.Context, domainName string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	return u.post(ctx, "/domain/getUrlForwarding/"+domainName, nil)
}

// URLForwardingCreate adds a URL forward
func (u *registrarUsecase) URLForwardingCreate(ctx context.Context, domainName string, forward domain.URLForward) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	body, err := toBody(forward)
	if err != nil {
		return nil, err
	}
	return u.post(ctx, "/domain/addUrlForward/"+domainName, body)
}

// URLForwardingDelete deletes a URL forward by ID
func (u *registrarUsecase) URLForwardingDelete(ctx context.Context, domainName, id string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("id", id); err != nil {
		return nil, err
	}
	return u.post(ctx, "/domain/deleteUrlForward/"+domainName+"/"+url.PathEscape(id), nil)
}

// CreateDNSSECRecord creates a DS record at the registry
func (u *registrarUsecase) CreateDNSSECRecord(ctx context.Context, domainName string, record domain.DNSSECRecord) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	body, err := toBody(record)
	if err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/createDnssecRecord/"+domainName, body)
}

// GetDNSSECRecords lists the DS records at the registry
func (u *registrarUsecase) GetDNSSECRecords(ctx context.Context, domainName string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/getDnssecRecords/"+domainName, nil)
}

// DeleteDNSSECRecord deletes a DS record by key tag
func (u *registrarUsecase) DeleteDNSSECRecord(ctx context.Context, domainName, keyTag string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("keytag", keyTag); err != nil {
		return nil, err
	}
	return u.post(ctx, "/dns/deleteDnssecRecord/"+domainName+"/"+url.PathEscape(keyTag), nil)
}

// GetNameservers returns the authoritative nameservers at the registry
func (u *registrarUsecase) GetNameservers(ctx context.Context, domainName string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	return u.post(ctx, "/domain/getNs/"+domainName, nil)
}

// UpdateNameservers replaces the nameservers at the registry
func (u *registrarUsecase) UpdateNameservers(ctx context.Context, domainName string, nameservers []string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if len(nameservers) == 0 {
		return nil, &domain.ArgumentError{Name: "nameservers", Reason: "requires at least one nameserver"}
	}
	return u.post(ctx, "/domain/updateNs/"+domainName, map[string]any{"ns": nameservers})
}

// CreateGlueRecord creates a glue record for host
func (u *registrarUsecase) CreateGlueRecord(ctx context.Context, domainName, host, ip string) (map[string]any, error) {
	return u.glue(ctx, "/domain/createGlue/", domainName, host, ip)
}

// UpdateGlueRecord replaces the address of a glue record
func (u *registrarUsecase) UpdateGlueRecord(ctx context.Context, domainName, host, ip string) (map[string]any, error) {
	return u.glue(ctx, "/domain/updateGlue/", domainName, host, ip)
}

// DeleteGlueRecord deletes the glue record for host
func (u *registrarUsecase) DeleteGlueRecord(ctx context.Context, domainName, host string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("host", host); err != nil {
		return nil, err
	}
	return u.post(ctx, "/domain/deleteGlue/"+domainName+"/"+url.PathEscape(host), nil)
}

// GetGlueRecords lists the glue records of a domain
func (u *registrarUsecase) GetGlueRecords(ctx context.Context, domainName string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	return u.post(ctx, "/domain/getGlue/"+domainName, nil)
}

func (u *registrarUsecase) glue(ctx context.Context, prefix, domainName, host, ip string) (map[string]any, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	if err := required("host", host); err != nil {
		return nil, err
	}
	if err := required("ip", ip); err != nil {
		return nil, err
	}
	return u.post(ctx, prefix+domainName+"/"+url.PathEscape(host), map[string]any{"ip": ip})
}

// post sends exactly one request and returns the response body
func (u *registrarUsecase) post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	start := time.Now()
	resp, err := u.client.Post(ctx, path, body)
	if err != nil {
		u.logger.Debug("request failed", "path", path, "error", err)
		return nil, err
	}
	u.logger.Debug("request done", "path", path, "status", resp.Status(), "elapsed", time.Since(start))
	return resp.Data, nil
}

// enrichAvailability adds query metadata and the pricing disclaimer.
// Upstream fields win at the top level; the nested response object is
// annotated in place.
func enrichAvailability(data map[string]any, queried, tld string) map[string]any {
	out := map[string]any{
		"queriedDomain":     queried,
		"recognizedTLD":     tld,
		"pricingDisclaimer": domain.PricingDisclaimer,
	}
	for k, v := range data {
		out[k] = v
	}

	if nested, ok := out["response"].(map[string]any); ok {
		nested["queriedDomain"] = queried
		nested["recognizedTLD"] = tld
		nested["priceWarning"] = domain.PricingDisclaimer
	}
	return out
}

// byNameTypePath keeps the trailing slash when subdomain is empty; the
// registrar reads that as the root record.
func byNameTypePath(prefix, domainName, recordType, subdomain string) string {
	return prefix + domainName + "/" + url.PathEscape(recordType) + "/" + url.PathEscape(subdomain)
}

// toBody turns a payload struct into a request body using its json tags
func toBody(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return body, nil
}

func required(name, value string) error {
	if value == "" {
		return &domain.ArgumentError{Name: name, Reason: "is required"}
	}
	return nil
}
