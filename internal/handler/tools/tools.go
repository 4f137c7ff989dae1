package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/internal/usecase"
)

// HandlerFunc runs one tool against the registrar.
type HandlerFunc func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error)

// Tool describes one registrar operation exposed to the HTTP and MCP front ends.
type Tool struct {
	Name        string
	Title       string
	Description string
	InputSchema map[string]interface{}
	Handler     HandlerFunc
}

// Required returns the required argument names from the input schema.
func (t Tool) Required() []string {
	req, _ := t.InputSchema["required"].([]string)
	if req == nil {
		return []string{}
	}
	return req
}

// Registry dispatches tool calls to the usecase.
type Registry struct {
	uc     usecase.RegistrarUsecase
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry creates a registry with every registrar tool.
func NewRegistry(uc usecase.RegistrarUsecase) *Registry {
	r := &Registry{
		uc:     uc,
		tools:  catalogue(),
		byName: make(map[string]Tool),
	}
	for _, t := range r.tools {
		r.byName[t.Name] = t
	}
	return r
}

// Tools returns the tools in catalogue order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Call runs the named tool.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return t.Handler(ctx, r.uc, Args(args))
}

// ErrorMessage formats a failed call for tool clients.
func ErrorMessage(tool string, err error) string {
	if errors.Is(err, domain.ErrInvalidDomain) {
		return "Domain validation error: " + err.Error()
	}
	var re domain.ResponseError
	if errors.As(err, &re) {
		if msg, ok := re.ResponseData()["message"].(string); ok && msg != "" {
			return "API error: " + msg
		}
	}
	return tool + " failed: " + err.Error()
}

func schema(props map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func str(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func num(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": desc}
}

var domainProp = str("The domain name (e.g. example.com)")

func domainOnly(call func(usecase.RegistrarUsecase, context.Context, string) (map[string]any, error)) HandlerFunc {
	return func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
		d, err := args.Domain("domain")
		if err != nil {
			return nil, err
		}
		return call(uc, ctx, d)
	}
}

func catalogue() []Tool {
	recordSchema := map[string]interface{}{
		"type":        "object",
		"description": "DNS record",
		"properties": map[string]interface{}{
			"name":    str("Subdomain (e.g. 'www', empty for root)"),
			"type":    str("Record type: " + strings.Join(domain.RecordTypes, ", ")),
			"content": str("Record content/value"),
			"ttl":     num("Time to live in seconds (default 600)"),
			"prio":    num("Priority for MX/SRV records"),
			"notes":   str("Notes shown in the Porkbun dashboard"),
		},
	}

	return []Tool{
		{
			Name:        "ping",
			Title:       "Ping",
			Description: "Test authentication and connectivity to the Porkbun API",
			InputSchema: schema(map[string]interface{}{}),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, _ Args) (map[string]any, error) {
				return uc.Ping(ctx)
			},
		},
		{
			Name:        "checkAvailability",
			Title:       "CheckDomainAvailability",
			Description: "Check if a domain name is available to register. Rate limited by Porkbun to one check every few seconds.",
			InputSchema: schema(map[string]interface{}{"domain": str("The domain name to check (e.g. example.com)")}, "domain"),
			Handler:     domainOnly(usecase.RegistrarUsecase.CheckAvailability),
		},
		{
			Name:        "listDomains",
			Title:       "ListDomains",
			Description: "List all domains on your Porkbun account",
			InputSchema: schema(map[string]interface{}{}),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, _ Args) (map[string]any, error) {
				return uc.ListDomains(ctx)
			},
		},
		{
			Name:        "getPricing",
			Title:       "GetPricing",
			Description: "Get registration, renewal and transfer pricing for every TLD. Pricing is cached for 20 minutes and is not guaranteed.",
			InputSchema: schema(map[string]interface{}{}),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, _ Args) (map[string]any, error) {
				return uc.GetPricing(ctx)
			},
		},
		{
			Name:        "registerDomain",
			Title:       "RegisterDomain",
			Description: "Register a domain. cost is the price in pennies and must match the current registration price.",
			InputSchema: schema(map[string]interface{}{
				"domain": str("Domain name to register"),
				"cost":   num("Registration cost in pennies (e.g. 968 for $9.68)"),
			}, "domain", "cost"),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
				d, err := args.Domain("domain")
				if err != nil {
					return nil, err
				}
				cost, err := args.Int("cost", 0)
				if err != nil {
					return nil, err
				}
				return uc.RegisterDomain(ctx, d, cost)
			},
		},
		{
			Name:        "dnsCreateRecord",
			Title:       "CreateDNSRecord",
			Description: "Create a DNS record",
			InputSchema: schema(map[string]interface{}{"domain": domainProp, "record": recordSchema}, "domain", "record"),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
				d, err := args.Domain("domain")
				if err != nil {
					return nil, err
				}
				rec, err := decodeRecord(args, true)
				if err != nil {
					return nil, err
				}
				return uc.DNSCreateRecord(ctx, d, rec)
			},
		},
		{
			Name:        "dnsListRecords",
			Title:       "ListDNSRecords",
			Description: "List all DNS records for a domain",
			InputSchema: schema(map[string]interface{}{"domain": domainProp}, "domain"),
			Handler:     domainOnly(usecase.RegistrarUsecase.DNSListRecords),
		},
		{
			Name:        "dnsRetrieveRecord",
			Title:       "GetDNSRecord",
			Description: "Retrieve a DNS record by ID",
			InputSchema: schema(map[string]interface{}{"domain": domainProp, "id": str("The DNS record ID")}, "domain", "id"),
			Handler:     withDomainAnd("id", usecase.RegistrarUsecase.DNSRetrieveRecord),
		},
		{
			Name:        "dnsRetrieveRecordByNameType",
			Title:       "GetDNSRecordsByNameType",
			Description: "Retrieve DNS records by type and subdomain",
			InputSchema: schema(map[string]interface{}{
				"domain":    domainProp,
				"type":      str("DNS record type"),
				"subdomain": str("Subdomain (empty for root)"),
			}, "domain", "type"),
			Handler: withNameType(usecase.RegistrarUsecase.DNSRetrieveRecordByNameType),
		},
		{
			Name:        "dnsUpdateRecord",
			Title:       "UpdateDNSRecord",
			Description: "Edit a DNS record by ID",
			InputSchema: schema(map[string]interface{}{
				"domain": domainProp,
				"id":     str("The DNS record ID to update"),
				"record": recordSchema,
			}, "domain", "id", "record"),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
				d, err := args.Domain("domain")
				if err != nil {
					return nil, err
				}
				id, err := args.RequiredString("id")
				if err != nil {
					return nil, err
				}
				rec, err := decodeRecord(args, true)
				if err != nil {
					return nil, err
				}
				return uc.DNSUpdateRecord(ctx, d, id, rec)
			},
		},
		{
			Name:        "dnsUpdateRecordByNameType",
			Title:       "UpdateDNSRecordsByNameType",
			Description: "Edit every DNS record matching a type and subdomain",
			InputSchema: schema(map[string]interface{}{
				"domain":    domainProp,
				"type":      str("DNS record type"),
				"subdomain": str("Subdomain (empty for root)"),
				"record":    recordSchema,
			}, "domain", "type", "record"),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
				d, err := args.Domain("domain")
				if err != nil {
					return nil, err
				}
				typ, err := args.RequiredString("type")
				if err != nil {
					return nil, err
				}
				rec, err := decodeRecord(args, false)
				if err != nil {
					return nil, err
				}
				return uc.DNSUpdateRecordByNameType(ctx, d, strings.ToUpper(typ), args.String("subdomain"), rec)
			},
		},
		{
			Name:        "dnsDeleteRecord",
			Title:       "DeleteDNSRecord",
			Description: "Delete a DNS record by ID",
			InputSchema: schema(map[string]interface{}{"domain": domainProp, "id": str("The DNS record ID")}, "domain", "id"),
			Handler:     withDomainAnd("id", usecase.RegistrarUsecase.DNSDeleteRecord),
		},
		{
			Name:        "dnsDeleteRecordByNameType",
			Title:       "DeleteDNSRecordsByNameType",
			Description: "Delete every DNS record matching a type and subdomain",
			InputSchema: schema(map[string]interface{}{
				"domain":    domainProp,
				"type":      str("DNS record type"),
				"subdomain": str("Subdomain (empty for root)"),
			}, "domain", "type"),
			Handler: withNameType(usecase.RegistrarUsecase.DNSDeleteRecordByNameType),
		},
		{
			Name:        "sslRetrieve",
			Title:       "GetSSLBundle",
			Description: "Retrieve the SSL certificate bundle for a domain",
			InputSchema: schema(map[string]interface{}{"domain": domainProp}, "domain"),
			Handler:     domainOnly(usecase.RegistrarUsecase.SSLRetrieve),
		},
		{
			Name:        "urlForwardingList",
			Title:       "ListURLForwards",
			Description: "List URL forwarding records for a domain",
			InputSchema: schema(map[string]interface{}{"domain": domainProp}, "domain"),
			Handler:     domainOnly(usecase.RegistrarUsecase.URLForwardingList),
		},
		{
			Name:        "urlForwardingCreate",
			Title:       "CreateURLForward",
			Description: "Create a URL forwarding record",
			InputSchema: schema(map[string]interface{}{
				"domain": domainProp,
				"record": map[string]interface{}{
					"type":        "object",
					"description": "URL forward",
					"properties": map[string]interface{}{
						"subdomain":   str("Subdomain (empty for root)"),
						"location":    str("The URL to forward to"),
						"type":        str("temporary or permanent (default temporary)"),
						"includePath": str("yes or no (default yes)"),
						"wildcard":    str("yes or no (default no)"),
					},
				},
			}, "domain", "record"),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
				d, err := args.Domain("domain")
				if err != nil {
					return nil, err
				}
				fwd, err := decodeForward(args)
				if err != nil {
					return nil, err
				}
				return uc.URLForwardingCreate(ctx, d, fwd)
			},
		},
		{
			Name:        "urlForwardingDelete",
			Title:       "DeleteURLForward",
			Description: "Delete a URL forwarding record by ID",
			InputSchema: schema(map[string]interface{}{"domain": domainProp, "id": str("The forward record ID")}, "domain", "id"),
			Handler:     withDomainAnd("id", usecase.RegistrarUsecase.URLForwardingDelete),
		},
		{
			Name:        "createDnssecRecord",
			Title:       "CreateDNSSECRecord",
			Description: "Create a DNSSEC DS record at the registry",
			InputSchema: schema(map[string]interface{}{
				"domain": domainProp,
				"record": map[string]interface{}{
					"type":        "object",
					"description": "DS record data",
					"properties": map[string]interface{}{
						"keyTag":          str("Key tag"),
						"alg":             str("DS data algorithm"),
						"digestType":      str("Digest type"),
						"digest":          str("Digest"),
						"maxSigLife":      str("Max signature life (optional)"),
						"keyDataFlags":    str("Key data flags (optional)"),
						"keyDataProtocol": str("Key data protocol (optional)"),
						"keyDataAlgo":     str("Key data algorithm (optional)"),
						"keyDataPubKey":   str("Key data public key (optional)"),
					},
				},
			}, "domain", "record"),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
				d, err := args.Domain("domain")
				if err != nil {
					return nil, err
				}
				rec, err := decodeDNSSEC(args)
				if err != nil {
					return nil, err
				}
				return uc.CreateDNSSECRecord(ctx, d, rec)
			},
		},
		{
			Name:        "getDnssecRecords",
			Title:       "GetDNSSECRecords",
			Description: "List the DNSSEC records at the registry",
			InputSchema: schema(map[string]interface{}{"domain": domainProp}, "domain"),
			Handler:     domainOnly(usecase.RegistrarUsecase.GetDNSSECRecords),
		},
		{
			Name:        "deleteDnssecRecord",
			Title:       "DeleteDNSSECRecord",
			Description: "Delete a DNSSEC record by key tag",
			InputSchema: schema(map[string]interface{}{"domain": domainProp, "keytag": str("Key tag of the record")}, "domain", "keytag"),
			Handler:     withDomainAnd("keytag", usecase.RegistrarUsecase.DeleteDNSSECRecord),
		},
		{
			Name:        "getNameservers",
			Title:       "GetNameservers",
			Description: "Get the authoritative nameservers for a domain",
			InputSchema: schema(map[string]interface{}{"domain": domainProp}, "domain"),
			Handler:     domainOnly(usecase.RegistrarUsecase.GetNameservers),
		},
		{
			Name:        "updateNameservers",
			Title:       "UpdateNameservers",
			Description: "Replace the authoritative nameservers for a domain",
			InputSchema: schema(map[string]interface{}{
				"domain": domainProp,
				"nameservers": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Nameserver hostnames",
				},
			}, "domain", "nameservers"),
			Handler: func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
				d, err := args.Domain("domain")
				if err != nil {
					return nil, err
				}
				ns, err := args.Strings("nameservers")
				if err != nil {
					return nil, err
				}
				return uc.UpdateNameservers(ctx, d, ns)
			},
		},
		{
			Name:        "createGlueRecord",
			Title:       "CreateGlueRecord",
			Description: "Create a glue record for a host under the domain",
			InputSchema: glueSchema(),
			Handler:     withGlue(usecase.RegistrarUsecase.CreateGlueRecord),
		},
		{
			Name:        "updateGlueRecord",
			Title:       "UpdateGlueRecord",
			Description: "Update the address of a glue record",
			InputSchema: glueSchema(),
			Handler:     withGlue(usecase.RegistrarUsecase.UpdateGlueRecord),
		},
		{
			Name:        "deleteGlueRecord",
			Title:       "DeleteGlueRecord",
			Description: "Delete a glue record",
			InputSchema: schema(map[string]interface{}{"domain": domainProp, "host": str("The glue record host")}, "domain", "host"),
			Handler:     withDomainAnd("host", usecase.RegistrarUsecase.DeleteGlueRecord),
		},
		{
			Name:        "getGlueRecords",
			Title:       "GetGlueRecords",
			Description: "List the glue records for a domain",
			InputSchema: schema(map[string]interface{}{"domain": domainProp}, "domain"),
			Handler:     domainOnly(usecase.RegistrarUsecase.GetGlueRecords),
		},
	}
}

func glueSchema() map[string]interface{} {
	return schema(map[string]interface{}{
		"domain": domainProp,
		"host":   str("The glue record host (e.g. ns1)"),
		"ip":     str("The IP address"),
	}, "domain", "host", "ip")
}

func withDomainAnd(arg string, call func(usecase.RegistrarUsecase, context.Context, string, string) (map[string]any, error)) HandlerFunc {
	return func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
		d, err := args.Domain("domain")
		if err != nil {
			return nil, err
		}
		v, err := args.RequiredString(arg)
		if err != nil {
			return nil, err
		}
		return call(uc, ctx, d, v)
	}
}

func withNameType(call func(usecase.RegistrarUsecase, context.Context, string, string, string) (map[string]any, error)) HandlerFunc {
	return func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
		d, err := args.Domain("domain")
		if err != nil {
			return nil, err
		}
		typ, err := args.RequiredString("type")
		if err != nil {
			return nil, err
		}
		return call(uc, ctx, d, strings.ToUpper(typ), args.String("subdomain"))
	}
}

func withGlue(call func(usecase.RegistrarUsecase, context.Context, string, string, string) (map[string]any, error)) HandlerFunc {
	return func(ctx context.Context, uc usecase.RegistrarUsecase, args Args) (map[string]any, error) {
		d, err := args.Domain("domain")
		if err != nil {
			return nil, err
		}
		host, err := args.RequiredString("host")
		if err != nil {
			return nil, err
		}
		ip, err := args.RequiredString("ip")
		if err != nil {
			return nil, err
		}
		return call(uc, ctx, d, host, ip)
	}
}

// recordFields are the DNSRecord fields decodeRecord models; every other key
// of args.record is passed through in Extra.
var recordFields = map[string]bool{"name": true, "type": true, "content": true, "ttl": true, "prio": true, "notes": true}

// decodeRecord reads args.record. Create and edit-by-ID need a type; every
// variant needs content. Content and notes are sent verbatim.
func decodeRecord(args Args, needType bool) (domain.DNSRecord, error) {
	rec, err := args.Object("record")
	if err != nil {
		return domain.DNSRecord{}, err
	}

	out := domain.DNSRecord{
		Name:    rec.String("name"),
		Type:    strings.ToUpper(rec.String("type")),
		Content: rec.Text("content"),
		Notes:   rec.Text("notes"),
	}
	if needType {
		if out.Type == "" {
			return out, &domain.ArgumentError{Name: "record.type", Reason: "is required"}
		}
		if !domain.IsValidRecordType(out.Type) {
			return out, &domain.ArgumentError{Name: "record.type", Reason: "must be one of " + strings.Join(domain.RecordTypes, ", ")}
		}
	}
	if strings.TrimSpace(out.Content) == "" {
		return out, &domain.ArgumentError{Name: "record.content", Reason: "is required"}
	}
	if out.TTL, err = rec.OptionalInt("ttl"); err != nil {
		return out, err
	}
	if out.Prio, err = rec.OptionalInt("prio"); err != nil {
		return out, err
	}

	for k, v := range rec {
		if recordFields[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = v
	}
	return out, nil
}

func decodeForward(args Args) (domain.URLForward, error) {
	rec, err := args.Object("record")
	if err != nil {
		return domain.URLForward{}, err
	}

	out := domain.URLForward{
		Subdomain: rec.String("subdomain"),
		Location:  rec.String("location"),
		Type:      strings.ToLower(rec.String("type")),
	}
	if out.Location == "" {
		return out, &domain.ArgumentError{Name: "record.location", Reason: "is required"}
	}
	switch out.Type {
	case "":
		out.Type = "temporary"
	case "temporary", "permanent":
	default:
		return out, &domain.ArgumentError{Name: "record.type", Reason: "must be temporary or permanent"}
	}
	if out.IncludePath, err = rec.YesNo("includePath", true); err != nil {
		return out, err
	}
	if out.Wildcard, err = rec.YesNo("wildcard", false); err != nil {
		return out, err
	}
	return out, nil
}

// decodeDNSSEC accepts the registrar's field names plus the short aliases
// (tag, flags, algorithm, key) older clients send.
func decodeDNSSEC(args Args) (domain.DNSSECRecord, error) {
	rec, err := args.Object("record")
	if err != nil {
		return domain.DNSSECRecord{}, err
	}

	out := domain.DNSSECRecord{
		KeyTag:          rec.FirstString("keyTag", "tag", "keytag"),
		Alg:             rec.FirstString("alg", "algorithm"),
		DigestType:      rec.String("digestType"),
		Digest:          rec.String("digest"),
		MaxSigLife:      rec.String("maxSigLife"),
		KeyDataFlags:    rec.FirstString("keyDataFlags", "flags"),
		KeyDataProtocol: rec.String("keyDataProtocol"),
		KeyDataAlgo:     rec.String("keyDataAlgo"),
		KeyDataPubKey:   rec.FirstString("keyDataPubKey", "key", "publickey"),
	}
	if out.KeyTag == "" {
		return out, &domain.ArgumentError{Name: "record.keyTag", Reason: "is required"}
	}
	if out.Alg == "" {
		return out, &domain.ArgumentError{Name: "record.alg", Reason: "is required"}
	}
	return out, nil
}
