package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/thinko/swinelink/internal/domain"
)

// formatKind selects a friendly formatter
type formatKind int

const (
	formatDefault formatKind = iota
	formatPing
	formatAvailability
	formatDomains
	formatDNSRecords
	formatPricing
	formatSSL
	formatForwards
	formatNameservers
)

const (
	tableRegWidth      = 12
	tableRenewWidth    = 10
	tableTransferWidth = 10
)

var (
	spaceRun     = regexp.MustCompile(`[ \t]+`)
	tldDelimiter = regexp.MustCompile(`[,;\s]+`)
)

// output renders results in JSON or friendly text
type output struct {
	stdout io.Writer
	stderr io.Writer

	friendly           bool
	basic              bool
	hideRateLimit      bool
	acknowledgePricing bool
	hideLinks          bool
	onlyTLDs           string
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// text strips emoji in basic mode
func (o *output) text(s string) string {
	if !o.basic {
		return s
	}
	return stripEmoji(s)
}

// stripEmoji removes pictographs and collapses the spaces they leave behind
func stripEmoji(s string) string {
	s = strings.Map(func(r rune) rune {
		if isEmoji(r) {
			return -1
		}
		return r
	}, s)
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.Trim(s, " \t")
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F,
		r >= 0x1F300 && r <= 0x1F5FF,
		r >= 0x1F680 && r <= 0x1F6FF,
		r >= 0x1F900 && r <= 0x1F9FF,
		r >= 0x1F1E0 && r <= 0x1F1FF,
		r >= 0x2300 && r <= 0x23FF,
		r >= 0x2600 && r <= 0x26FF,
		r >= 0x2700 && r <= 0x27BF,
		r == 0xFE0F:
		return true
	}
	return false
}

// result prints a successful response
func (o *output) result(kind formatKind, data map[string]any, filter []string) error {
	if !o.friendly {
		return writeJSON(o.stdout, data)
	}

	var s string
	switch kind {
	case formatPing:
		s = o.ping(data)
	case formatAvailability:
		s = o.availability(data)
	case formatDomains:
		s = o.domains(data)
	case formatDNSRecords:
		s = o.dnsRecords(data)
	case formatPricing:
		s = o.pricing(data, filter)
	case formatSSL:
		s = o.ssl(data)
	case formatForwards:
		s = o.forwards(data)
	case formatNameservers:
		s = o.nameservers(data)
	default:
		s = o.generic(data)
	}
	_, err := fmt.Fprintln(o.stdout, s)
	return err
}

// failure prints an error to stderr
func (o *output) failure(err error) {
	if errors.Is(err, domain.ErrInvalidDomain) {
		fmt.Fprintln(o.stderr, o.text("\n❌ Domain Validation Error: "+err.Error()+"\n"))
		fmt.Fprintln(o.stderr, o.text("💡 Please check your domain format and try again.\n"))
		return
	}

	data := map[string]any{"error": err.Error()}
	var re domain.ResponseError
	if errors.As(err, &re) {
		data = re.ResponseData()
	}

	if !o.friendly {
		_ = writeJSON(o.stderr, data)
		return
	}
	if data["status"] == "ERROR" {
		msg := str(data["message"])
		if msg == "" {
			msg = "Unknown error"
		}
		fmt.Fprintln(o.stderr, o.text("❌ "+msg+"\n"))
		return
	}
	fmt.Fprintln(o.stderr, o.text("❌ Error: "+err.Error()+"\n"))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *output) ping(data map[string]any) string {
	var b strings.Builder
	b.WriteString(o.text("🏓 API Connection Test:\n\n"))
	b.WriteString(o.text("✅ Status: " + str(data["status"]) + "\n"))
	if ip := str(data["yourIp"]); ip != "" {
		b.WriteString(o.text("🌐 Your IP: " + ip + "\n"))
	}
	return b.String()
}

func (o *output) availability(data map[string]any) string {
	response, _ := data["response"].(map[string]any)
	available := str(response["avail"]) == "yes"
	premium := str(response["premium"]) == "yes"

	searchDomain := str(data["queriedDomain"])
	if searchDomain == "" {
		searchDomain = str(response["domain"])
	}
	tld := str(data["recognizedTLD"])

	var b strings.Builder
	b.WriteString(o.text("🔍 Domain: " + orNA(searchDomain) + "\n"))
	if tld != "" {
		b.WriteString(o.text("🏷️  TLD: ." + tld + "\n"))
	} else {
		b.WriteString(o.text("🏷️  TLD: N/A\n"))
	}

	if available {
		b.WriteString(o.text("📍 Status: ✅ Available\n"))
		if searchDomain != "" && !o.hideLinks {
			fmt.Fprintf(&b, "See availability: %s%s&tlds=%s\n", domain.CheckoutURL, searchDomain, tld)
			fmt.Fprintf(&b, "See other TLDs: %s%s&tlds=\n", domain.CheckoutURL, searchDomain)
		}
		price := "💰 Price: $" + str(response["price"])
		if premium {
			price += " (Premium Domain)"
		}
		b.WriteString(o.text(price + "\n"))
		if str(response["firstYearPromo"]) == "yes" {
			b.WriteString(o.text("🎉 First year promotional pricing available!\n"))
		}
		if additional, ok := response["additional"].(map[string]any); ok {
			b.WriteString(o.text("🔄 Renewal: $" + str(nested(additional, "renewal", "price")) + "\n"))
			b.WriteString(o.text("📦 Transfer: $" + str(nested(additional, "transfer", "price")) + "\n"))
		}
	} else {
		b.WriteString(o.text("📍 Status: ❌ Not Available\n"))
		if searchDomain != "" && !o.hideLinks {
			fmt.Fprintf(&b, "See other TLDs: %s%s&tlds=\n", domain.CheckoutURL, searchDomain)
		}
	}

	if limits, ok := data["limits"].(map[string]any); ok && !o.hideRateLimit {
		b.WriteString(o.text(fmt.Sprintf("⏱️  Rate Limit: %s/%s checks (%ss cooldown)\n",
			str(limits["used"]), str(limits["limit"]), str(limits["TTL"]))))
	}

	if disclaimer := str(data["pricingDisclaimer"]); disclaimer != "" && !o.acknowledgePricing {
		b.WriteString(o.text("\n⚠️  " + disclaimer + "\n"))
	}
	return b.String()
}

func (o *output) domains(data map[string]any) string {
	list, _ := data["domains"].([]any)
	if len(list) == 0 {
		return o.text("📋 No domains found in your account.\n")
	}

	var b strings.Builder
	b.WriteString(o.text(fmt.Sprintf("📋 Your Domains (%d):\n\n", len(list))))
	for i, item := range list {
		d, _ := item.(map[string]any)
		fmt.Fprintf(&b, "%d. %s\n", i+1, str(d["domain"]))
		b.WriteString("   " + o.text("📅 Created: "+orNA(str(d["createDate"]))) + "\n")
		b.WriteString("   " + o.text("📅 Expires: "+orNA(str(d["expireDate"]))) + "\n")
		b.WriteString("   " + o.text("🔒 Status: "+orNA(str(d["status"]))) + "\n")
		if truthy(d["autoRenew"]) {
			b.WriteString("   " + o.text("🔄 Auto-renew enabled") + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (o *output) dnsRecords(data map[string]any) string {
	records, _ := data["records"].([]any)
	if len(records) == 0 {
		return o.text("📋 No DNS records found for this domain.\n")
	}

	byType := make(map[string][]map[string]any)
	for _, item := range records {
		rec, _ := item.(map[string]any)
		t := str(rec["type"])
		byType[t] = append(byType[t], rec)
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	var b strings.Builder
	b.WriteString(o.text(fmt.Sprintf("📋 DNS Records (%d):\n\n", len(records))))
	for _, t := range types {
		b.WriteString(o.text("🏷️  "+t+" Records:") + "\n")
		for _, rec := range byType[t] {
			name := str(rec["name"])
			if name == "" {
				name = "@"
			}
			fmt.Fprintf(&b, "   %s → %s", name, str(rec["content"]))
			if ttl := str(rec["ttl"]); ttl != "" && ttl != "0" {
				fmt.Fprintf(&b, " (TTL: %ss)", ttl)
			}
			if prio := str(rec["prio"]); prio != "" && prio != "0" {
				fmt.Fprintf(&b, " (Priority: %s)", prio)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pricing renders the pricing table. filter holds raw user input; anything
// that does not resolve to a priced TLD is reported, not shown.
func (o *output) pricing(data map[string]any, filter []string) string {
	pricing, _ := data["pricing"].(map[string]any)
	if len(pricing) == 0 {
		return o.text("💰 No pricing information available.\n")
	}

	if len(filter) == 0 && o.onlyTLDs != "" {
		filter = []string{o.onlyTLDs}
	}

	table := pricing
	var missing []string
	if len(filter) > 0 {
		known := make(domain.TLDSet, len(pricing))
		for tld := range pricing {
			known[strings.ToLower(tld)] = struct{}{}
		}

		requested, unknown := parseTLDs(filter, known)
		missing = unknown
		table = make(map[string]any, len(requested))
		for _, tld := range requested {
			if p, ok := pricing[tld]; ok {
				table[tld] = p
			}
		}
	}

	var b strings.Builder
	b.WriteString(o.pricingTable(table))
	if len(missing) > 0 {
		b.WriteString(o.text("\n⚠️  Warning: The following TLDs were not found: " + strings.Join(missing, ", ") + "\n"))
	}
	if disclaimer := str(data["pricingDisclaimer"]); disclaimer != "" && !o.acknowledgePricing {
		b.WriteString(o.text("\n⚠️  " + disclaimer + "\n"))
	}
	return b.String()
}

// parseTLDs splits user input on commas, semicolons and whitespace and
// resolves each item to a known TLD. It returns the resolved TLDs without
// duplicates and the inputs that did not resolve.
func parseTLDs(input []string, known domain.TLDSet) (tlds []string, unknown []string) {
	seen := make(map[string]bool)
	for _, item := range tldDelimiter.Split(strings.Join(input, " "), -1) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		tld, match := domain.ExtractTLD(item, known)
		if match != domain.TLDFound {
			unknown = append(unknown, "."+strings.TrimLeft(strings.ToLower(item), "."))
			continue
		}
		if !seen[tld] {
			seen[tld] = true
			tlds = append(tlds, tld)
		}
	}
	return tlds, unknown
}

func (o *output) pricingTable(pricing map[string]any) string {
	tlds := make([]string, 0, len(pricing))
	for tld := range pricing {
		tlds = append(tlds, tld)
	}
	sort.Strings(tlds)
	if len(tlds) == 0 {
		return o.text("💰 No TLDs match your filter criteria.\n")
	}

	tldWidth := 4
	for _, tld := range tlds {
		if len(tld)+1 > tldWidth {
			tldWidth = len(tld) + 1
		}
	}

	separator := fmt.Sprintf("|%s|%s|%s|%s|",
		strings.Repeat("-", tldWidth+2),
		strings.Repeat("-", tableRegWidth+2),
		strings.Repeat("-", tableRenewWidth+2),
		strings.Repeat("-", tableTransferWidth+2))
	row := func(tld, reg, renew, transfer string) string {
		return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s |",
			tldWidth, tld, tableRegWidth, reg, tableRenewWidth, renew, tableTransferWidth, transfer)
	}
	price := func(v any) string {
		if s := str(v); s != "" {
			return "$" + s
		}
		return "N/A"
	}

	var b strings.Builder
	b.WriteString(o.text(fmt.Sprintf("💰 Domain Pricing Table (%d TLDs):\n\n", len(tlds))))
	b.WriteString(separator + "\n")
	b.WriteString(row("TLD", "Registration", "Renewal", "Transfer") + "\n")
	b.WriteString(separator + "\n")
	for _, tld := range tlds {
		p, _ := pricing[tld].(map[string]any)
		b.WriteString(row("."+tld, price(p["registration"]), price(p["renewal"]), price(p["transfer"])) + "\n")
	}
	b.WriteString(separator + "\n")
	return b.String()
}

func (o *output) ssl(data map[string]any) string {
	var b strings.Builder
	b.WriteString(o.text("🔒 SSL Certificate Information:\n\n"))
	if s := str(data["certificatechain"]); s != "" {
		b.WriteString(o.text(fmt.Sprintf("📋 Certificate chain available (%d characters)\n", len(s))))
	}
	if s := str(data["privatekey"]); s != "" {
		b.WriteString(o.text(fmt.Sprintf("🔑 Private key available (%d characters)\n", len(s))))
	}
	if s := str(data["publickey"]); s != "" {
		b.WriteString(o.text(fmt.Sprintf("🔓 Public key available (%d characters)\n", len(s))))
	}
	b.WriteString(o.text("💡 Use --json for full certificate data\n"))
	return b.String()
}

func (o *output) forwards(data map[string]any) string {
	list, _ := data["forwards"].([]any)
	if len(list) == 0 {
		return o.text("🔀 No URL forwards found for this domain.\n")
	}

	var b strings.Builder
	b.WriteString(o.text(fmt.Sprintf("🔀 URL Forwards (%d):\n\n", len(list))))
	for _, item := range list {
		f, _ := item.(map[string]any)
		sub := str(f["subdomain"])
		if sub == "" {
			sub = "@"
		}
		fmt.Fprintf(&b, "   [%s] %s → %s (%s", str(f["id"]), sub, str(f["location"]), orNA(str(f["type"])))
		if str(f["includePath"]) == "yes" {
			b.WriteString(", include path")
		}
		if str(f["wildcard"]) == "yes" {
			b.WriteString(", wildcard")
		}
		b.WriteString(")\n")
	}
	return b.String()
}

func (o *output) nameservers(data map[string]any) string {
	list, _ := data["ns"].([]any)
	if len(list) == 0 {
		return o.generic(data)
	}

	var b strings.Builder
	b.WriteString(o.text(fmt.Sprintf("🌐 Nameservers (%d):\n\n", len(list))))
	for _, ns := range list {
		fmt.Fprintf(&b, "   %s\n", str(ns))
	}
	return b.String()
}

func (o *output) generic(data map[string]any) string {
	switch data["status"] {
	case "SUCCESS":
		return o.text("✅ Operation completed successfully!\n")
	case "ERROR":
		msg := str(data["message"])
		if msg == "" {
			msg = "Unknown error"
		}
		return o.text("❌ Error: " + msg + "\n")
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprint(data)
	}
	return string(out)
}

// str renders a JSON scalar for display; missing values are empty
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

func nested(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(x) {
		case "yes", "1", "true":
			return true
		}
	}
	return false
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
