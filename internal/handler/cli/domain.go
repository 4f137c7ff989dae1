package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/internal/usecase"
)

func (a *app) domainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "domain",
		Aliases: []string{"dom", "do"},
		Short:   "Manage domains",
		RunE:    requireSubcommand("a domain"),
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "check <domain>",
		Aliases: []string{"ch"},
		Short:   "Check domain availability",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatAvailability, func(ctx context.Context, uc usecase.RegistrarUsecase, args []string) (map[string]any, error) {
			d, err := domainArg(args[0])
			if err != nil {
				return nil, err
			}
			return uc.CheckAvailability(ctx, d)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"li", "l"},
		Short:   "List all domains in your account",
		Args:    cobra.NoArgs,
		RunE: a.run(formatDomains, func(ctx context.Context, uc usecase.RegistrarUsecase, _ []string) (map[string]any, error) {
			return uc.ListDomains(ctx)
		}),
	})

	// Kept here as well as the top-level pricing command
	pricing := a.pricingGetCommand()
	pricing.Use = "pricing [tlds...]"
	pricing.Aliases = []string{"pr"}
	cmd.AddCommand(pricing)

	var cost int
	register := &cobra.Command{
		Use:     "register <domain>",
		Aliases: []string{"reg"},
		Short:   "Register a domain at its current price",
		Long: `Register a domain. --cost is the price in pennies and must match the
registrar's current price for the domain, e.g. 968 for $9.68. Check it first
with 'swinelink domain check'.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(formatDefault, func(ctx context.Context, uc usecase.RegistrarUsecase, args []string) (map[string]any, error) {
			d, err := domainArg(args[0])
			if err != nil {
				return nil, err
			}
			return uc.RegisterDomain(ctx, d, cost)
		}),
	}
	register.Flags().IntVar(&cost, "cost", 0, "Registration cost in pennies")
	_ = register.MarkFlagRequired("cost")
	cmd.AddCommand(register)

	return cmd
}

func (a *app) pricingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pricing",
		Aliases: []string{"pr"},
		Short:   "Get domain pricing information",
		RunE:    requireSubcommand("a pricing"),
	}
	cmd.AddCommand(a.pricingGetCommand())
	return cmd
}

func (a *app) pricingGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get [tlds...]",
		Aliases: []string{"g"},
		Short:   "Get pricing for all TLDs (optionally filter by specific TLDs)",
		Long: `Get registration, renewal and transfer pricing. TLDs may be separated by
spaces, commas or semicolons, and full domain names are reduced to their TLD:

  swinelink pricing get com net
  swinelink pricing get "com,co.uk;example.io"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.registrar()
			if err != nil {
				a.out.failure(err)
				return errReported
			}
			data, err := uc.GetPricing(cmd.Context())
			if err != nil {
				a.out.failure(err)
				return errReported
			}
			return a.out.result(formatPricing, data, args)
		},
	}
}

// recordFlags are the DNS record fields shared by create and update
type recordFlags struct {
	cmd        *cobra.Command
	recordType string
	content    string
	name       string
	ttl        int
	prio       int
	notes      string
}

func (f *recordFlags) bind(cmd *cobra.Command, withType bool) {
	f.cmd = cmd
	if withType {
		cmd.Flags().StringVar(&f.recordType, "type", "", "Record type: A, AAAA, CNAME, ALIAS, MX, TXT, NS, SRV, TLSA, CAA, HTTPS, SVCB")
		cmd.Flags().StringVar(&f.name, "name", "", "Subdomain name (leave empty for root domain)")
		_ = cmd.MarkFlagRequired("type")
	}
	cmd.Flags().StringVar(&f.content, "content", "", "Record content")
	cmd.Flags().IntVar(&f.ttl, "ttl", 600, "Time to live in seconds")
	cmd.Flags().IntVar(&f.prio, "prio", 0, "Priority (for MX and SRV records)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Notes shown in the Porkbun dashboard")
	_ = cmd.MarkFlagRequired("content")
}

func (f *recordFlags) record(withType bool) (domain.DNSRecord, error) {
	rec := domain.DNSRecord{
		Name:    f.name,
		Content: f.content,
		TTL:     domain.Int(f.ttl),
		Notes:   f.notes,
	}
	// An explicit --prio 0 is sent, for null MX records
	if f.cmd != nil && f.cmd.Flags().Changed("prio") {
		rec.Prio = domain.Int(f.prio)
	}
	if withType {
		if !domain.IsValidRecordType(f.recordType) {
			return rec, &domain.ArgumentError{Name: "--type", Reason: "must be a supported record type"}
		}
		rec.Type = strings.ToUpper(f.recordType)
	}
	return rec, nil
}
