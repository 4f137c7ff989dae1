package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thinko/swinelink/internal/usecase"
)

func (a *app) dnsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dns",
		Aliases: []string{"dn"},
		Short:   "Manage DNS records",
		RunE:    requireSubcommand("a DNS"),
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list <domain>",
		Aliases: []string{"li", "l"},
		Short:   "List all DNS records for a domain",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatDNSRecords, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			return uc.DNSListRecords(ctx, d)
		})),
	})

	var create recordFlags
	createCmd := &cobra.Command{
		Use:     "create <domain>",
		Aliases: []string{"cr", "c"},
		Short:   "Create a DNS record",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			rec, err := create.record(true)
			if err != nil {
				return nil, err
			}
			return uc.DNSCreateRecord(ctx, d, rec)
		})),
	}
	create.bind(createCmd, true)
	cmd.AddCommand(createCmd)

	var update recordFlags
	updateCmd := &cobra.Command{
		Use:     "update <domain> <id>",
		Aliases: []string{"up", "u"},
		Short:   "Update a DNS record by ID",
		Long: `Update a DNS record by ID. The record is replaced as a whole, so give its
type, content and name (leave --name empty for the root domain).`,
		Args: cobra.ExactArgs(2),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			rec, err := update.record(true)
			if err != nil {
				return nil, err
			}
			return uc.DNSUpdateRecord(ctx, d, args[1], rec)
		})),
	}
	update.bind(updateCmd, true)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <domain> <id>",
		Aliases: []string{"del", "d"},
		Short:   "Delete a DNS record by ID",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.DNSDeleteRecord(ctx, d, args[1])
		})),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "get <domain> <id>",
		Aliases: []string{"g", "retrieve"},
		Short:   "Get a specific DNS record by ID",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(formatDNSRecords, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.DNSRetrieveRecord(ctx, d, args[1])
		})),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get-by-type <domain> <type> [subdomain]",
		Short: "Get DNS records by type and subdomain",
		Args:  cobra.RangeArgs(2, 3),
		RunE: a.run(formatDNSRecords, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.DNSRetrieveRecordByNameType(ctx, d, strings.ToUpper(args[1]), optionalArg(args, 2))
		})),
	})

	var updateByType recordFlags
	updateByTypeCmd := &cobra.Command{
		Use:   "update-by-type <domain> <type> [subdomain]",
		Short: "Update DNS records by type and subdomain",
		Args:  cobra.RangeArgs(2, 3),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			rec, err := updateByType.record(false)
			if err != nil {
				return nil, err
			}
			return uc.DNSUpdateRecordByNameType(ctx, d, strings.ToUpper(args[1]), optionalArg(args, 2), rec)
		})),
	}
	updateByType.bind(updateByTypeCmd, false)
	cmd.AddCommand(updateByTypeCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-by-type <domain> <type> [subdomain]",
		Short: "Delete DNS records by type and subdomain",
		Args:  cobra.RangeArgs(2, 3),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.DNSDeleteRecordByNameType(ctx, d, strings.ToUpper(args[1]), optionalArg(args, 2))
		})),
	})

	return cmd
}

// withDomain normalizes args[0] as the domain before calling fn
func withDomain(fn func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error)) runFunc {
	return func(ctx context.Context, uc usecase.RegistrarUsecase, args []string) (map[string]any, error) {
		d, err := domainArg(args[0])
		if err != nil {
			return nil, err
		}
		return fn(ctx, uc, d, args)
	}
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
