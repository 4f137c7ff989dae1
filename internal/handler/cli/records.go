package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/internal/usecase"
)

func (a *app) sslCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ssl",
		Aliases: []string{"ss"},
		Short:   "Manage SSL certificates",
		RunE:    requireSubcommand("an SSL"),
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "get <domain>",
		Aliases: []string{"g"},
		Short:   "Get SSL certificate bundle for a domain",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatSSL, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			return uc.SSLRetrieve(ctx, d)
		})),
	})

	return cmd
}

func (a *app) forwardingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "forwarding",
		Aliases: []string{"forward", "fwd", "fw"},
		Short:   "Manage URL forwarding",
		RunE:    requireSubcommand("a forwarding"),
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list <domain>",
		Aliases: []string{"li", "l"},
		Short:   "List URL forwarding records for a domain",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatForwards, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			return uc.URLForwardingList(ctx, d)
		})),
	})

	var (
		subdomain   string
		location    string
		forwardType string
		includePath bool
		wildcard    bool
	)
	create := &cobra.Command{
		Use:     "create <domain>",
		Aliases: []string{"cr", "c"},
		Short:   "Create a URL forwarding record",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			forwardType = strings.ToLower(forwardType)
			if forwardType != "temporary" && forwardType != "permanent" {
				return nil, &domain.ArgumentError{Name: "--type", Reason: "must be temporary or permanent"}
			}
			return uc.URLForwardingCreate(ctx, d, domain.URLForward{
				Subdomain:   subdomain,
				Location:    location,
				Type:        forwardType,
				IncludePath: domain.YesNo(includePath),
				Wildcard:    domain.YesNo(wildcard),
			})
		})),
	}
	create.Flags().StringVar(&subdomain, "subdomain", "", "Subdomain to forward (leave empty for root domain)")
	create.Flags().StringVar(&location, "location", "", "Destination URL")
	create.Flags().StringVar(&forwardType, "type", "temporary", "Forwarding type: temporary or permanent")
	create.Flags().BoolVar(&includePath, "include-path", true, "Include path in forwarding")
	create.Flags().BoolVar(&wildcard, "wildcard", false, "Wildcard forwarding")
	_ = create.MarkFlagRequired("location")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <domain> <id>",
		Aliases: []string{"del", "d"},
		Short:   "Delete a URL forwarding record",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.URLForwardingDelete(ctx, d, args[1])
		})),
	})

	return cmd
}

func (a *app) dnssecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dnssec",
		Aliases: []string{"sec"},
		Short:   "Manage DNSSEC records",
		RunE:    requireSubcommand("a DNSSEC"),
	}

	var rec domain.DNSSECRecord
	var keyTag, alg, digestType, flags, protocol, keyAlgo int
	create := &cobra.Command{
		Use:     "create <domain>",
		Aliases: []string{"create-record", "cr", "c"},
		Short:   "Create a DNSSEC DS record at the registry",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			rec.KeyTag = strconv.Itoa(keyTag)
			rec.Alg = strconv.Itoa(alg)
			rec.DigestType = optionalInt(digestType)
			rec.KeyDataFlags = optionalInt(flags)
			rec.KeyDataProtocol = optionalInt(protocol)
			rec.KeyDataAlgo = optionalInt(keyAlgo)
			return uc.CreateDNSSECRecord(ctx, d, rec)
		})),
	}
	f := create.Flags()
	f.IntVar(&keyTag, "key-tag", 0, "Key tag")
	f.IntVar(&alg, "alg", 0, "DS data algorithm")
	f.IntVar(&digestType, "digest-type", -1, "Digest type")
	f.StringVar(&rec.Digest, "digest", "", "Digest")
	f.StringVar(&rec.MaxSigLife, "max-sig-life", "", "Max signature life (optional)")
	f.IntVar(&flags, "flags", -1, "Key data flags (optional)")
	f.IntVar(&protocol, "protocol", -1, "Key data protocol (optional)")
	f.IntVar(&keyAlgo, "algorithm", -1, "Key data algorithm (optional)")
	f.StringVar(&rec.KeyDataPubKey, "publickey", "", "Key data public key (optional)")
	_ = create.MarkFlagRequired("key-tag")
	_ = create.MarkFlagRequired("alg")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:     "get <domain>",
		Aliases: []string{"get-records", "g", "list", "l"},
		Short:   "Get all DNSSEC records for a domain",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			return uc.GetDNSSECRecords(ctx, d)
		})),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <domain> <keytag>",
		Aliases: []string{"delete-record", "del", "d"},
		Short:   "Delete a DNSSEC record by its keytag",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.DeleteDNSSECRecord(ctx, d, args[1])
		})),
	})

	return cmd
}

func (a *app) nameserversCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nameservers",
		Aliases: []string{"ns"},
		Short:   "Manage nameservers",
		RunE:    requireSubcommand("a nameserver"),
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "get <domain>",
		Aliases: []string{"g"},
		Short:   "Get nameservers for a domain",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatNameservers, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			return uc.GetNameservers(ctx, d)
		})),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "update <domain> <nameservers...>",
		Aliases: []string{"up", "u"},
		Short:   "Update nameservers for a domain",
		Args:    cobra.MinimumNArgs(2),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.UpdateNameservers(ctx, d, args[1:])
		})),
	})

	return cmd
}

func (a *app) glueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "glue",
		Aliases: []string{"gl"},
		Short:   "Manage glue records",
		RunE:    requireSubcommand("a glue record"),
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list <domain>",
		Aliases: []string{"li", "l"},
		Short:   "List glue records for a domain",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, _ []string) (map[string]any, error) {
			return uc.GetGlueRecords(ctx, d)
		})),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "create <domain> <host> <ip>",
		Aliases: []string{"cr", "c"},
		Short:   "Create a glue record",
		Args:    cobra.ExactArgs(3),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.CreateGlueRecord(ctx, d, args[1], args[2])
		})),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "update <domain> <host> <ip>",
		Aliases: []string{"up", "u"},
		Short:   "Update a glue record",
		Args:    cobra.ExactArgs(3),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.UpdateGlueRecord(ctx, d, args[1], args[2])
		})),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <domain> <host>",
		Aliases: []string{"del", "d"},
		Short:   "Delete a glue record",
		Args:    cobra.ExactArgs(2),
		RunE: a.run(formatDefault, withDomain(func(ctx context.Context, uc usecase.RegistrarUsecase, d string, args []string) (map[string]any, error) {
			return uc.DeleteGlueRecord(ctx, d, args[1])
		})),
	})

	return cmd
}

// optionalInt renders an unset (negative) flag as empty
func optionalInt(v int) string {
	if v < 0 {
		return ""
	}
	return strconv.Itoa(v)
}
