package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/thinko/swinelink/internal/handler/tools"
	"github.com/thinko/swinelink/internal/usecase"
	"github.com/thinko/swinelink/pkg/config"
)

const disclaimer = "DISCLAIMER: This project is not affiliated with Porkbun, LLC. Visit https://porkbun.com for official services."

// errReported is returned once a failure has already been printed
var errReported = errors.New("reported")

// Options wires the command tree to its environment
type Options struct {
	Version string
	Loader  *config.Loader
	Stdin   *os.File
	Stdout  io.Writer
	Stderr  io.Writer

	// Usecase replaces the registrar built from configuration
	Usecase usecase.RegistrarUsecase
}

type globalFlags struct {
	debug              bool
	friendly           bool
	json               bool
	hideRateLimit      bool
	acknowledgePricing bool
	hideLinks          bool
	basicText          bool
	onlyTLDs           string
}

// app holds the state shared by every command
type app struct {
	opts   Options
	flags  globalFlags
	cfg    *config.Config
	logger hclog.Logger
	out    *output
	uc     usecase.RegistrarUsecase
}

// runFunc is a registrar call made by a command
type runFunc func(ctx context.Context, uc usecase.RegistrarUsecase, args []string) (map[string]any, error)

// NewRootCommand builds the swinelink command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Loader == nil {
		opts.Loader = config.NewLoader()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	a := &app{
		opts:   opts,
		uc:     opts.Usecase,
		logger: hclog.NewNullLogger(),
		out:    &output{stdout: opts.Stdout, stderr: opts.Stderr},
	}

	root := &cobra.Command{
		Use:   "swinelink",
		Short: "Manage Porkbun domains, DNS and more from the command line",
		Long: `swinelink is a command-line client for the Porkbun domain registrar API.
It checks domain availability and pricing, manages DNS, DNSSEC and glue
records, retrieves SSL bundles, and manages URL forwarding and nameservers.
The same operations are available over HTTP (swinelink serve) and MCP
(swinelink mcp).

Quick start:
  swinelink config init              # Create a config file for your API keys
  swinelink ping                     # Test your credentials
  swinelink domain check example.com # Check availability
  swinelink dns list example.com     # List DNS records`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          requireSubcommand("a"),
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetHelpTemplate(root.HelpTemplate() + "\n" + disclaimer + "\n")

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.flags.debug, "debug", "d", false, "Enable debug output")
	pf.BoolVarP(&a.flags.friendly, "friendly", "f", false, "Enable human-readable output instead of JSON")
	pf.BoolVarP(&a.flags.json, "json", "j", false, "Force JSON output (overrides friendly mode)")
	pf.BoolVarP(&a.flags.hideRateLimit, "hide-rate-limit", "r", false, "Hide rate limit messages")
	pf.BoolVarP(&a.flags.acknowledgePricing, "acknowledge-pricing", "a", false, "Acknowledge pricing is not guaranteed and hide warnings")
	pf.BoolVarP(&a.flags.hideLinks, "hide-pb-search-links", "l", false, "Hide Porkbun checkout/search links")
	pf.BoolVarP(&a.flags.basicText, "basic-text", "b", false, "Use basic text output (no emojis or special formatting)")
	pf.StringVarP(&a.flags.onlyTLDs, "only-tlds", "t", "", "Limit pricing results to specific TLDs (e.g. com,net,org)")

	root.PersistentPreRunE = a.setup

	root.AddCommand(a.versionCommand())
	root.AddCommand(a.pingCommand())
	root.AddCommand(a.configCommand())
	root.AddCommand(a.domainCommand())
	root.AddCommand(a.pricingCommand())
	root.AddCommand(a.dnsCommand())
	root.AddCommand(a.sslCommand())
	root.AddCommand(a.forwardingCommand())
	root.AddCommand(a.dnssecCommand())
	root.AddCommand(a.nameserversCommand())
	root.AddCommand(a.glueCommand())
	root.AddCommand(a.serveCommand())
	root.AddCommand(a.mcpCommand())
	root.AddCommand(easterEggCommand())

	return root
}

// Execute runs the CLI and returns the process exit code.
// This is called by main.main().
func Execute(version string) int {
	root := NewRootCommand(Options{Version: version})
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			basic, _ := root.PersistentFlags().GetBool("basic-text")
			msg := "❌ Error: " + err.Error()
			if basic {
				msg = "Error: " + err.Error()
			}
			fmt.Fprintf(os.Stderr, "\n%s\nRun 'swinelink --help' for usage.\n", msg)
		}
		return 1
	}
	return 0
}

// setup resolves configuration and output settings. Flags win over the
// config file.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := a.opts.Loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := hclog.Info
	if a.flags.debug || cfg.Debug {
		level = hclog.Debug
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "swinelink",
		Level:  level,
		Output: a.opts.Stderr,
	})

	friendly := false
	switch {
	case a.flags.json:
	case cmd.Flags().Changed("friendly"):
		friendly = a.flags.friendly
	case cfg.FriendlyText:
		friendly = true
	default:
		friendly = isTerminal(a.opts.Stdout)
	}

	onlyTLDs := a.flags.onlyTLDs
	if onlyTLDs == "" {
		onlyTLDs = cfg.OnlyTLDs
	}

	a.out = &output{
		stdout:             a.opts.Stdout,
		stderr:             a.opts.Stderr,
		friendly:           friendly,
		basic:              a.flags.basicText || cfg.BasicText,
		hideRateLimit:      a.flags.hideRateLimit || cfg.HideRateLimitInfo,
		acknowledgePricing: a.flags.acknowledgePricing || cfg.AcceptPriceWarning,
		hideLinks:          a.flags.hideLinks || cfg.HideLinks,
		onlyTLDs:           onlyTLDs,
	}

	a.logger.Debug("debug mode enabled", "command", cmd.CommandPath(), "config_file", cfg.ConfigFile, "friendly", friendly)
	return nil
}

// registrar returns the usecase, building it on first use
func (a *app) registrar() (usecase.RegistrarUsecase, error) {
	if a.uc != nil {
		return a.uc, nil
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	a.uc = usecase.NewFromConfig(a.cfg, a.logger)
	return a.uc, nil
}

// run adapts a registrar call into a cobra RunE that prints the result
func (a *app) run(kind formatKind, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a.logger.Debug("executing command", "command", cmd.CommandPath(), "args", args)

		uc, err := a.registrar()
		if err != nil {
			a.out.failure(err)
			return errReported
		}

		data, err := fn(cmd.Context(), uc, args)
		if err != nil {
			a.logger.Debug("command failed", "command", cmd.CommandPath(), "error", err)
			a.out.failure(err)
			return errReported
		}
		return a.out.result(kind, data, nil)
	}
}

// domainArg normalizes a domain argument to its ASCII form
func domainArg(arg string) (string, error) {
	return tools.NormalizeDomain(arg)
}

// requireSubcommand fails a group command run without a valid subcommand
func requireSubcommand(what string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
		}
		return fmt.Errorf("please specify %s command. Use --help to see available options", what)
	}
}

func easterEggCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "baa-ram-ewe",
		Aliases: []string{"BAA-RAM-EWE"},
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "That'll do, pig. That'll do.")
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"ver", "ve", "v"},
		Short:   "Show version information",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			lines := []string{
				"swinelink v" + strings.TrimPrefix(a.opts.Version, "v"),
				"Command-line, HTTP and MCP client for the Porkbun domain API",
				"",
				"DISCLAIMER:",
				"This project is not connected to or created by Porkbun, LLC.",
				"This is an independent third-party client for the Porkbun API.",
				"",
				"API data attribution: Porkbun, LLC (https://porkbun.com)",
				"",
				"The Porkbun API is provided WITHOUT ANY WARRANTY; without even the",
				"implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.",
				"",
				a.out.text(`✨ "TERRIFIC!" - Charlotte A. Cavatica`),
			}
			for _, line := range lines {
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
}

func (a *app) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ping",
		Aliases: []string{"pin", "pi"},
		Short:   "Test API connection",
		Args:    cobra.NoArgs,
		RunE: a.run(formatPing, func(ctx context.Context, uc usecase.RegistrarUsecase, _ []string) (map[string]any, error) {
			return uc.Ping(ctx)
		}),
	}
}
