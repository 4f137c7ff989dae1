package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thinko/swinelink/pkg/config"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"conf", "co"},
		Short:   "Setup or view configuration",
		RunE:    requireSubcommand("a config"),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create initial user config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := a.opts.Loader.InitUserConfig()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !created {
				fmt.Fprintln(w, a.out.text("ℹ️  Config file already exists at: "+path))
				fmt.Fprintln(w, a.out.text("📝 Edit it to update your credentials."))
				return nil
			}
			fmt.Fprintln(w, a.out.text("✅ Created default config file at: "+path))
			fmt.Fprintln(w)
			fmt.Fprintln(w, a.out.text("📝 Please edit this file and add your Porkbun API credentials:"))
			fmt.Fprintln(w, "   Get them from: https://porkbun.com/account/api")
			fmt.Fprintln(w)
			fmt.Fprintln(w, a.out.text("🔧 You can also set environment variables instead:"))
			fmt.Fprintln(w, `   export PORKBUN_API_KEY="your_key"`)
			fmt.Fprintln(w, `   export PORKBUN_SECRET_KEY="your_secret"`)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "   or store them in your keychain with: swinelink config login")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := a.cfg.Redacted()
			if !a.out.friendly {
				return writeJSON(cmd.OutOrStdout(), settings)
			}

			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, a.out.text("⚙️  Current configuration:"))
			fmt.Fprintln(w)
			for _, k := range keys {
				fmt.Fprintf(w, "   %-26s %s\n", k, settings[k])
			}
			return nil
		},
	})

	var apiKey, secretKey string
	login := &cobra.Command{
		Use:   "login",
		Short: "Store API credentials in the OS keychain",
		Long: `Store your Porkbun API key and secret key in the OS keychain. Values not
given as flags are prompted for.

Example:
  swinelink config login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if apiKey == "" {
				if apiKey, err = a.prompt(cmd, "Enter API key: "); err != nil {
					return err
				}
			}
			if secretKey == "" {
				if secretKey, err = a.prompt(cmd, "Enter secret API key: "); err != nil {
					return err
				}
			}
			if apiKey == "" || secretKey == "" {
				return fmt.Errorf("both the API key and the secret key are required")
			}

			if err := config.SaveCredentials(apiKey, secretKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.out.text("✅ Credentials saved to the keychain"))
			return nil
		},
	}
	login.Flags().StringVar(&apiKey, "api-key", "", "Porkbun API key (optional, overrides prompt)")
	login.Flags().StringVar(&secretKey, "secret-key", "", "Porkbun secret API key (optional, overrides prompt)")
	cmd.AddCommand(login)

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Remove API credentials from the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteCredentials(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.out.text("✅ Credentials removed from the keychain"))
			return nil
		},
	})

	return cmd
}

// prompt reads a secret without echo on a terminal, or a plain line otherwise
func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)

	fd := int(a.opts.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(a.opts.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
