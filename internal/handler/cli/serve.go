package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thinko/swinelink/internal/handler"
	"github.com/thinko/swinelink/internal/handler/httpapi"
	"github.com/thinko/swinelink/internal/handler/mcpserver"
	"github.com/thinko/swinelink/internal/handler/tools"
	"github.com/thinko/swinelink/pkg/storage"
)

func (a *app) serveCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		Long: `Run the HTTP tool server. It exposes the manifest, tool list and invoke
endpoints. When SWINELINK_API_KEYS or SWINELINK_MANAGEMENT_KEY are set,
requests must carry "Authorization: Bearer <key>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.registrar()
			if err != nil {
				a.out.failure(err)
				return errReported
			}
			if port == "" {
				port = a.cfg.Port
			}

			apiKeys := httpapi.NewAPIKeyStore(
				a.cfg.ManagementKey,
				a.cfg.HTTPAPIKeys,
				storage.NewJSONStorage(a.cfg.DataDir),
				a.logger.Named("keys"),
			)
			srv := httpapi.NewServer(tools.NewRegistry(uc), apiKeys, port, a.logger.Named("http"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return handler.Run(ctx, srv)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from PORT or 3000)")
	return cmd
}

func (a *app) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.registrar()
			if err != nil {
				a.out.failure(err)
				return errReported
			}
			return mcpserver.NewServer(tools.NewRegistry(uc), a.logger.Named("mcp")).Start()
		},
	}
}
