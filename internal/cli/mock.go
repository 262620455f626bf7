package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/irsim/irsim/internal/config"
	"github.com/irsim/irsim/internal/logger"
	"github.com/irsim/irsim/internal/mockapi"
)

func newMockCmd(root *rootFlags) *cobra.Command {
	var (
		host  string
		port  int
		token string
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the built-in scenario API",
		Long: `Serve the scenario/session API from the embedded scenario catalog so the
trainer can run without a real backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Mock.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Mock.Port = port
			}
			if err := setupLogging(cfg); err != nil {
				return err
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mockapi.NewServer(mockapi.DefaultCatalog(), token)
			fmt.Fprintf(cmd.OutOrStdout(), "Mock API listening on http://%s%s\n", cfg.MockAddr(), mockapi.Prefix)
			return srv.ListenAndServe(ctx, cfg.MockAddr())
		},
	}
	cmd.Flags().StringVar(&host, "host", config.DefaultMockHost, "Interface to listen on")
	cmd.Flags().IntVar(&port, "port", config.DefaultMockPort, "Port to listen on")
	cmd.Flags().StringVar(&token, "token", "", "Require this bearer token on every request")
	return cmd
}
