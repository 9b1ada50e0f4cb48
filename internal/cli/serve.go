package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voltcluster/voltcluster/pkg/server"
	"github.com/voltcluster/voltcluster/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clustering HTTP API",
		Long: `Run the clustering HTTP API.

Cache and run-store backends come from the config file. With the defaults,
results are cached on disk and runs are kept in memory; configure Redis and
MongoDB for multi-instance deployments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close(context.Background())

	runner, err := c.newRunner(false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	runner.Store = st
	defer runner.Close()

	var opts []server.Option
	if c.Config.Server.TimeoutSeconds > 0 {
		opts = append(opts, server.WithTimeout(time.Duration(c.Config.Server.TimeoutSeconds)*time.Second))
	}
	srv := server.New(runner, st, c.Logger, opts...)

	return srv.ListenAndServe(ctx, addr)
}

// newStore builds the run store backend from config.
func (c *CLI) newStore(ctx context.Context) (store.RunStore, error) {
	if c.Config.Store.Backend == "mongo" {
		return store.NewMongoStore(ctx, c.Config.Store.MongoURI, c.Config.Store.MongoDB)
	}
	return store.NewMemoryStore(), nil
}
