package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/finsight/internal/config"
	"github.com/soyeahso/finsight/internal/gateway"
	"github.com/soyeahso/finsight/internal/logging"
	"github.com/soyeahso/finsight/internal/router"
	"github.com/soyeahso/finsight/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the finsight gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if logLevel == "" {
				log = logging.New(nil, cfg.Logging.Level, cfg.Logging.Style)
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			agents, err := buildAgents(ctx, cfg, log)
			if err != nil {
				return err
			}

			composer := buildComposer(cfg, log)
			if composer == nil && cfg.Router.Compose == "llm" {
				log.Warn().Msg("compose=llm but no LLM provider configured — falling back to concatenation")
			}

			var history store.History
			if cfg.History.Store == "sqlite" {
				dbPath := filepath.Join(paths.Data, "finsight.db")
				db, err := store.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				history = store.NewSQLiteHistory(db)
				log.Info().Str("path", dbPath).Msg("using SQLite history store")
			} else {
				history = store.NewMemoryHistory()
				log.Info().Msg("using in-memory history store")
			}

			r := router.New(agents, cfg.Router, composer, log)

			srv := gateway.New(cfg, log,
				gateway.WithRunner(r),
				gateway.WithHistory(history),
				gateway.WithAgents(agents.List()),
			)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
