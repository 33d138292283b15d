package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/finsight/internal/config"
	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/router"
)

func newQueryCmd() *cobra.Command {
	var (
		mode     string
		language string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Run a one-shot query and print the aggregated answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			parsedMode, err := domain.ParseMode(mode)
			if err != nil {
				return err
			}

			cfg, err := config.Load(paths.Config)
			if err != nil {
				cfg = config.Defaults()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			agents, err := buildAgents(ctx, cfg, log)
			if err != nil {
				return err
			}
			composer := buildComposer(cfg, log)
			r := router.New(agents, cfg.Router, composer, log)

			result, err := r.Run(ctx, domain.Query{
				Text:     text,
				Mode:     parsedMode,
				Language: language,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Println(result.Combined)
			for _, resp := range result.Responses {
				if resp.Failed {
					fmt.Fprintf(cmd.ErrOrStderr(), "\n[%s failed: %s]\n", resp.AgentID, resp.Error)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\n[status=%s duration=%s]\n", result.Status, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "web", "query mode (web, news, finance, team)")
	cmd.Flags().StringVar(&language, "lang", "", "news language (en, fr)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")

	return cmd
}
