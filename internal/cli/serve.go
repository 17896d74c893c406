package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/docucheck/internal/llm"
	"github.com/ppiankov/docucheck/internal/pipeline"
	"github.com/ppiankov/docucheck/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the check endpoint over HTTP",
	Long: `Serve exposes check sessions over HTTP:

  POST /check               {pdfText, rules, model, includeSummary}
  POST /api/check-document  alias of /check
  GET  /models              advisory model catalog
  GET  /healthz             liveness and credential status

The server starts even without an API key. Each check then fails with a
generic 500 response and the cause is logged.

Example:
  OPENROUTER_API_KEY=... docucheck serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr from config)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := slog.Default()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMaxTextChars(cfg.Check.MaxTextChars),
	}

	var judge pipeline.Judge
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM), llm.WithLogger(logger))
	switch {
	case err == nil:
		judge = provider
	case errors.Is(err, llm.ErrMissingAPIKey):
		logger.Warn("server.config.missing_key", "env", llm.APIKeyEnv(cfg.LLM.Provider))
		opts = append(opts, server.WithConfigError(err))
	default:
		return fmt.Errorf("create provider: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewServer(cfg.Server, judge, opts...).Run(ctx)
}
