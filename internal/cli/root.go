package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AppName names the config directory and env prefix
const AppName = "docucheck"

var version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docucheck",
	Short: "DocuCheck - LLM-judged document compliance checks",
	Long: `DocuCheck checks a document against three natural-language compliance
rules. Each rule is judged by a language model, which returns pass or fail
with a quoted piece of evidence, a short reasoning and a confidence score.

Rules are validated before any model call is made: they must be statements
of 10-200 characters, and no two rules may be duplicates or near-duplicates.

Judgments come from a language model. Treat them as a reviewer's first pass,
not as a final decision.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logFormat, verbose, cmd.Name() == "serve")
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docucheck %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: "+defaultConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// defaultConfigPath returns the XDG config file location
func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// DOCUCHECK_LLM_MODEL overrides llm.model, and so on
	viper.SetEnvPrefix("DOCUCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.site_url", "DOCUCHECK_LLM_SITE_URL", "DOCUCHECK_SITE_URL")
	_ = viper.BindEnv("llm.site_title", "DOCUCHECK_LLM_SITE_TITLE", "DOCUCHECK_SITE_TITLE")

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}

// setupLogging installs the default slog logger. Logs go to stderr so that
// stdout stays clean for reports; the server logs at info by default.
func setupLogging(format string, verbose, service bool) error {
	level := slog.LevelWarn
	if service {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s (supported: text, json)", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
