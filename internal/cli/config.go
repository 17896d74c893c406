package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/docucheck/internal/llm"
	"github.com/ppiankov/docucheck/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// setDefaults registers every config key with its default so that env
// variables and the config file can override any of them
func setDefaults() {
	d := model.DefaultConfig()

	viper.SetDefault("llm.provider", d.LLM.Provider)
	viper.SetDefault("llm.model", d.LLM.Model)
	viper.SetDefault("llm.api_key", d.LLM.APIKey)
	viper.SetDefault("llm.base_url", d.LLM.BaseURL)
	viper.SetDefault("llm.site_url", d.LLM.SiteURL)
	viper.SetDefault("llm.site_title", d.LLM.SiteTitle)
	viper.SetDefault("llm.temperature", d.LLM.Temperature)
	viper.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	viper.SetDefault("llm.summary_max_tokens", d.LLM.SummaryMaxTokens)
	viper.SetDefault("llm.timeout", d.LLM.Timeout)
	viper.SetDefault("llm.http_proxy", d.LLM.HTTPProxy)
	viper.SetDefault("llm.https_proxy", d.LLM.HTTPSProxy)

	viper.SetDefault("check.max_text_chars", d.Check.MaxTextChars)
	viper.SetDefault("check.summary", d.Check.Summary)

	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	viper.SetDefault("server.submit_interval", d.Server.SubmitInterval)
	viper.SetDefault("server.read_header_timeout", d.Server.ReadHeaderTimeout)

	viper.SetDefault("extract.max_file_bytes", d.Extract.MaxFileBytes)
	viper.SetDefault("extract.pdftotext", d.Extract.Pdftotext)

	viper.SetDefault("output.verbose", d.Output.Verbose)
	viper.SetDefault("output.include_footer", d.Output.IncludeFooter)
}

// loadConfig resolves the effective configuration once. The API key falls
// back to the provider's conventional env variable (OPENROUTER_API_KEY).
func loadConfig() *model.Config {
	cfg := &model.Config{
		LLM: model.LLMConfig{
			Provider:         viper.GetString("llm.provider"),
			Model:            viper.GetString("llm.model"),
			APIKey:           viper.GetString("llm.api_key"),
			BaseURL:          viper.GetString("llm.base_url"),
			SiteURL:          viper.GetString("llm.site_url"),
			SiteTitle:        viper.GetString("llm.site_title"),
			Temperature:      float32(viper.GetFloat64("llm.temperature")),
			MaxTokens:        viper.GetInt("llm.max_tokens"),
			SummaryMaxTokens: viper.GetInt("llm.summary_max_tokens"),
			Timeout:          viper.GetDuration("llm.timeout"),
			HTTPProxy:        viper.GetString("llm.http_proxy"),
			HTTPSProxy:       viper.GetString("llm.https_proxy"),
		},
		Check: model.CheckConfig{
			MaxTextChars: viper.GetInt("check.max_text_chars"),
			Summary:      viper.GetBool("check.summary"),
		},
		Server: model.ServerConfig{
			Addr:              viper.GetString("server.addr"),
			MaxBodyBytes:      viper.GetInt64("server.max_body_bytes"),
			SubmitInterval:    viper.GetDuration("server.submit_interval"),
			ReadHeaderTimeout: viper.GetDuration("server.read_header_timeout"),
		},
		Extract: model.ExtractConfig{
			MaxFileBytes: viper.GetInt64("extract.max_file_bytes"),
			Pdftotext:    viper.GetString("extract.pdftotext"),
		},
		Output: model.OutputConfig{
			Verbose:       viper.GetBool("output.verbose"),
			IncludeFooter: viper.GetBool("output.include_footer"),
		},
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(llm.APIKeyEnv(cfg.LLM.Provider))
	}
	return cfg
}

// redacted returns a copy safe to print
func redacted(cfg *model.Config) *model.Config {
	out := *cfg
	if out.LLM.APIKey != "" {
		out.LLM.APIKey = redactKey(out.LLM.APIKey)
	}
	return &out
}

func redactKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage DocuCheck configuration",
	Long: `Manage DocuCheck configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (DOCUCHECK_*, OPENROUTER_API_KEY)
3. Config file (` + defaultConfigPath() + `)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags. The API key is redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults and environment)\n\n")
		}

		yamlData, err := yaml.Marshal(redacted(cfg))
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Print(string(yamlData))

		if cfg.LLM.APIKey == "" {
			fmt.Fprintf(os.Stderr, "\nNo API key configured. Set %s to run checks.\n", llm.APIKeyEnv(cfg.LLM.Provider))
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ` + defaultConfigPath() + ` with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := defaultConfigPath()
		if cfgFile != "" {
			configPath = cfgFile
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'docucheck config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		if err := writeDefaultConfig(f); err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  docucheck config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n\n", configPath)
		return nil
	},
}

func writeDefaultConfig(f *os.File) error {
	header := `# DocuCheck Configuration File
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (DOCUCHECK_*, e.g. DOCUCHECK_LLM_MODEL)
#   3. This config file
#   4. Built-in defaults

`
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if _, err := f.Write(yamlData); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	footer := `
# API key (recommended to use environment variables instead):
#   export OPENROUTER_API_KEY=sk-or-...
#   export OPENAI_API_KEY=sk-...        # with llm.provider: openai
`
	if _, err := f.WriteString(footer); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
