package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/docucheck/internal/llm"
	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/validate"
	"github.com/ppiankov/docucheck/internal/worker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"
)

// Flags shared by check, batch and validate
var (
	ruleFlags   []string
	rulesFile   string
	modelFlag   string
	withSummary bool
	noFooter    bool
)

func addRuleFlags(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&ruleFlags, "rule", "r", nil, "compliance rule (repeat exactly 3 times)")
	fs.StringVar(&rulesFile, "rules-file", "", "file with one rule per line (# comments allowed)")
}

func addModelFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&modelFlag, "model", "m", "", "model id (default: llm.model from config)")
	fs.BoolVar(&withSummary, "summary", false, "also generate a document summary")
	fs.BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

// collectRules reads rules from --rule or --rules-file and validates them
// before anything else runs
func collectRules() ([]string, error) {
	rules, err := readRules(ruleFlags, rulesFile)
	if err != nil {
		return nil, err
	}
	if err := validate.ValidateRuleSet(rules); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}

func readRules(flags []string, file string) ([]string, error) {
	if len(flags) > 0 && file != "" {
		return nil, fmt.Errorf("use either --rule or --rules-file, not both")
	}
	if file != "" {
		rules, err := worker.ReadLines(file)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		return rules, nil
	}
	if len(flags) == 0 {
		return nil, fmt.Errorf("no rules provided: pass --rule three times or --rules-file")
	}
	return flags, nil
}

// resolveRun applies per-command flags on top of the loaded config
func resolveRun(cfg *model.Config) (modelID string, summary bool) {
	modelID = modelFlag
	if modelID == "" {
		modelID = cfg.LLM.Model
	}
	if modelID == "" {
		modelID = llm.DefaultModel()
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	return modelID, withSummary || cfg.Check.Summary
}

// newProvider builds the LLM provider, pointing at the env variable to set
// when the credential is missing
func newProvider(cfg *model.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM), llm.WithLogger(slog.Default()))
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w: set %s", err, llm.APIKeyEnv(cfg.LLM.Provider))
		}
		return nil, err
	}
	return provider, nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// reportBaseName turns a document path into a safe report file stem
func reportBaseName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	base = replacer.Replace(base)

	if len(base) > 100 {
		base = base[:100]
	}
	if base == "" || base == "." {
		base = "document"
	}
	return base
}
