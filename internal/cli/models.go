package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ppiankov/docucheck/internal/llm"
	"github.com/ppiankov/docucheck/internal/render"
	"github.com/spf13/cobra"
)

var (
	modelsJSON bool
	modelsPing bool
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List suggested models",
	Long: `Models lists the advisory model catalog. Any model id accepted by the
configured provider can be passed with --model; the first entry is the default.

Use --ping to verify the configured credential against the provider.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
	modelsCmd.Flags().BoolVar(&modelsPing, "ping", false, "check that the configured provider is reachable")
}

func runModels(cmd *cobra.Command, args []string) error {
	models := llm.Models()
	def := llm.DefaultModel()

	if modelsJSON {
		if err := render.WriteJSON(os.Stdout, map[string]any{"models": models, "default": def}); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPROVIDER\tFREE")
		for _, m := range models {
			id := m.ID
			if id == def {
				id += " (default)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", id, m.Name, m.Provider, m.Free)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if !modelsPing {
		return nil
	}

	cfg := loadConfig()
	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	if !provider.IsAvailable(ctx) {
		return fmt.Errorf("%s is not reachable with the configured credential", provider.Name())
	}
	fmt.Fprintf(os.Stderr, "✓ %s is reachable\n", provider.Name())
	return nil
}
