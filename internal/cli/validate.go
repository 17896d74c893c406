package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/docucheck/internal/validate"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rule set without checking any document",
	Long: `Validate applies the same rule set checks as check and serve:
exactly three rules, 10-200 characters each, statements rather than questions,
with enough letters to be meaningful, and no duplicates or near-duplicates.

Example:
  docucheck validate --rules-file rules.txt
  docucheck validate -r "..." -r "..." -r "..." -v`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addRuleFlags(validateCmd.Flags())
}

func runValidate(cmd *cobra.Command, args []string) error {
	rules, err := readRules(ruleFlags, rulesFile)
	if err != nil {
		return err
	}

	if verbose {
		printSimilarities(rules)
	}

	if err := validate.ValidateRuleSet(rules); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	fmt.Printf("✓ %d rules are valid\n", len(rules))
	return nil
}

// printSimilarities shows how close each pair of rules is to the
// near-duplicate threshold
func printSimilarities(rules []string) {
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			sim := validate.Similarity(rules[i], rules[j])
			mark := " "
			if sim > validate.SimilarityThreshold {
				mark = "!"
			}
			fmt.Fprintf(os.Stderr, "%s rules %d and %d: similarity %.2f (limit %.2f)\n",
				mark, i+1, j+1, sim, validate.SimilarityThreshold)
		}
	}
}
