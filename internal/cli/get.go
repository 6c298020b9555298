package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <demo>",
	Short: "Print a demo's configuration",
	Long: `Print a demo's config.json, pretty-printed.

Examples:
  demodash get acme
  demodash get acme --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	demo, err := st.Get(args[0])
	if err != nil {
		return fmt.Errorf("get demo: %w", err)
	}

	out, err := json.MarshalIndent(demo, "", "  ")
	if err != nil {
		return fmt.Errorf("encode demo: %w", err)
	}
	fmt.Println(string(out))

	if verbose {
		explainer, err := st.Explainer(demo.ID)
		if err != nil {
			return fmt.Errorf("read explainer: %w", err)
		}
		fmt.Printf("\nExplainer:\n%s\n", explainer)
	}
	return nil
}
