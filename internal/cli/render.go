package cli

import (
	"fmt"
	"os"

	"github.com/akarsten/demodash-go/internal/instructions"
	"github.com/akarsten/demodash-go/internal/render"
	"github.com/spf13/cobra"
)

var (
	renderAssistant  string
	renderOutputFile string
)

var renderCmd = &cobra.Command{
	Use:   "render <demo>",
	Short: "Render a demo's markdown to sanitized HTML",
	Long: `Render a demo's explainer document to sanitized HTML, the same
transformation the server applies for the explainer/html endpoint.

With --assistant, the assistant's instruction document is rendered
instead, using the server's lookup order for instruction files.

Examples:
  demodash render acme
  demodash render acme --assistant support -o support.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderAssistant, "assistant", "a", "", "render this assistant's instructions instead of the explainer")
	renderCmd.Flags().StringVarP(&renderOutputFile, "output", "o", "", "write output to file")
}

func runRender(cmd *cobra.Command, args []string) error {
	id := args[0]

	var source string
	var err error
	if renderAssistant != "" {
		source, err = instructions.New(cfg.BaseDir).Resolve(id, renderAssistant)
		if err != nil {
			return fmt.Errorf("resolve instructions: %w", err)
		}
	} else {
		source, err = st.Explainer(id)
		if err != nil {
			return fmt.Errorf("read explainer: %w", err)
		}
	}

	html, err := render.New().HTML([]byte(source))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	if renderOutputFile != "" {
		if err := os.WriteFile(renderOutputFile, html, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", renderOutputFile)
		return nil
	}

	fmt.Println(string(html))
	return nil
}
