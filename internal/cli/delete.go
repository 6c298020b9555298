package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <demo>",
	Short: "Delete a demo",
	Long: `Delete a demo directory and its shared instruction documents.

Built-in demos cannot be deleted. Requires confirmation unless --force
is used.

Examples:
  demodash delete acme
  demodash delete acme --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	demo, err := st.Get(id)
	if err != nil {
		return fmt.Errorf("get demo: %w", err)
	}

	if !deleteForce {
		fmt.Printf("About to delete: %s (%s, %d assistants)\n", demo.ID, demo.Title, len(demo.Assistants))
		fmt.Print("\nContinue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	report, err := st.Delete(id)
	if err != nil {
		return fmt.Errorf("delete demo: %w", err)
	}

	for _, path := range report.Removed {
		fmt.Printf("Removed: %s\n", path)
	}
	for _, failure := range report.Failed {
		fmt.Fprintf(os.Stderr, "Failed: %s (%s)\n", failure.Path, failure.Error)
	}
	if report.Partial() {
		return fmt.Errorf("deletion incomplete: %d paths could not be removed", len(report.Failed))
	}

	fmt.Printf("Deleted: %s\n", id)
	return nil
}
