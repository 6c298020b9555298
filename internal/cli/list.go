package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List demos or legacy assistants",
	Long: `List the dynamic demos under the base directory.

Built-in demos are not listed; they ship with the frontend and are not
managed through this tool.

Subcommands:
  demos       List demos (default)
  assistants  List legacy flat-file assistants

Examples:
  demodash list
  demodash list assistants`,
	RunE: runListDemos,
}

var listDemosCmd = &cobra.Command{
	Use:   "demos",
	Short: "List demos",
	RunE:  runListDemos,
}

var listAssistantsCmd = &cobra.Command{
	Use:   "assistants",
	Short: "List legacy flat-file assistants",
	RunE:  runListAssistants,
}

func init() {
	listCmd.AddCommand(listDemosCmd)
	listCmd.AddCommand(listAssistantsCmd)
}

func runListDemos(cmd *cobra.Command, args []string) error {
	demos, err := st.List()
	if err != nil {
		return fmt.Errorf("list demos: %w", err)
	}

	if len(demos) == 0 {
		fmt.Println("No demos found.")
		return nil
	}

	fmt.Printf("Demos (%d):\n\n", len(demos))
	for _, demo := range demos {
		fmt.Printf("- %s: %s (by %s)\n", demo.ID, demo.Title, demo.Author)
		if verbose {
			for _, a := range demo.Assistants {
				locked := ""
				if a.Password != "" {
					locked = " [locked]"
				}
				fmt.Printf("  %s: %s%s\n", a.ID, a.Name, locked)
			}
		}
	}
	return nil
}

func runListAssistants(cmd *cobra.Command, args []string) error {
	assistants, err := st.LegacyAssistants()
	if err != nil {
		return fmt.Errorf("list assistants: %w", err)
	}

	if len(assistants) == 0 {
		fmt.Println("No legacy assistants found.")
		return nil
	}

	fmt.Printf("Assistants (%d):\n\n", len(assistants))
	for _, a := range assistants {
		fmt.Printf("- %s: %s\n", a.ID, a.Name)
		if verbose && a.Description != "" {
			fmt.Printf("  %s\n", a.Description)
		}
	}
	return nil
}
