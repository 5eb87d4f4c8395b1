package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnai-sh/omnai/internal/registry"
)

func init() {
	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List known engines and whether each is installed",
		Run:   runEngines,
	}
	RootCmd.AddCommand(cmd)
}

func runEngines(cmd *cobra.Command, args []string) {
	settings := loadSettings()
	selected := registry.Detect(settings.Engine)

	for _, e := range registry.Engines() {
		mark := " "
		if registry.IsInstalled(e.ID) {
			mark = "✓"
		}
		note := ""
		if e.ID == selected {
			note = "  (selected)"
		}
		fmt.Printf("  [%s] %-10s %-22s default=%s%s\n", mark, e.ID, e.Name, e.DefaultModel, note)
	}
	if selected == "" {
		fmt.Println("\nno supported engine found on PATH")
	}
}
