package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnai-sh/omnai/internal/registry"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate-model <model>",
		Short: "Check a model id against the known configurations",
		Args:  cobra.ExactArgs(1),
		Run:   runValidateModel,
	}

	cmd.Flags().StringP("engine", "e", "", "Engine the model must belong to")

	RootCmd.AddCommand(cmd)
}

func runValidateModel(cmd *cobra.Command, args []string) {
	engine, _ := cmd.Flags().GetString("engine")

	cfg, err := registry.Validate(args[0], engine)
	if err != nil {
		var ve *registry.ValidationError
		if !errors.As(err, &ve) {
			exitErr("validate", err)
		}
		fmt.Fprintf(os.Stderr, "error [%s]: %s\n", ve.Kind, ve.Message)
		for _, c := range ve.Candidates {
			fmt.Fprintf(os.Stderr, "  did you mean: %s (%s)\n", c.ID, c.Engine)
		}
		os.Exit(1)
	}
	fmt.Printf("%s is valid for %s (invoked as %q)\n", cfg.ID, cfg.Engine, cfg.Model)
	if cfg.Notes != "" {
		fmt.Printf("  %s\n", cfg.Notes)
	}
}
