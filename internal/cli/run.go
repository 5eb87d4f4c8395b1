package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnai-sh/omnai/internal/dispatch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Dispatch a prompt to an AI engine",
		Long: "Runs one prompt against the selected (or auto-detected) engine.\n" +
			"Reads the prompt from the argument, or from stdin when absent.",
		Args: cobra.MaximumNArgs(1),
		Run:  runRun,
	}

	cmd.Flags().StringP("engine", "e", "", "Engine id (default: configured or auto-detected)")
	cmd.Flags().StringP("model", "m", "", "Model id (default: engine default)")
	cmd.Flags().Int("timeout", 0, "Timeout in seconds (default: configured)")
	cmd.Flags().Bool("retry", false, "Retry transient failures with backoff")
	cmd.Flags().Bool("background", false, "Detach the invocation and print immediately")

	RootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) {
	engine, _ := cmd.Flags().GetString("engine")
	model, _ := cmd.Flags().GetString("model")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	withRetry, _ := cmd.Flags().GetBool("retry")
	background, _ := cmd.Flags().GetBool("background")

	prompt := ""
	if len(args) == 1 {
		prompt = args[0]
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			exitErr("read prompt from stdin", err)
		}
		prompt = string(b)
	}
	if strings.TrimSpace(prompt) == "" {
		exitErr("run", fmt.Errorf("empty prompt"))
	}

	settings := loadSettings()
	d := dispatch.New(settings)
	req := dispatch.Request{
		Prompt:     prompt,
		Engine:     engine,
		Model:      model,
		Timeout:    time.Duration(timeoutSec) * time.Second,
		WorkingDir: workDir,
		Retry:      withRetry,
	}

	if background {
		h, err := d.Start(req)
		if err != nil {
			exitDispatchErr(err)
		}
		fmt.Printf("started %s in background, waiting...\n", h.Engine)
		res, err := h.Wait()
		if err != nil {
			exitDispatchErr(err)
		}
		fmt.Print(res.Stdout)
		return
	}

	res, err := d.Run(cmd.Context(), req)
	if err != nil {
		exitDispatchErr(err)
	}
	fmt.Print(res.Stdout)
}

// exitDispatchErr prints the classified failure with its suggestion and any
// candidate models, then exits nonzero.
func exitDispatchErr(err error) {
	de, ok := err.(*dispatch.Error)
	if !ok {
		exitErr("dispatch", err)
	}
	fmt.Fprintf(os.Stderr, "error [%s]: %s\n", de.Kind, de.Message)
	if de.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", de.Suggestion)
	}
	for _, c := range de.Candidates {
		fmt.Fprintf(os.Stderr, "  candidate: %s (%s)\n", c.Model, c.Engine)
	}
	os.Exit(1)
}
