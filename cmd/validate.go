package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threadstead/threadstead/internal/components"
	"github.com/threadstead/threadstead/internal/types"
)

// validateCmd checks templates without emitting compiled output.
var validateCmd = &cobra.Command{
	Use:     "validate <template.html> [more templates...]",
	Aliases: []string{"v"},
	Short:   "Validate profile templates",
	Long: `Validate one or more template files in advanced mode and report the
fatal errors and warnings each would produce, without writing any output.
Exits non-zero when any template fails to compile.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, _, _, comp, err := buildPipeline()
	if err != nil {
		return err
	}

	var requests []types.CompileRequest
	for _, path := range args {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		requests = append(requests, types.CompileRequest{
			Source: string(source),
			Data:   components.SampleResidentData(""),
			Options: types.CompileOptions{
				Mode:     types.ModeAdvanced,
				Optimize: cfg.Compiler.Optimize,
			},
		})
	}

	results := comp.CompileBatch(cmd.Context(), requests)

	failed := 0
	for i, result := range results {
		path := args[i]
		if !result.Success {
			failed++
			fmt.Printf("✗ %s\n", path)
			for _, msg := range result.Errors {
				fmt.Printf("    error: %s\n", msg)
			}
			continue
		}
		fmt.Printf("✓ %s (%d islands)\n", path, result.Compiled.IslandCount())
		for _, msg := range result.Compiled.Warnings {
			fmt.Printf("    warning: %s\n", msg)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed validation", failed, len(args))
	}
	return nil
}
