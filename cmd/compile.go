package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threadstead/threadstead/internal/components"
	"github.com/threadstead/threadstead/internal/types"
)

var (
	compileMode   string
	compileCSS    string
	compileOutput string
)

// compileCmd compiles one template file and prints the result.
var compileCmd = &cobra.Command{
	Use:     "compile <template.html>",
	Aliases: []string{"c"},
	Short:   "Compile a profile template",
	Long: `Compile a profile template file and print the compiled result as JSON:
rendering mode, static markup, the island manifest, the fallback chain, and
any warnings.

Examples:
  threadstead compile home.html
  threadstead compile home.html --mode advanced --css home.css
  threadstead compile home.html -o compiled.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompileCommand,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileMode, "mode", "m", "advanced", "Rendering mode (default, enhanced, advanced)")
	compileCmd.Flags().StringVar(&compileCSS, "css", "", "Custom CSS file to attach")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Write the result to a file instead of stdout")
}

func runCompileCommand(cmd *cobra.Command, args []string) error {
	cfg, _, _, comp, err := buildPipeline()
	if err != nil {
		return err
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	var customCSS string
	if compileCSS != "" {
		css, err := os.ReadFile(compileCSS)
		if err != nil {
			return fmt.Errorf("reading css: %w", err)
		}
		customCSS = string(css)
	}

	mode := types.Mode(compileMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", compileMode)
	}

	req := types.CompileRequest{
		Source:    string(source),
		CustomCSS: customCSS,
		Data:      components.SampleResidentData(""),
		Options: types.CompileOptions{
			Mode:        mode,
			Optimize:    cfg.Compiler.Optimize,
			SEOMetadata: cfg.Compiler.SEOMetadata,
		},
	}

	result := comp.Compile(cmd.Context(), req)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if compileOutput != "" {
		if err := os.WriteFile(compileOutput, append(encoded, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	} else {
		fmt.Println(string(encoded))
	}

	if !result.Success {
		return fmt.Errorf("compilation failed with %d error(s)", len(result.Errors))
	}
	return nil
}
