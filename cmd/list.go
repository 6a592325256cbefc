package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var listFormat string

// listCmd prints the registered component catalog.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List registered template components",
	Long: `List every component available to profile templates along with its
kind, interactivity, and property schema.

Examples:
  threadstead list
  threadstead list --format json`,
	RunE: runListCommand,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format (text, json)")
}

func runListCommand(cmd *cobra.Command, args []string) error {
	_, _, reg, _, err := buildPipeline()
	if err != nil {
		return err
	}

	if listFormat == "json" {
		type propJSON struct {
			Type     string   `json:"type"`
			Required bool     `json:"required,omitempty"`
			Default  any      `json:"default,omitempty"`
			Enum     []string `json:"enum,omitempty"`
		}
		type regJSON struct {
			Name        string              `json:"name"`
			Kind        string              `json:"kind"`
			Interactive bool                `json:"interactive"`
			Props       map[string]propJSON `json:"props"`
		}
		var out []regJSON
		for _, name := range reg.Names() {
			r, _ := reg.Get(name)
			entry := regJSON{
				Name:        r.Name,
				Kind:        r.Kind.String(),
				Interactive: r.Interactive,
				Props:       make(map[string]propJSON, len(r.Props)),
			}
			for propName, spec := range r.Props {
				entry.Props[propName] = propJSON{
					Type:     string(spec.Type),
					Required: spec.Required,
					Default:  spec.Default,
					Enum:     spec.Enum,
				}
			}
			out = append(out, entry)
		}
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	for _, name := range reg.Names() {
		r, _ := reg.Get(name)
		marker := " "
		if r.Interactive {
			marker = "*"
		}
		fmt.Printf("%s %-16s %-9s %s\n", marker, r.Name, r.Kind.String(), r.Description)

		propNames := make([]string, 0, len(r.Props))
		for propName := range r.Props {
			propNames = append(propNames, propName)
		}
		sort.Strings(propNames)
		for _, propName := range propNames {
			spec := r.Props[propName]
			detail := string(spec.Type)
			if len(spec.Enum) > 0 {
				detail = strings.Join(spec.Enum, "|")
			}
			if spec.Default != nil {
				detail += fmt.Sprintf(" (default %v)", spec.Default)
			}
			fmt.Printf("      %-14s %s\n", propName, detail)
		}
	}
	fmt.Println("\n* interactive (hydrated as an island)")
	return nil
}
