package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/threadstead/threadstead/internal/config"
)

// initCmd scaffolds a template workspace.
var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"i"},
	Short:   "Initialize a template workspace",
	Long: `Create a starter workspace: a .threadstead.yml with the default
configuration, a templates directory, and an example pixel-home template
with a CSS sidecar.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitCommand,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const starterTemplate = `<ProfileHero variant="tape">
  <ProfilePhoto size="xl" shape="circle" />
  <DisplayName as="h1" />
  <Bio />
</ProfileHero>
<main class="profile-body">
  <BlogPosts limit="5" />
  <WebsiteDisplay />
  <Guestbook limit="10" />
</main>
`

const starterCSS = `.profile-hero {
  padding: 2rem;
  border: 3px dashed #7c9a72;
}
.profile-body {
  max-width: 48rem;
  margin: 0 auto;
}
`

func runInitCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	templatesDir := filepath.Join(dir, "templates")
	if err := os.MkdirAll(templatesDir, 0o755); err != nil {
		return fmt.Errorf("creating templates directory: %w", err)
	}

	cfgPath := filepath.Join(dir, ".threadstead.yml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	encoded, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(cfgPath, encoded, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(templatesDir, "home.html"), []byte(starterTemplate), 0o644); err != nil {
		return fmt.Errorf("writing starter template: %w", err)
	}
	if err := os.WriteFile(filepath.Join(templatesDir, "home.css"), []byte(starterCSS), 0o644); err != nil {
		return fmt.Errorf("writing starter css: %w", err)
	}

	fmt.Printf("Initialized ThreadStead workspace in %s\n", dir)
	fmt.Println("Next: threadstead serve, then open the preview in a browser.")
	return nil
}
