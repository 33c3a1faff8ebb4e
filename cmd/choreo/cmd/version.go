package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/choreo/cmd/choreo/internal/config"
	"github.com/go-drift/choreo/pkg/scene"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long: `Print the CLI version, the newest scene format it reads and, when run
inside a project, the project it resolved.`,
		Usage: "choreo version",
		Run:   runVersion,
	})
}

func runVersion(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("version takes no arguments")
	}
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	return version(dir)
}

func version(dir string) error {
	printVersion()
	fmt.Fprintf(stdout, "scene format %s\n", scene.EngineVersion)

	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.ModulePath != "" {
		fmt.Fprintf(stdout, "project %s (%s)\n", cfg.ProjectName, cfg.ModulePath)
	}
	return nil
}
