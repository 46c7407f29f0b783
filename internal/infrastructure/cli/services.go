package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/compaudit/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var (
	projectPath  string
	documentPath string
	logLevel     string
)

func loadServices(cmd *cobra.Command, actor string) (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	opts := wiring.Options{Document: documentPath, Actor: actor}
	if logLevel != "" {
		opts.Logger = wiring.NewLogger(os.Stderr, logLevel)
	}
	services, err := wiring.BuildAppServices(commandContext(cmd), root, opts)
	if err != nil {
		return nil, MapError(fmt.Errorf("failed to build services: %w", err))
	}
	return services, nil
}

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
