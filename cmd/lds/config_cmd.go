package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lds/internal/config"
)

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return fatal(err)
	}
	fmt.Fprintf(c.App.Writer, "// root: %s\n", cfg.Project.Root)
	if err := cfg.WriteKDL(c.App.Writer); err != nil {
		return fatal(err)
	}
	return nil
}

func configInitCommand(c *cli.Context) error {
	dir := c.String("root")
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, config.FileName)

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fatal(fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}

	var buf bytes.Buffer
	if err := config.Default().WriteKDL(&buf); err != nil {
		return fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fatal(fmt.Errorf("failed to write %s: %w", path, err))
	}

	fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return nil
}
