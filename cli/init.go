package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/firstapp/firstapp/core"
	"github.com/firstapp/firstapp/web"
	"github.com/urfave/cli/v2"
)

var InitCommand = &cli.Command{
	Name:  "init",
	Usage: "Write the starter config and templates into the current directory",
	Action: func(c *cli.Context) error {
		targetDir, err := os.Getwd()
		if err != nil {
			return err
		}
		out := c.App.Writer
		fmt.Fprintln(out, "🚀 Creating firstapp project in:", targetDir)

		configPath := filepath.Join(targetDir, core.DefaultConfigPath)
		wrote, err := writeIfMissing(configPath, core.StarterConfig())
		if err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		report(out, core.DefaultConfigPath, wrote)

		err = copyEmbeddedDir(web.Templates(), ".", filepath.Join(targetDir, "templates"), func(rel string, wrote bool) {
			report(out, filepath.Join("templates", rel), wrote)
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Fprintln(out, "✅ Project created successfully.")
		fmt.Fprintln(out, "▶  Run: firstapp dev")
		return nil
	},
}

func report(out io.Writer, name string, wrote bool) {
	if wrote {
		fmt.Fprintln(out, "📄 Wrote", name)
		return
	}
	fmt.Fprintln(out, "⏭️  Kept existing", name)
}

func writeIfMissing(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return false, err
	}
	return true, os.WriteFile(path, data, 0644)
}

func copyEmbeddedDir(source fs.FS, sourceDir string, targetDir string, onFile func(rel string, wrote bool)) error {
	return fs.WalkDir(source, sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		targetPath := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(targetPath, os.ModePerm)
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}

		wrote, err := writeIfMissing(targetPath, data)
		if err != nil {
			return err
		}
		if onFile != nil {
			onFile(rel, wrote)
		}
		return nil
	})
}
