package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/htmldoc"
)

// createEngine initializes the HTML engine with the pages listed in cfg.
// A non-empty fileRoot also allows file:// visits beneath it.
func createEngine(cfg *config.Config, logger *slog.Logger, fileRoot string) (*htmldoc.Engine, error) {
	pages := make(map[string]string, len(cfg.Pages))
	for url, file := range cfg.Pages {
		html, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading page %s: %w", url, err)
		}
		pages[url] = string(html)
	}
	opts := []htmldoc.Option{
		htmldoc.WithLogger(logger),
		htmldoc.WithPages(pages),
	}
	if fileRoot != "" {
		opts = append(opts, htmldoc.WithFileRoot(fileRoot))
	}
	return htmldoc.New(opts...), nil
}

// determinePageFile finds the page file of a project directory when the
// configured one does not exist.
// Priority:
// 1. pages.yaml
// 2. pages.yml
// 3. <DirectoryName>.yaml
func determinePageFile(dir string) (string, bool) {
	candidates := []string{
		"pages.yaml",
		"pages.yml",
		filepath.Base(dir) + ".yaml",
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
