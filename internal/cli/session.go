package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/htmldoc"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/pagefile"
)

// ProjectOptions locate a project on disk.
type ProjectOptions struct {
	// ConfigPath is the arbor.yaml to read. Missing files mean defaults.
	ConfigPath string
	// PageFile overrides the configured page file.
	PageFile string
	// FileRoot lets pages visit file:// URLs under this directory.
	// Empty keeps the engine to the configured pages.
	FileRoot string
	Debug    bool
}

// Project is a loaded page file bound to a live session.
type Project struct {
	Config   *config.Config
	Tree     *element.Node
	Engine   *htmldoc.Engine
	Session  *arbor.Session
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// LoadConfig reads the configuration and applies overrides.
func LoadConfig(opts ProjectOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.PageFile != "" {
		cfg.PageFile = opts.PageFile
	}
	if _, err := os.Stat(cfg.PageFile); err != nil {
		if found, ok := determinePageFile(filepath.Dir(cfg.PageFile)); ok {
			cfg.PageFile = found
		}
	}
	return cfg, nil
}

// LoadTree reads the configured page file.
func LoadTree(opts ProjectOptions) (*element.Node, *config.Config, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	tree, err := pagefile.Load(cfg.PageFile)
	if err != nil {
		return nil, nil, err
	}
	return tree, cfg, nil
}

// OpenProject loads the tree and starts a session on a fresh engine.
func OpenProject(opts ProjectOptions) (*Project, error) {
	tree, cfg, err := LoadTree(opts)
	if err != nil {
		return nil, err
	}
	logger := createLogger(opts.Debug, cfg.LogLevel)

	engine, err := createEngine(cfg, logger, opts.FileRoot)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	sessOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithMetrics(reg),
		arbor.WithRecorder(cfg.Trace.Capacity),
	}
	if opts.Debug {
		sessOpts = append(sessOpts, arbor.WithLifecycleHooks(createDebugHooks(logger)))
	}
	sess, err := arbor.New(engine, sessOpts...)
	if err != nil {
		return nil, fmt.Errorf("error starting session: %w", err)
	}

	logger.Info("Project loaded", "page_file", cfg.PageFile, "pages", len(cfg.Pages))
	return &Project{
		Config:   cfg,
		Tree:     tree,
		Engine:   engine,
		Session:  sess,
		Registry: reg,
		Logger:   logger,
	}, nil
}

// projectDir is the directory holding the project's config file.
func projectDir(opts ProjectOptions) string {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultFile
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return filepath.Dir(path)
	}
	return dir
}

// Close stops the session queue.
func (p *Project) Close() error {
	return p.Session.Close()
}
