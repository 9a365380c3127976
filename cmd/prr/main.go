package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/masoncl/review-reply/internal/adapter/cli"
	"github.com/masoncl/review-reply/internal/adapter/gitsrc"
	"github.com/masoncl/review-reply/internal/adapter/output/text"
	storeAdapter "github.com/masoncl/review-reply/internal/adapter/store"
	"github.com/masoncl/review-reply/internal/adapter/store/sqlite"
	"github.com/masoncl/review-reply/internal/config"
	"github.com/masoncl/review-reply/internal/knowledge"
	"github.com/masoncl/review-reply/internal/observability"
	"github.com/masoncl/review-reply/internal/usecase/report"
	"github.com/masoncl/review-reply/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "prr",
		EnvPrefix:   "PRR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	source := gitsrc.NewSource(repoDir)

	// Timestamp function for deterministic artifact naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}
	writer := text.NewWriter(nowFunc)

	logger := observability.NewLogger(cfg.Observability.Logging)
	reportLogger := observability.NewReportLogger(logger)

	// Initialize the archive store if enabled
	var reportStore report.Store
	if cfg.Store.IsEnabled() {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				reportStore = storeAdapter.NewBridge(sqliteStore)
				defer reportStore.Close()
			}
		}
	}

	registry, err := knowledge.LoadRegistry(cfg.Knowledge.Dir)
	if err != nil {
		return fmt.Errorf("load knowledge registry: %w", err)
	}

	compiler := report.NewCompiler(report.CompilerDeps{
		Policy: trimPolicy(cfg.Trim),
		Logger: reportLogger,
	})

	service, err := report.NewService(report.ServiceDeps{
		Source:     source,
		Compiler:   compiler,
		Store:      reportStore,
		Writer:     writer,
		Subsystems: knowledge.DetectSubsystems,
		Logger:     reportLogger,
		Repository: repositoryName(repoDir),
	})
	if err != nil {
		return fmt.Errorf("build reply service: %w", err)
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Service:       service,
		DefaultOutput: cfg.Output.Directory,
		Version:       version.Value(),
		DocumentsFor: func(subsystems []string) []string {
			docs := registry.For(subsystems)
			paths := make([]string, 0, len(docs))
			for _, doc := range docs {
				paths = append(paths, doc.Path)
			}
			return paths
		},
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// trimPolicy maps file configuration onto the compiler's trimming
// thresholds. Unknown adjacent modes fall back to auto inside the
// compiler.
func trimPolicy(cfg config.TrimConfig) report.Policy {
	return report.Policy{
		AdjacentMode:     report.AdjacentMode(cfg.AdjacentMode),
		LargeHunkLines:   cfg.LargeHunkLines,
		KeepHeadLines:    cfg.KeepHeadLines,
		RelevantPadLines: cfg.RelevantPadLines,
	}
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "prr"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ report.CommitSource = (*gitsrc.Source)(nil)
var _ report.ArtifactWriter = (*text.Writer)(nil)
var _ report.Store = (*storeAdapter.Bridge)(nil)
