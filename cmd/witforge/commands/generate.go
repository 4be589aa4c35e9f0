package commands

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	rustgen "github.com/witforge/witforge/stubgen/rust"
	tsgen "github.com/witforge/witforge/stubgen/typescript"
	"github.com/witforge/witforge/witgen"
)

// GenerateCmd runs the full pipeline: interface generation, the Rust caller
// crate, and the TypeScript caller file.
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate WIT interfaces and caller stubs for a workspace",
	Long: `Scan the workspace for process crates and regenerate all derived
artifacts:

  1. One WIT interface file per process, merged into its world file
  2. The caller-utils Rust crate with async RPC stubs
  3. The TypeScript caller file for http endpoints

Examples:
  witforge generate                        # Current directory as workspace
  witforge generate --dir ~/app --jobs 4   # Bounded parallel analysis
  witforge generate --watch                # Rerun on .rs/.toml changes`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringP("dir", "d", ".", "Workspace root containing process crates")
	GenerateCmd.Flags().String("api-dir", "", "WIT output directory (default: <dir>/api)")
	GenerateCmd.Flags().String("stub-dir", "", "Caller crate output directory (default: <dir>/target/<workspace>-caller-utils)")
	GenerateCmd.Flags().String("ui-dir", "", "TypeScript output directory (default: <dir>/target/ui)")
	GenerateCmd.Flags().IntP("jobs", "j", 0, "Max concurrent project analyses (0 = unbounded)")
	GenerateCmd.Flags().BoolP("watch", "w", false, "Watch source files and regenerate on change")
	viper.BindPFlag("dir", GenerateCmd.Flags().Lookup("dir"))
	viper.BindPFlag("api-dir", GenerateCmd.Flags().Lookup("api-dir"))
	viper.BindPFlag("stub-dir", GenerateCmd.Flags().Lookup("stub-dir"))
	viper.BindPFlag("ui-dir", GenerateCmd.Flags().Lookup("ui-dir"))
	viper.BindPFlag("jobs", GenerateCmd.Flags().Lookup("jobs"))
	viper.BindPFlag("watch", GenerateCmd.Flags().Lookup("watch"))
}

// pipelineConfig is one resolved set of paths for a run.
type pipelineConfig struct {
	root      string
	apiDir    string
	stubDir   string
	uiPath    string
	crateName string
	jobs      int
}

func resolveConfig() (pipelineConfig, error) {
	root, err := filepath.Abs(viper.GetString("dir"))
	if err != nil {
		return pipelineConfig{}, errors.Wrap(err, "failed to resolve workspace root")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return pipelineConfig{}, errors.Newf("workspace root %s is not a directory", root)
	}

	crateName := filepath.Base(root) + "-caller-utils"

	cfg := pipelineConfig{
		root:      root,
		apiDir:    viper.GetString("api-dir"),
		stubDir:   viper.GetString("stub-dir"),
		crateName: crateName,
		jobs:      viper.GetInt("jobs"),
	}
	if cfg.apiDir == "" {
		cfg.apiDir = filepath.Join(root, "api")
	}
	if cfg.stubDir == "" {
		cfg.stubDir = filepath.Join(root, "target", crateName)
	}
	uiDir := viper.GetString("ui-dir")
	if uiDir == "" {
		uiDir = filepath.Join(root, "target", "ui")
	}
	cfg.uiPath = filepath.Join(uiDir, "caller-utils.ts")
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	if err := runPipeline(cmd.Context(), cfg); err != nil {
		if viper.GetBool("watch") {
			// In watch mode a broken source tree is transient, keep running.
			pterm.Error.Printf("Generation failed: %v\n", err)
		} else {
			return err
		}
	}

	if !viper.GetBool("watch") {
		return nil
	}
	return watchWorkspace(cmd.Context(), cfg)
}

func runPipeline(ctx context.Context, cfg pipelineConfig) error {
	start := time.Now()

	results, err := witgen.Generate(ctx, witgen.Options{
		RootDir: cfg.root,
		APIDir:  cfg.apiDir,
		Jobs:    cfg.jobs,
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		pterm.Info.Printf("No process crates found under %s\n", cfg.root)
		return nil
	}

	for _, r := range results {
		pterm.Printf("  %s %s %s %s\n",
			pterm.LightGreen("✓"),
			pterm.White(r.Interface),
			pterm.Gray("→"),
			pterm.LightCyan(r.Path))
	}

	projects, err := witgen.DiscoverProjects(cfg.root)
	if err != nil {
		return err
	}
	processLibDep, err := witgen.ProcessLibDependency(projects)
	if err != nil {
		return err
	}

	if err := rustgen.Generate(rustgen.Options{
		APIDir:        cfg.apiDir,
		OutDir:        cfg.stubDir,
		CrateName:     cfg.crateName,
		ProcessLibDep: processLibDep,
	}); err != nil {
		return err
	}
	pterm.Printf("  %s %s %s %s\n",
		pterm.LightGreen("✓"),
		pterm.White(cfg.crateName),
		pterm.Gray("→"),
		pterm.LightCyan(cfg.stubDir))

	if err := tsgen.Generate(tsgen.Options{
		APIDir:  cfg.apiDir,
		OutPath: cfg.uiPath,
	}); err != nil {
		return err
	}

	pterm.Success.Printf("Generated %d interface(s) in %s\n",
		len(results), time.Since(start).Round(time.Millisecond))
	return nil
}

// watchDebounce collapses editor save bursts into one regeneration.
const watchDebounce = 500 * time.Millisecond

// watchWorkspace reruns the pipeline whenever a Rust source or manifest
// under the workspace changes. Generated directories are excluded so our
// own writes do not retrigger the loop.
func watchWorkspace(ctx context.Context, cfg pipelineConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, cfg); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	pterm.Info.Printf("Watching %s for changes (Ctrl+C to stop)\n", cfg.root)

	var debounce *time.Timer
	rerun := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSourceEvent(event, cfg) {
				continue
			}
			// New crate directories need to join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warnw("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			logger.Debugw("source change detected", "file", event.Name, "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			if err := runPipeline(ctx, cfg); err != nil {
				pterm.Error.Printf("Generation failed: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watcher error", "error", err)

		case <-sigCh:
			pterm.Info.Println("Stopping watcher")
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// addWatchDirs registers the workspace root and every non-generated
// subdirectory with the watcher. fsnotify has no recursive mode, so each
// directory is added individually.
func addWatchDirs(watcher *fsnotify.Watcher, cfg pipelineConfig) error {
	return filepath.WalkDir(cfg.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isGeneratedPath(path, cfg) || strings.HasPrefix(d.Name(), ".") && path != cfg.root {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

// isSourceEvent reports whether an event concerns an input the pipeline
// reads: Rust sources and Cargo manifests outside generated directories.
func isSourceEvent(event fsnotify.Event, cfg pipelineConfig) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if isGeneratedPath(event.Name, cfg) {
		return false
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return true
	}
	return strings.HasSuffix(event.Name, ".rs") || filepath.Base(event.Name) == "Cargo.toml"
}

func isGeneratedPath(path string, cfg pipelineConfig) bool {
	for _, dir := range []string{cfg.apiDir, cfg.stubDir, filepath.Dir(cfg.uiPath), filepath.Join(cfg.root, "target")} {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
