package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"netxlate/internal/cache"
	"netxlate/internal/driver"
	"netxlate/internal/observ"
	"netxlate/internal/project"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] <netlist|dir>...",
	Short: "Translate netlists into another SPICE dialect",
	Long: `Translate reads each top-level netlist with everything it includes and
writes the translation next to it, or under --out-dir. A directory argument
translates every netlist below it. Settings default to netxlate.toml of the
enclosing project; flags override them.`,
	RunE: runTranslate,
}

// errFailed marks a run whose diagnostics already explain the failure.
var errFailed = errors.New("translation failed")

func init() {
	addDialectFlags(translateCmd)
	addReportFlags(translateCmd)
	translateCmd.Flags().StringP("out", "o", "", "output file of a single netlist")
	translateCmd.Flags().String("out-dir", "", "directory for translated files")
	translateCmd.Flags().Bool("combine-print", false, "merge .PRINT lines of the same analysis")
	translateCmd.Flags().Int("jobs", 0, "max parallel translations (0=auto)")
	translateCmd.Flags().Bool("no-cache", false, "always read the netlists again")
	translateCmd.Flags().Bool("clear-cache", false, "drop the on-disk translation cache first")
	translateCmd.Flags().Bool("watch", false, "translate again whenever an input file changes")
	translateCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

// addDialectFlags registers the flags shared by translate and check.
func addDialectFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "input dialect or auto (default from netxlate.toml, else auto)")
	cmd.Flags().StringP("output", "t", "", "output dialect (default from netxlate.toml, else xyce)")
	cmd.Flags().String("dialects", "", "directory of descriptor files overriding the built-in dialects")
	cmd.Flags().Bool("contexts", false, "evaluate user function calls per subcircuit instance")
	cmd.Flags().Bool("strict", false, "fail on unresolved models and subcircuits")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, cfg)
	if err != nil {
		return err
	}
	ropts, err := readReportOptions(cmd)
	if err != nil {
		return err
	}
	if opts.OutputPath, err = cmd.Flags().GetString("out"); err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	if cmd.Flags().Changed("out-dir") {
		if opts.OutDir, err = cmd.Flags().GetString("out-dir"); err != nil {
			return fmt.Errorf("failed to get out-dir flag: %w", err)
		}
	}
	if cmd.Flags().Changed("combine-print") {
		if opts.CombinePrint, err = cmd.Flags().GetBool("combine-print"); err != nil {
			return fmt.Errorf("failed to get combine-print flag: %w", err)
		}
	}
	if cmd.Flags().Changed("jobs") {
		if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if opts.Cache, err = openCache(cmd, cfg); err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}

	files, err := collectInputs(args, cfg, opts.Output)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no netlists found")
	}
	if opts.OutputPath != "" && len(files) > 1 {
		return fmt.Errorf("--out names one file but %d netlists were found; use --out-dir", len(files))
	}

	run := func(ctx context.Context, files []string) ([]*driver.Result, error) {
		if ropts.timings {
			opts.Timer = observ.NewTimer()
		}
		var (
			results []*driver.Result
			err     error
		)
		if shouldUseTUI(mode, len(files)) && ropts.format != "json" {
			results, err = runWithUI(ctx, "translating", files, opts)
		} else {
			results, err = driver.TranslateAll(ctx, files, opts)
		}
		showTimings(cmd.ErrOrStderr(), results, opts.Timer, ropts)
		if rerr := report(cmd.OutOrStdout(), results, ropts); rerr != nil {
			return results, rerr
		}
		return results, err
	}

	if watch {
		return watchAndTranslate(cmd, files, run)
	}
	results, err := run(cmd.Context(), files)
	if err != nil {
		return err
	}
	if anyFailed(results) {
		cmd.SilenceUsage = true
		return errFailed
	}
	return nil
}

// loadConfig returns netxlate.toml of the enclosing project, or the
// defaults when there is none.
func loadConfig() (*project.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, ok, err := project.Discover(wd)
	if err != nil {
		return nil, err
	}
	if !ok {
		def := project.Default()
		return &def, nil
	}
	return cfg, nil
}

// driverOptions merges the project configuration with the dialect flags.
func driverOptions(cmd *cobra.Command, cfg *project.Config) (driver.Options, error) {
	opts := driver.Options{
		Input:        cfg.Translate.Input,
		Output:       cfg.Translate.Output,
		DialectsDir:  cfg.Resolve(cfg.Dialects.Dir),
		OutDir:       cfg.Resolve(cfg.Translate.OutDir),
		CombinePrint: cfg.Translate.CombinePrint,
		Contexts:     cfg.Translate.Contexts,
		Strict:       cfg.Translate.Strict,
		Jobs:         cfg.Translate.Jobs,
	}
	var err error
	for _, f := range []struct {
		name string
		dst  *string
	}{{"input", &opts.Input}, {"output", &opts.Output}, {"dialects", &opts.DialectsDir}} {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		if *f.dst, err = cmd.Flags().GetString(f.name); err != nil {
			return opts, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
	}
	for _, f := range []struct {
		name string
		dst  *bool
	}{{"contexts", &opts.Contexts}, {"strict", &opts.Strict}} {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		if *f.dst, err = cmd.Flags().GetBool(f.name); err != nil {
			return opts, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
	}
	if opts.Input == "" {
		opts.Input = driver.AutoInput
	}
	if opts.Output == "" {
		opts.Output = "xyce"
	}
	if opts.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return opts, nil
}

// openCache opens the translation cache unless it is disabled. A cache
// directory that cannot be used leaves an in-memory cache.
func openCache(cmd *cobra.Command, cfg *project.Config) (*cache.Cache, error) {
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if noCache || !cfg.Cache.Enabled {
		return nil, nil
	}
	disk, err := cache.OpenDiskCache(cfg.Resolve(cfg.Cache.Dir), "netxlate")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: translation cache disabled: %v\n", err)
		return cache.New(nil), nil
	}
	drop, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if drop {
		if err := disk.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", disk.Dir(), err)
		}
		if disk, err = cache.OpenDiskCache(disk.Dir(), "netxlate"); err != nil {
			return nil, err
		}
	}
	return cache.New(disk), nil
}

// collectInputs expands directory arguments into their netlists. Without
// arguments the project root is used.
func collectInputs(args []string, cfg *project.Config, output string) ([]string, error) {
	if len(args) == 0 {
		if cfg.Root == "" {
			return nil, fmt.Errorf("no input given and no %s found", project.ConfigName)
		}
		args = []string{cfg.Root}
	}
	// earlier translations of this dialect are not inputs
	skip := "_" + output
	var files []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !st.IsDir() {
			files = append(files, filepath.Clean(arg))
			continue
		}
		found, err := project.Netlists(arg, cfg.Resolve(cfg.Ignore.File), skip)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
