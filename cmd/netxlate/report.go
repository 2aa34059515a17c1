package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"netxlate/internal/diag"
	"netxlate/internal/diagfmt"
	"netxlate/internal/driver"
	"netxlate/internal/observ"
)

type reportOptions struct {
	format   string
	color    bool
	pathMode diagfmt.PathMode
	notes    bool
	context  bool
	max      int
	quiet    bool
	timings  bool
}

// addReportFlags registers the flags that shape diagnostic output.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	cmd.Flags().Bool("with-notes", false, "print diagnostic notes")
	cmd.Flags().Bool("no-context", false, "do not print the source line of each diagnostic")
	cmd.Flags().Bool("fullpath", false, "print absolute file paths")
}

func readReportOptions(cmd *cobra.Command) (reportOptions, error) {
	var opts reportOptions
	var err error

	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "short", "json":
	default:
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	if opts.notes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	noContext, err := cmd.Flags().GetBool("no-context")
	if err != nil {
		return opts, fmt.Errorf("failed to get no-context flag: %w", err)
	}
	opts.context = !noContext
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		opts.pathMode = diagfmt.PathModeAbsolute
	}

	root := cmd.Root().PersistentFlags()
	colorFlag, err := root.GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		opts.color = true
	case "off":
	case "auto":
		opts.color = isTerminal(os.Stdout)
	default:
		return opts, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	if opts.max, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return opts, nil
}

// visible sorts bag, folds an include read twice into one report and drops
// info diagnostics in quiet mode.
func (o reportOptions) visible(bag *diag.Bag) *diag.Bag {
	bag.Sort()
	bag.Dedup()
	if !o.quiet {
		return bag
	}
	out := diag.NewBag(bag.Len())
	for _, d := range bag.Items() {
		if d.Severity > diag.SevInfo || d.Code == diag.ObsTimings {
			out.Add(d)
		}
	}
	return out
}

type fileReport struct {
	File    string   `json:"file"`
	Input   string   `json:"input,omitempty"`
	Output  string   `json:"output,omitempty"`
	Cached  bool     `json:"cached,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
	diagfmt.DiagnosticsOutput
}

// report prints the diagnostics and outcome of every result.
func report(out io.Writer, results []*driver.Result, opts reportOptions) error {
	if opts.format == "json" {
		reports := make([]fileReport, 0, len(results))
		for _, res := range results {
			if res == nil {
				continue
			}
			diags, err := diagfmt.BuildDiagnosticsOutput(opts.visible(res.Bag), res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         opts.pathMode,
				Max:              opts.max,
				IncludeNotes:     opts.notes,
			})
			if err != nil {
				return err
			}
			reports = append(reports, fileReport{
				File:              res.Path,
				Input:             res.Input,
				Output:            res.Output,
				Cached:            res.Cached,
				Outputs:           res.Outputs,
				DiagnosticsOutput: diags,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		bag := opts.visible(res.Bag)
		switch opts.format {
		case "short":
			items := bag.Items()
			if opts.max > 0 && len(items) > opts.max {
				items = items[:opts.max]
			}
			fmt.Fprint(out, diag.FormatShortDiagnostics(items, res.FileSet, opts.notes))
		default:
			if opts.max > 0 && bag.Len() > opts.max {
				trimmed := diag.NewBag(opts.max)
				for _, d := range bag.Items()[:opts.max] {
					trimmed.Add(d)
				}
				bag = trimmed
			}
			diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
				Color:     opts.color,
				PathMode:  opts.pathMode,
				ShowNotes: opts.notes,
				Context:   opts.context,
			})
		}
		if !opts.quiet && opts.format == "pretty" {
			summary(out, res, opts.color)
		}
	}
	return nil
}

func summary(out io.Writer, res *driver.Result, useColor bool) {
	c := color.New(color.FgGreen)
	status := "ok"
	switch {
	case res.Failed():
		c, status = color.New(color.FgRed, color.Bold), "failed"
	case res.Cached:
		status = "cached"
	}
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	line := fmt.Sprintf("%s: %s", filepath.Base(res.Path), c.Sprint(status))
	if res.Input != "" {
		line += fmt.Sprintf(" (%s -> %s)", res.Input, res.Output)
	}
	if n := len(res.Outputs); n > 0 {
		line += fmt.Sprintf(", %d file(s) written to %s", n, filepath.Dir(res.Outputs[0]))
	}
	fmt.Fprintln(out, line)
}

func anyFailed(results []*driver.Result) bool {
	for _, res := range results {
		if res == nil || res.Failed() {
			return true
		}
	}
	return false
}

// showTimings hands the phase timings to the report: as a diagnostic of the
// first result for json, as a table on errOut otherwise.
func showTimings(errOut io.Writer, results []*driver.Result, timer *observ.Timer, opts reportOptions) {
	if timer == nil {
		return
	}
	if opts.format != "json" {
		fmt.Fprint(errOut, timer.Summary())
		return
	}
	for _, res := range results {
		if res != nil {
			driver.AppendTimings(res.Bag, timer, res.Path)
			return
		}
	}
}
