package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"netxlate/internal/driver"
	"netxlate/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <netlist|dir>...",
	Short: "Report what a translation would lose without writing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := driverOptions(cmd, cfg)
		if err != nil {
			return err
		}
		opts.NoWrite = true
		ropts, err := readReportOptions(cmd)
		if err != nil {
			return err
		}
		if ropts.timings {
			opts.Timer = observ.NewTimer()
		}
		files, err := collectInputs(args, cfg, opts.Output)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no netlists found")
		}

		results, err := driver.TranslateAll(cmd.Context(), files, opts)
		if err != nil {
			return err
		}
		showTimings(cmd.ErrOrStderr(), results, opts.Timer, ropts)
		if err := report(cmd.OutOrStdout(), results, ropts); err != nil {
			return err
		}
		if anyFailed(results) {
			cmd.SilenceUsage = true
			return errFailed
		}
		return nil
	},
}

func init() {
	addDialectFlags(checkCmd)
	addReportFlags(checkCmd)
}
