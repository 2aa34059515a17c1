package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"netxlate/internal/descriptor"
)

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List the dialects netxlate can read and write",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := cmd.Flags().GetString("dialects")
		if err != nil {
			return fmt.Errorf("failed to get dialects flag: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, name := range descriptor.Builtin() {
			lang, err := descriptor.Load(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-10s %-8s %3d devices %3d directives  (built-in)\n",
				lang.Name, lang.Admin.Extension, len(lang.DeviceNames()), len(lang.DirectiveNames()))
		}
		if dir == "" {
			return nil
		}
		files, err := filepath.Glob(filepath.Join(dir, "*.toml"))
		if err != nil {
			return err
		}
		for _, f := range files {
			lang, err := descriptor.LoadFile(f)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", f, err)
				continue
			}
			name := strings.TrimSuffix(filepath.Base(f), ".toml")
			fmt.Fprintf(out, "%-10s %-8s %3d devices %3d directives  (%s)\n",
				name, lang.Admin.Extension, len(lang.DeviceNames()), len(lang.DirectiveNames()), f)
		}
		if len(files) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "no descriptor files in %s\n", dir)
		}
		return nil
	},
}

func init() {
	dialectsCmd.Flags().String("dialects", "", "also list the descriptor files of this directory")
}
