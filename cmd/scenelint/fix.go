package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scenelint/internal/driver"
	"scenelint/internal/fix"
	"scenelint/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.py>",
	Short: "Apply suggested fixes to a scene script",
	Long:  `Apply replacement suggestions from the diagnostics: known typos, fuzzy command matches (with --unsafe) and missing import lines`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every safe fix instead of the first one")
	fixCmd.Flags().String("id", "", "apply exactly one fix by its id")
	fixCmd.Flags().Bool("unsafe", false, "also apply maybe-incorrect fuzzy suggestions (requires --all)")
	fixCmd.Flags().Bool("dry-run", false, "print the result without writing the file")
}

func runFix(cmd *cobra.Command, args []string) error {
	path := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return fmt.Errorf("failed to get id flag: %w", err)
	}
	unsafeFixes, err := cmd.Flags().GetBool("unsafe")
	if err != nil {
		return fmt.Errorf("failed to get unsafe flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if applyAll && targetID != "" {
		return fmt.Errorf("all and id flags cannot be used together")
	}
	if unsafeFixes && !applyAll {
		return fmt.Errorf("unsafe flag requires --all")
	}

	opts, err := driverOptions(cmd, path)
	if err != nil {
		return err
	}
	opts.Cache = nil // fix работает по свежему прогону

	res, err := driver.ValidateFile(cmd.Context(), path, opts)
	if err != nil {
		return err
	}
	if res.LoadErr != nil {
		return fmt.Errorf("failed to load %q: %w", path, res.LoadErr)
	}

	applyOpts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, Unsafe: unsafeFixes}
	if applyAll {
		applyOpts.Mode = fix.ApplyModeAll
	}
	if targetID != "" {
		applyOpts.Mode = fix.ApplyModeID
		applyOpts.TargetID = targetID
	}

	result, err := fix.Apply(res.Snapshot, res.Diagnostics, applyOpts)
	if err != nil {
		if err == fix.ErrNoFixes {
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), "no applicable fixes found")
				for _, s := range result.Skipped {
					fmt.Fprintf(cmd.OutOrStdout(), "  skipped %s: %s\n", s.ID, s.Reason)
				}
			}
			return nil
		}
		return err
	}

	if !quiet {
		for _, a := range result.Applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s (line %d): %s\n", a.ID, a.Line, a.Message)
		}
		for _, s := range result.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped %s: %s\n", s.ID, s.Reason)
		}
	}

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), result.Snapshot.Text())
		return nil
	}
	return writeSnapshot(path, result.Snapshot)
}

// writeSnapshot сохраняет буфер, не меняя права файла.
func writeSnapshot(path string, snap source.Snapshot) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, []byte(snap.Text()), mode)
}
