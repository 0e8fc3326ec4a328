package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scenelint/internal/diag"
	"scenelint/internal/diagfmt"
	"scenelint/internal/driver"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.py|directory>",
	Short: "Run diagnostics on a scene script or directory",
	Long:  `Run diagnostics to find command typos, missing imports, usage problems and embedded macro issues in scene scripts or all *.py files within a directory`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	diagCmd.Flags().String("namespace", "", "namespace tag for unqualified commands (default from scenelint.toml or primary-api)")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagCmd.Flags().Bool("no-source", false, "omit source context lines from pretty output")
	diagCmd.Flags().Bool("suggest", true, "include fix suggestions in output")
	diagCmd.Flags().Bool("disk-cache", false, "enable persistent result cache")
	diagCmd.Flags().String("ui", "auto", "progress UI for directory runs (auto|on|off)")
}

// runDiagnose executes the "diag" command for a single file or a directory,
// prints the results in the chosen format and exits non-zero when any error
// diagnostics remain.
func runDiagnose(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noSource, err := cmd.Flags().GetBool("no-source")
	if err != nil {
		return fmt.Errorf("failed to get no-source flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	opts, err := driverOptions(cmd, targetPath)
	if err != nil {
		return err
	}
	if jobs > 0 {
		opts.Jobs = jobs
	}
	opts.Timings = showTimings

	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", targetPath, err)
	}

	var results []*driver.FileResult
	if info.IsDir() {
		uiModeStr, err := cmd.Flags().GetString("ui")
		if err != nil {
			return fmt.Errorf("failed to get ui flag: %w", err)
		}
		mode, err := readUIMode(uiModeStr)
		if err != nil {
			return err
		}
		if shouldUseTUI(mode) {
			results, err = runDirWithUI(cmd.Context(), "scenelint diag", targetPath, opts)
		} else {
			results, err = driver.ValidateDir(cmd.Context(), targetPath, opts)
		}
		if err != nil {
			return err
		}
	} else {
		res, err := driver.ValidateFile(cmd.Context(), targetPath, opts)
		if err != nil {
			return err
		}
		results = []*driver.FileResult{res}
	}

	colored := useColor(cmd)
	hasErrors := false
	var all []diag.Diagnostic

	for _, res := range results {
		ds := res.Diagnostics
		if noWarnings || warningsAsErrors {
			bag := diag.NewBag(len(ds))
			for _, d := range ds {
				bag.Add(d)
			}
			if noWarnings {
				bag.DropWarnings()
			}
			if warningsAsErrors {
				bag.PromoteWarnings()
			}
			ds = bag.Items()
		}
		all = append(all, ds...)

		switch format {
		case "json":
			if err := diagfmt.JSON(cmd.OutOrStdout(), res.Path, ds, diagfmt.JSONOpts{Indent: true, Max: opts.MaxDiagnostics}); err != nil {
				return err
			}
		default:
			diagfmt.Pretty(cmd.OutOrStdout(), res.Path, res.Snapshot, ds, diagfmt.PrettyOpts{
				Color:           colored,
				ShowSource:      !noSource,
				ShowSuggestions: suggest,
			})
		}
		for _, d := range ds {
			if d.Severity == diag.SevError {
				hasErrors = true
				break
			}
		}
		if showTimings && res.Timing != nil {
			printTimings(cmd.OutOrStdout(), res.Path, res.Timing)
		}
	}

	if format == "pretty" {
		diagfmt.Summary(cmd.OutOrStdout(), all, colored)
	}
	if hasErrors {
		os.Exit(1)
	}
	return nil
}

// driverOptions собирает настройки прогона: манифест проекта, затем флаги
// поверх него.
func driverOptions(cmd *cobra.Command, targetPath string) (driver.Options, error) {
	opts := driver.Options{}

	startDir := targetPath
	if info, err := os.Stat(targetPath); err == nil && !info.IsDir() {
		startDir = filepath.Dir(targetPath)
	}
	manifest, ok, err := loadProjectManifest(startDir)
	if err != nil {
		return opts, err
	}
	diskCache := false
	if ok {
		opts.ActiveNamespace = manifest.Config.Lint.Namespace
		opts.MaxDiagnostics = manifest.Config.Lint.MaxDiagnostics
		opts.Jobs = manifest.Config.Lint.Jobs
		diskCache = manifest.Config.Lint.DiskCache
	}

	if ns, err := cmd.Flags().GetString("namespace"); err == nil && ns != "" {
		opts.ActiveNamespace = ns
	}
	if maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err == nil && maxDiagnostics > 0 {
		opts.MaxDiagnostics = maxDiagnostics
	}
	if enabled, err := cmd.Flags().GetBool("disk-cache"); err == nil && enabled {
		diskCache = true
	}
	if diskCache {
		cache, err := driver.OpenDiskCache("scenelint")
		if err != nil {
			return opts, fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}
