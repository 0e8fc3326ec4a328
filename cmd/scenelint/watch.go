package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scenelint/internal/diagfmt"
	"scenelint/internal/driver"
	"scenelint/internal/sched"
	"scenelint/internal/source"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file.py>",
	Short: "Re-validate a scene script as it changes",
	Long:  `Watch a script file and re-run diagnostics after edits settle. Validation is debounced: rapid successive saves collapse into one pass over the final state`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", sched.DefaultDelay, "quiet period before a validation pass")
	watchCmd.Flags().Duration("poll", 300*time.Millisecond, "file polling interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	poll, err := cmd.Flags().GetDuration("poll")
	if err != nil {
		return fmt.Errorf("failed to get poll flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	opts, err := driverOptions(cmd, path)
	if err != nil {
		return err
	}
	// флаг важнее манифеста
	if !cmd.Flags().Changed("debounce") {
		if manifest, ok, _ := loadProjectManifest(filepath.Dir(path)); ok && manifest.Config.Lint.DebounceMS > 0 {
			debounce = time.Duration(manifest.Config.Lint.DebounceMS) * time.Millisecond
		}
	}
	colored := useColor(cmd)
	out := cmd.OutOrStdout()

	scheduler := sched.New(debounce, func(ctx context.Context, snap source.Snapshot) {
		res := driver.ValidateSnapshot(snap, opts)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "-- pass over version %d --\n", snap.Version())
		diagfmt.Pretty(out, path, snap, res.Diagnostics, diagfmt.PrettyOpts{
			Color:           colored,
			ShowSource:      true,
			ShowSuggestions: true,
		})
		diagfmt.Summary(out, res.Diagnostics, colored)
	})
	defer scheduler.Close()

	snap, err := source.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", path, err)
	}
	version := snap.Version()
	lastHash := snap.Hash()
	scheduler.Touch(snap)
	scheduler.Flush()

	if !quiet {
		fmt.Fprintf(out, "watching %s (debounce %s, poll %s)\n", path, debounce, poll)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if !quiet {
				fmt.Fprintln(out, "stopped")
			}
			return nil
		case <-ticker.C:
			next, err := source.Load(path)
			if err != nil {
				// файл мог исчезнуть на время сохранения
				continue
			}
			hash := next.Hash()
			if hash == lastHash {
				continue
			}
			lastHash = hash
			version++
			scheduler.Touch(source.FromLines(next.Lines(), version))
		}
	}
}
