package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scenelint/internal/locate"
	"scenelint/internal/observ"
	"scenelint/internal/source"
)

var locateCmd = &cobra.Command{
	Use:   "locate [flags] <file.py>",
	Short: "Find where a snippet belongs in a scene script",
	Long:  `Locate the line span a proposed snippet should replace, using exact containment, block alignment and fuzzy matching in that order. The snippet comes from --snippet, --snippet-file or stdin`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLocate,
}

func init() {
	locateCmd.Flags().String("snippet", "", "snippet text to locate")
	locateCmd.Flags().String("snippet-file", "", "file containing the snippet")
	locateCmd.Flags().Bool("apply", false, "replace the matched span with the snippet and print the result")
}

type matchPayload struct {
	Matched    bool    `json:"matched"`
	StartLine  uint32  `json:"start_line,omitempty"`
	EndLine    uint32  `json:"end_line,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Strategy   string  `json:"strategy,omitempty"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	path := args[0]

	snippet, err := readSnippet(cmd)
	if err != nil {
		return err
	}
	if snippet == "" {
		return fmt.Errorf("empty snippet: pass --snippet, --snippet-file or pipe text to stdin")
	}
	apply, err := cmd.Flags().GetBool("apply")
	if err != nil {
		return fmt.Errorf("failed to get apply flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	snap, err := source.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", path, err)
	}

	var m locate.MatchResult
	if showTimings {
		timer := observ.NewTimer()
		timer.Track(observ.PhaseLocate, func() string {
			m = locate.Locate(snap, snippet)
			return m.Strategy.String()
		})
		report := timer.Report()
		printTimings(cmd.OutOrStdout(), path, &report)
	} else {
		m = locate.Locate(snap, snippet)
	}
	payload := matchPayload{Matched: m.Matched}
	if m.Matched {
		payload.StartLine = m.StartLine
		payload.EndLine = m.EndLine
		payload.Confidence = m.Confidence
		payload.Strategy = m.Strategy.String()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return err
	}

	if !apply {
		return nil
	}
	if !m.Matched {
		return fmt.Errorf("snippet was not located; nothing to apply")
	}
	next, err := locate.Apply(snap, snap.Version(), m, snippet)
	if err != nil {
		return err
	}
	return writeSnapshot(path, next)
}

func readSnippet(cmd *cobra.Command) (string, error) {
	text, err := cmd.Flags().GetString("snippet")
	if err != nil {
		return "", fmt.Errorf("failed to get snippet flag: %w", err)
	}
	if text != "" {
		return text, nil
	}
	file, err := cmd.Flags().GetString("snippet-file")
	if err != nil {
		return "", fmt.Errorf("failed to get snippet-file flag: %w", err)
	}
	if file != "" {
		// #nosec G304 -- path is provided by the caller
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read snippet file: %w", err)
		}
		return string(content), nil
	}
	if isTerminal(os.Stdin) {
		return "", nil
	}
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read snippet from stdin: %w", err)
	}
	return string(content), nil
}
