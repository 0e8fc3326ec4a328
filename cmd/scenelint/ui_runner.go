package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"scenelint/internal/driver"
	"scenelint/internal/ui"
)

type dirOutcome struct {
	results []*driver.FileResult
	err     error
}

// runDirWithUI validates a directory while a Bubble Tea progress view
// renders per-file state from the driver's event stream.
func runDirWithUI(ctx context.Context, title, dir string, opts driver.Options) ([]*driver.FileResult, error) {
	files, err := driver.ListScriptFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	sink := driver.NewChannelSink(256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = sink
		results, err := driver.ValidateDir(ctx, dir, optsCopy)
		outcomeCh <- dirOutcome{results: results, err: err}
		sink.Close()
	}()

	model := ui.NewProgressModel(title, files, sink.C)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
