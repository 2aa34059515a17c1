package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"netxlate/internal/driver"
	"netxlate/internal/ui"
)

type translateOutcome struct {
	results []*driver.Result
	err     error
}

// runWithUI translates files while a Bubble Tea program shows progress.
func runWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan translateOutcome, 1)

	go func() {
		opts.Sink = ui.ChanSink(events)
		results, err := driver.TranslateAll(ctx, files, opts)
		outcomeCh <- translateOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
