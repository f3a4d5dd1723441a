package main

import (
	"github.com/pterm/pterm"
)

// progressBar mirrors Iterator.Progress on a pterm bar. The zero value
// is disabled.
type progressBar struct {
	bar  *pterm.ProgressbarPrinter
	last int
}

func (a *App) startProgress() *progressBar {
	if a.progress == nil {
		return &progressBar{}
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle("Creating geometry").
		WithWriter(a.progress).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		a.log.Debugw("progress bar unavailable", "error", err)
		return &progressBar{}
	}
	return &progressBar{bar: bar}
}

// update advances the bar to p percent. Progress never moves backwards.
func (p *progressBar) update(percent int) {
	if p.bar == nil || percent <= p.last {
		return
	}
	p.bar.Add(percent - p.last)
	p.last = percent
}

func (p *progressBar) stop() {
	if p.bar == nil {
		return
	}
	p.update(100)
	_, _ = p.bar.Stop()
	p.bar = nil
}
