package tui

import "github.com/moyu-x/doc-renamer/internal"

type outcomeMsg struct {
	done    int
	total   int
	outcome internal.Outcome
}

type completeMsg struct {
	stats    *internal.BatchStats
	outcomes []internal.Outcome
	err      error
}
