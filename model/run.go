package model

import "time"

// RunInfo describes one recorded pipeline execution.
type RunInfo struct {
	RunID        string
	Root         string
	StartedAt    time.Time
	FinishedAt   time.Time // zero until the run completes
	FilesFound   int
	FilesScored  int
	FilesSkipped int
}

// TransitionRow is one persisted transition of a style's model.
type TransitionRow struct {
	Style       string
	PrevNote    uint8
	NextNote    uint8
	Count       int64
	Probability float64
}

// FileScoreRow is the persisted aggregate surprise of one scored file.
type FileScoreRow struct {
	Style        string
	RelPath      string
	Transitions  int
	MeanSurprise float64
	MaxSurprise  float64
}

// StyleSummary aggregates every surprise value of one style.
type StyleSummary struct {
	Style        string
	MeanSurprise float64
	Variance     float64
	NoteCount    int
}
