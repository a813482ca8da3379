package model

type RunResponse struct {
	RunID        string `json:"run_id"`
	Root         string `json:"root"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
	FilesFound   int    `json:"files_found"`
	FilesScored  int    `json:"files_scored"`
	FilesSkipped int    `json:"files_skipped"`
}

type StylesResponse struct {
	RunID  string   `json:"run_id"`
	Styles []string `json:"styles"`
}

type TransitionResponse struct {
	PrevNote    uint8   `json:"prev_note"`
	NextNote    uint8   `json:"next_note"`
	Count       int64   `json:"count"`
	Probability float64 `json:"probability"`
}

type StyleModelResponse struct {
	Style       string               `json:"style"`
	States      int                  `json:"states"`
	Transitions []TransitionResponse `json:"transitions"`
}

type FileScoreResponse struct {
	RelPath      string  `json:"rel_path"`
	Transitions  int     `json:"transitions"`
	MeanSurprise float64 `json:"mean_surprise"`
	MaxSurprise  float64 `json:"max_surprise"`
}

type StyleFilesResponse struct {
	Style string              `json:"style"`
	Files []FileScoreResponse `json:"files"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
