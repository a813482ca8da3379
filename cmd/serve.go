package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/surprisal/logger"
	"github.com/jsphweid/surprisal/model"
	"github.com/jsphweid/surprisal/store"
)

var (
	serveStore *store.Store
	serveRun   model.RunInfo
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves run results",
	Long:  `Serves the latest run's models and file scores as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadServeState(cmd.Context()); err != nil {
			return err
		}
		return serve()
	},
}

// LoadServeState opens the store and pins the latest run for the
// handlers.
func LoadServeState(ctx context.Context) error {
	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	info, err := st.LatestRun(ctx)
	if err != nil {
		st.Close()
		return err
	}
	serveStore = st
	serveRun = info
	return nil
}

// NewRouter wires the results API.
func NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/runs/latest", handleLatestRun).Methods("GET")
	router.HandleFunc("/styles", handleStyles).Methods("GET")
	router.HandleFunc("/styles/{style}/model", handleStyleModel).Methods("GET")
	router.HandleFunc("/styles/{style}/files", handleStyleFiles).Methods("GET")
	return router
}

func serve() error {
	logger.GetProjectLogger().Infof("Serving results for run %v on %v", serveRun.RunID, cfg.ServeAddr)
	handler := cors.Default().Handler(NewRouter())
	return http.ListenAndServe(cfg.ServeAddr, handler)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func handleLatestRun(w http.ResponseWriter, r *http.Request) {
	res := model.RunResponse{
		RunID:        serveRun.RunID,
		Root:         serveRun.Root,
		StartedAt:    serveRun.StartedAt.Format(time.RFC3339),
		FilesFound:   serveRun.FilesFound,
		FilesScored:  serveRun.FilesScored,
		FilesSkipped: serveRun.FilesSkipped,
	}
	if !serveRun.FinishedAt.IsZero() {
		res.FinishedAt = serveRun.FinishedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, res)
}

func handleStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := serveStore.Styles(r.Context(), serveRun.RunID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if styles == nil {
		styles = []string{}
	}
	writeJSON(w, http.StatusOK, model.StylesResponse{RunID: serveRun.RunID, Styles: styles})
}

func handleStyleModel(w http.ResponseWriter, r *http.Request) {
	styleName := mux.Vars(r)["style"]
	rows, err := serveStore.StyleModel(r.Context(), serveRun.RunID, styleName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("no model for style %v", styleName))
		return
	}

	res := model.StyleModelResponse{Style: styleName}
	states := make(map[uint8]struct{})
	for _, row := range rows {
		states[row.PrevNote] = struct{}{}
		res.Transitions = append(res.Transitions, model.TransitionResponse{
			PrevNote:    row.PrevNote,
			NextNote:    row.NextNote,
			Count:       row.Count,
			Probability: row.Probability,
		})
	}
	res.States = len(states)
	writeJSON(w, http.StatusOK, res)
}

func handleStyleFiles(w http.ResponseWriter, r *http.Request) {
	styleName := mux.Vars(r)["style"]
	rows, err := serveStore.FileScores(r.Context(), serveRun.RunID, styleName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("no scored files for style %v", styleName))
		return
	}

	res := model.StyleFilesResponse{Style: styleName, Files: make([]model.FileScoreResponse, 0, len(rows))}
	for _, row := range rows {
		res.Files = append(res.Files, model.FileScoreResponse{
			RelPath:      row.RelPath,
			Transitions:  row.Transitions,
			MeanSurprise: row.MeanSurprise,
			MaxSurprise:  row.MaxSurprise,
		})
	}
	writeJSON(w, http.StatusOK, res)
}
