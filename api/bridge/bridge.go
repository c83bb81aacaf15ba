package bridge

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"RevBridge/api"
	"RevBridge/api/constants"
	crb "RevBridge/internal/bridge"
	"RevBridge/internal/config"
	"RevBridge/internal/export"
	"RevBridge/internal/ingest"
	"RevBridge/internal/store"
)

// StartBridgeService serves the bridge HTTP surface: upload-and-run, re-run
// from the configured input path, and retrieval of the latest artifacts.
func StartBridgeService(cfg *config.Config, st *store.Store) {
	h := &handler{cfg: cfg, store: st}

	router := mux.NewRouter()
	router.HandleFunc("/bridge/run", h.RunUpload).Methods(http.MethodPost)
	router.HandleFunc("/bridge/refresh", h.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/bridge/waterfall", h.ServeWaterfall).Methods(http.MethodGet)
	router.HandleFunc("/bridge/flat", h.ServeFlat).Methods(http.MethodGet)
	router.HandleFunc("/bridge/summary", h.Summary).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	port := cfg.Service.Port
	if port == 0 {
		port = 7143
	}
	log.Printf("[BridgeService] listening on :%d", port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), router))
}

type handler struct {
	cfg   *config.Config
	store *store.Store

	mu   sync.Mutex
	last *crb.Result
}

// RunUpload accepts a multipart revenue file, runs the bridge on it and
// writes the artifacts to the configured output paths.
func (h *handler) RunUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingFile)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xlsx" && ext != ".xls" {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrUnsupportedFile)
		return
	}

	rs, err := ingest.Parse(file, ext, h.cfg)
	if err != nil {
		api.RespondWithError(w, statusFor(err), constants.ErrIngestFailed+err.Error())
		return
	}
	h.runAndRespond(w, r, rs)
}

// Refresh re-runs the bridge from the configured input path.
func (h *handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rs, err := ingest.LoadFile(h.cfg.Files.PathIn, h.cfg)
	if err != nil {
		api.RespondWithError(w, statusFor(err), constants.ErrIngestFailed+err.Error())
		return
	}
	h.runAndRespond(w, r, rs)
}

func (h *handler) runAndRespond(w http.ResponseWriter, r *http.Request, rs *crb.RowSet) {
	policy, err := h.cfg.Policy()
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrConfigLoadFailed+err.Error())
		return
	}
	inputRows := len(rs.Rows)
	res, err := crb.Run(rs, policy)
	if err != nil {
		api.RespondWithError(w, statusFor(err), constants.ErrBridgeRunFailed+err.Error())
		return
	}

	err = export.WriteAll(h.cfg.Files.FlatPathOut, h.cfg.Files.WaterfallPathOut, h.cfg.Files.WorkbookPathOut, res, rs.DimensionColumns)
	if err != nil {
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrExportFailed+err.Error())
		return
	}

	runID, err := h.store.SaveRun(r.Context(), policy.Label(), inputRows, res)
	if err != nil {
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrPersistFailed+err.Error())
		return
	}

	h.mu.Lock()
	h.last = res
	h.mu.Unlock()

	warnings := make([]string, 0, len(res.Warnings))
	for _, warn := range res.Warnings {
		warnings = append(warnings, warn.String())
	}
	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"run_id":         runID,
		"window":         policy.Label(),
		"input_rows":     inputRows,
		"flat_rows":      len(res.Flat),
		"waterfall_rows": len(res.Waterfall),
		"customers":      res.Summary.Customers,
		"elapsed_ms":     res.Elapsed.Milliseconds(),
		"warnings":       warnings,
	})
}

func (h *handler) ServeWaterfall(w http.ResponseWriter, r *http.Request) {
	serveCSV(w, r, h.cfg.Files.WaterfallPathOut)
}

func (h *handler) ServeFlat(w http.ResponseWriter, r *http.Request) {
	serveCSV(w, r, h.cfg.Files.FlatPathOut)
}

func (h *handler) Summary(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()
	if last == nil {
		api.RespondWithError(w, http.StatusNotFound, constants.ErrNoRunYet)
		return
	}
	s := last.Summary
	years := make(map[string]string, len(s.RevenueByYear))
	for y, v := range s.RevenueByYear {
		years[fmt.Sprintf("%d", y)] = v.Round(2).String()
	}
	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"customers":           s.Customers,
		"products":            s.Products,
		"segments":            s.Segments,
		"first_month":         s.FirstMonth.Format(constants.MonthFormat),
		"last_month":          s.LastMonth.Format(constants.MonthFormat),
		"active_trailing_12m": s.ActiveTrailing12M,
		"revenue_by_year":     years,
	})
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	api.RespondWithResult(w, true, "")
}

func serveCSV(w http.ResponseWriter, r *http.Request, path string) {
	if path == "" {
		api.RespondWithError(w, http.StatusNotFound, constants.ErrArtifactNotFound)
		return
	}
	if _, err := os.Stat(path); err != nil {
		api.RespondWithError(w, http.StatusNotFound, constants.ErrArtifactNotFound)
		return
	}
	w.Header().Set("Content-Type", constants.ContentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// statusFor maps the typed bridge errors onto HTTP statuses: bad input is a
// 400, a bridge that ran but failed its own checks is a 422.
func statusFor(err error) int {
	var cfgErr *crb.ConfigurationError
	var schemaErr *crb.SchemaError
	var reconErr *crb.ReconciliationError
	var dirErr *crb.DirectionalityError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &reconErr), errors.As(err, &dirErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
