package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/glimpse-data/glimpse/internal/analysis"
	"github.com/glimpse-data/glimpse/internal/dataset"
	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/model"
	"github.com/glimpse-data/glimpse/internal/pipeline"
	"github.com/glimpse-data/glimpse/internal/render"
)

type handler struct {
	store     *Store
	pipeline  *pipeline.Pipeline
	explainer *insight.Explainer
	config    *model.Config
}

type uploadResponse struct {
	ID      string     `json:"id"`
	Rows    int        `json:"rows"`
	Columns []string   `json:"columns"`
	Preview [][]string `json:"preview"`
}

func (h *handler) uploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.Server.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file\" form field")
		return
	}
	defer file.Close()

	d, err := dataset.Load(file)
	if err != nil {
		var parseErr *dataset.ParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusUnprocessableEntity, parseErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id := h.store.Put(d)
	zerolog.Ctx(r.Context()).Info().
		Str("dataset_id", id).
		Int("rows", d.Rows()).
		Int("columns", d.Cols()).
		Msg("dataset uploaded")

	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:      id,
		Rows:    d.Rows(),
		Columns: d.Names(),
		Preview: d.Preview(h.config.Output.PreviewRows),
	})
}

func (h *handler) deleteDataset(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": analysis.Summarize(d)})
}

func (h *handler) getCorrelation(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Correlate(d))
}

func (h *handler) getOutliers(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.DetectOutliers(d))
}

func (h *handler) getForecast(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	target, horizon := h.forecastParams(r, d)
	f, err := analysis.ForecastLinear(d, target, horizon)
	if err != nil {
		if errors.Is(err, analysis.ErrUnavailable) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"unavailable": true,
				"reason":      err.Error(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *handler) getInsights(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("mode") == "ai" {
		exp := h.explainer.Explain(r.Context(), insight.SummaryPrompt(analysis.Summarize(d)))
		writeJSON(w, http.StatusOK, exp)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"insights": insight.RuleBased(d, h.config.Insight),
	})
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	target := r.URL.Query().Get("target")
	report := h.pipeline.Run(r.Context(), d, chi.URLParam(r, "id"), target)
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) correlationChart(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.CorrelationHeatmap(analysis.Correlate(d)).Render(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render heatmap")
	}
}

func (h *handler) forecastChart(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	target, horizon := h.forecastParams(r, d)
	f, err := analysis.ForecastLinear(d, target, horizon)
	if err != nil {
		if errors.Is(err, analysis.ErrUnavailable) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, "<p>%s</p>\n", html.EscapeString(err.Error()))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.ForecastChart(f).Render(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render forecast chart")
	}
}

// dataset resolves the {id} route parameter, writing a 404 when the dataset
// is unknown or expired.
func (h *handler) dataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	id := chi.URLParam(r, "id")
	d, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown or expired dataset: "+id)
		return nil, false
	}
	return d, true
}

func (h *handler) forecastParams(r *http.Request, d *dataset.Dataset) (string, int) {
	target := r.URL.Query().Get("target")
	if target == "" {
		if numeric := d.NumericColumns(); len(numeric) > 0 {
			target = numeric[0].Name
		}
	}
	horizon := h.config.Forecast.Horizon
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			horizon = n
		}
	}
	return target, horizon
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
