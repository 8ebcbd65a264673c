package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mrraes/bewijs/internal/export"
	appI18n "github.com/mrraes/bewijs/internal/i18n"
	"github.com/mrraes/bewijs/internal/model"
	"github.com/mrraes/bewijs/internal/summary"
)

const (
	maxBodyBytes        = 1 << 20
	defaultPreviewWidth = 400
)

// Handler serves certificate and table exports over HTTP.
type Handler struct {
	finisher *export.Finisher
	prefs    summary.PrefReader
}

// New creates a new Handler. Background exports go to the finisher's downloader; prefs
// may be nil.
func New(f *export.Finisher, prefs summary.PrefReader) *Handler {
	return &Handler{finisher: f, prefs: prefs}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(pageContext)
		r.Post("/finish", h.handleFinish)
		r.Post("/finish/async", h.handleFinishAsync)
		r.Post("/table", h.handleTable)
		r.Post("/preview", h.handlePreview)
		r.Post("/normalize", h.handleNormalize)
		r.Get("/prefill", h.handlePrefill)
	})
}

// pageContext exposes the calling page's identity to the normalizer.
func pageContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := summary.WithPage(r.Context(), summary.Page{
			Meta:  r.Header.Get("X-Game-Id"),
			Title: r.Header.Get("X-Page-Title"),
			URL:   r.Referer(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRaw(w, r)
	if !ok {
		return
	}
	if _, err := h.finisher.FinishTo(r.Context(), raw, attachment{w}); err != nil {
		exportError(w, r, "finish failed", err)
	}
}

func (h *Handler) handleFinishAsync(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRaw(w, r)
	if !ok {
		return
	}
	launched := h.finisher.TryFinish(r.Context(), raw)
	writeJSON(w, http.StatusAccepted, map[string]bool{"launched": launched})
}

func (h *Handler) handleTable(w http.ResponseWriter, r *http.Request) {
	var req export.TableRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, appI18n.T(r.Context(), "ErrInvalidJSON")+": "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.finisher.DownloadTableTo(r.Context(), req.Export(), attachment{w}); err != nil {
		exportError(w, r, "table export failed", err)
	}
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	width := defaultPreviewWidth
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, appI18n.T(r.Context(), "ErrInvalidWidth"), http.StatusBadRequest)
			return
		}
		width = n
	}
	raw, ok := decodeRaw(w, r)
	if !ok {
		return
	}
	data, err := h.finisher.Preview(r.Context(), raw, width)
	if err != nil {
		exportError(w, r, "preview failed", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (h *Handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRaw(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.finisher.Normalizer.Normalize(r.Context(), raw))
}

func (h *Handler) handlePrefill(w http.ResponseWriter, r *http.Request) {
	out := map[string]string{"name": "", "class": ""}
	if h.prefs != nil {
		for field, key := range map[string]string{"name": model.PrefKeyName, "class": model.PrefKeyClass} {
			v, err := h.prefs.GetPref(r.Context(), key)
			if err != nil {
				slog.Error("read prefill", "key", key, "error", err)
				http.Error(w, appI18n.T(r.Context(), "ErrPrefill"), http.StatusInternalServerError)
				return
			}
			out[field] = v
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// decodeRaw reads a JSON object body. An empty body is an empty summary; anything but
// an object is rejected.
func decodeRaw(w http.ResponseWriter, r *http.Request) (summary.Raw, bool) {
	var raw summary.Raw
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw)
	switch {
	case errors.Is(err, io.EOF):
		return summary.Raw{}, true
	case err != nil:
		http.Error(w, appI18n.T(r.Context(), "ErrInvalidJSON")+": "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return raw, true
}

// exportError reports a failed export. Oversized renders are the caller's fault.
func exportError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, export.ErrTooLarge) {
		slog.Warn(msg, "error", err)
		http.Error(w, appI18n.T(r.Context(), "ErrTooLarge"), http.StatusRequestEntityTooLarge)
		return
	}
	slog.Error(msg, "error", err)
	http.Error(w, appI18n.T(r.Context(), "ErrExportFailed"), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// attachment delivers an export as the HTTP response body.
type attachment struct {
	w http.ResponseWriter
}

func (a attachment) Download(_ context.Context, filename string, data []byte) error {
	h := a.w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	_, err := a.w.Write(data)
	return err
}
