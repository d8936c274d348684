// Package server exposes the fiscal calculation engine over a small HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/forfettario/fisco-forecast/internal/config"
	"github.com/forfettario/fisco-forecast/internal/fiscal"
	"github.com/forfettario/fisco-forecast/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

type statsOptions struct {
	Year int
}

// NewHandler constructs the HTTP handler that serves the stats API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = 256 * 1024
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Stats API endpoint (file upload)
	mux.HandleFunc("/api/stats", h.handleStats)

	// Stats API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/stats", h.handleStatsEditor)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type statsResponse struct {
	ViewYear int          `json:"viewYear"`
	Stats    fiscal.Stats `json:"stats"`
	CSV      string       `json:"csv"`
	Warnings []string     `json:"warnings,omitempty"`
	Duration string       `json:"duration"`
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "server.handleStats")
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "server.handleStats")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file", "server.handleStats")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleStats"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), "server.handleStats")
		return
	}

	options := statsOptions{}
	if yearParam := r.FormValue("year"); yearParam != "" {
		year, convErr := strconv.Atoi(yearParam)
		if convErr != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid year parameter: %v", convErr), "server.handleStats")
			return
		}
		options.Year = year
	}

	h.runStats(w, buf.Bytes(), start, "server.handleStats", options)
}

func (h *handler) handleStatsEditor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleStatsEditor")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondError(w, http.StatusBadRequest, "invalid config payload: expected object", "server.handleStatsEditor")
			return
		}
		configPayload = cfgMap
	}

	options := statsOptions{}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			h.respondError(w, http.StatusBadRequest, "invalid options payload: expected object", "server.handleStatsEditor")
			return
		}
		if yearVal, ok := optsMap["year"]; ok {
			year, ok := coerceInt(yearVal)
			if !ok {
				h.respondError(w, http.StatusBadRequest, "invalid options payload: year must be an integer", "server.handleStatsEditor")
				return
			}
			options.Year = year
		}
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleStatsEditor")
		return
	}

	h.runStats(w, configBytes, start, "server.handleStatsEditor", options)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) runStats(w http.ResponseWriter, configBytes []byte, start time.Time, op string, opts statsOptions) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if opts.Year != 0 {
		cfg.ViewYear = opts.Year
	}

	warnings := cfg.ValidateConfiguration()

	input, err := cfg.FiscalInput(time.Now())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to convert configuration: %v", err), op)
		return
	}

	engine := fiscal.NewEngine(h.logger)
	stats := engine.Compute(input)

	elapsed := time.Since(start)

	response := statsResponse{
		ViewYear: input.ViewYear,
		Stats:    stats,
		CSV:      output.CsvString(input.ViewYear, stats),
		Warnings: warnings,
		Duration: elapsed.String(),
	}

	h.logger.Info("stats computed",
		zap.String("op", op),
		zap.Int("viewYear", input.ViewYear),
		zap.Int("warnings", len(response.Warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("stats request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.Atoi(trimmed); err == nil {
			return parsed, true
		}
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return int(parsed), true
		}
	}
	return 0, false
}
