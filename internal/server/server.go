// Package server exposes the loan planner over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-planner/internal/planner"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/loans"
	"github.com/iwvelando/loan-planner/pkg/output"
	"github.com/iwvelando/loan-planner/pkg/validation"
	"go.uber.org/zap"
)

const (
	endpointCalculate = "calculate"
	endpointReport    = "report"

	defaultScenarioName = "loan"
)

type handler struct {
	logger        *zap.Logger
	planner       *planner.Planner
	metrics       *metrics
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the calculation API.
// Submitted amounts are multiplied by unitScale.
func NewHandler(logger *zap.Logger, maxUploadSize, unitScale int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		planner:       planner.New(logger, unitScale),
		metrics:       newMetrics(),
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	// Schedules as JSON
	mux.HandleFunc("/api/calculate", h.handleCalculate)

	// Schedules as a PDF document
	mux.HandleFunc("/api/report", h.handleReport)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.Handle("/metrics", h.metrics.handler())

	return mux
}

// calculateRequest is the body of both calculation endpoints.
type calculateRequest struct {
	Name string `json:"name,omitempty"`
	validation.RawLoanInput
}

type calculateResponse struct {
	ID        uuid.UUID                `json:"id"`
	Request   loans.LoanRequest        `json:"request"`
	Results   methodResults            `json:"results"`
	Refinance *loans.RefinanceEstimate `json:"refinance,omitempty"`
	CSV       string                   `json:"csv"`
	Duration  string                   `json:"duration"`
}

type methodResults struct {
	EqualInstallment *loans.CalculationResult `json:"equalInstallment"`
	EqualPrincipal   *loans.CalculationResult `json:"equalPrincipal"`
	Bullet           *loans.CalculationResult `json:"bullet"`
}

type errorsResponse struct {
	Errors validation.FieldErrors `json:"errors"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	scenario, ok := h.calculate(w, r, endpointCalculate, "server.handleCalculate")
	if !ok {
		return
	}

	result := scenario.Result
	h.writeJSON(w, http.StatusOK, calculateResponse{
		ID:      result.ID,
		Request: result.Request,
		Results: methodResults{
			EqualInstallment: result.EqualInstallment,
			EqualPrincipal:   result.EqualPrincipal,
			Bullet:           result.Bullet,
		},
		Refinance: result.Refinance,
		CSV:       output.CsvString([]output.Scenario{scenario}),
		Duration:  time.Since(start).String(),
	})
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	scenario, ok := h.calculate(w, r, endpointReport, "server.handleReport")
	if !ok {
		return
	}

	pdf, err := output.PDFReport([]output.Scenario{scenario}, time.Now())
	if err != nil {
		h.logger.Error("failed to render report",
			zap.String("op", "server.handleReport"),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorsResponse{Errors: planner.FormErrors(err)})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", constants.DefaultReportFile))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("failed to write report",
			zap.String("op", "server.handleReport"),
			zap.Error(err),
		)
	}
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

// calculate decodes the request body and runs the planner. When it returns
// false the response has already been written.
func (h *handler) calculate(w http.ResponseWriter, r *http.Request, endpoint, op string) (output.Scenario, bool) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var body calculateRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		h.metrics.observe(endpoint, outcomeInvalid, start)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return output.Scenario{}, false
		}
		if errors.Is(err, io.EOF) {
			h.respondErrorWithOp(w, http.StatusBadRequest, "missing request body", op)
			return output.Scenario{}, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return output.Scenario{}, false
	}

	result, err := h.planner.Calculate(r.Context(), body.RawLoanInput)
	if err != nil {
		var fieldErrors validation.FieldErrors
		if errors.As(err, &fieldErrors) {
			h.metrics.observe(endpoint, outcomeInvalid, start)
			h.writeJSON(w, http.StatusUnprocessableEntity, errorsResponse{Errors: fieldErrors})
			return output.Scenario{}, false
		}

		h.metrics.observe(endpoint, outcomeFailed, start)
		h.logger.Error("calculation request failed",
			zap.String("op", op),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorsResponse{Errors: planner.FormErrors(err)})
		return output.Scenario{}, false
	}

	h.metrics.observe(endpoint, outcomeSuccess, start)

	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = defaultScenarioName
	}
	return output.Scenario{Name: name, Result: result}, true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("calculation request rejected",
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
