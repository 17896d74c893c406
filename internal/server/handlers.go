package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/docucheck/internal/llm"
	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/pipeline"
	"github.com/ppiankov/docucheck/internal/validate"
)

// User-visible error messages
const (
	msgNoText        = "No PDF text provided"
	msgNoRules       = "No rules provided"
	msgWrongCount    = "Exactly 3 rules are required"
	msgBlankRule     = "All rules must be non-empty strings"
	msgNoModel       = "No model selected"
	msgInvalidBody   = "Invalid request body"
	msgBodyTooLarge  = "Request body too large"
	msgTooManyChecks = "Please wait a few seconds before submitting again"
	msgInternal      = "Internal server error"
)

// checkRequest keeps field types loose so that wrong-typed fields get
// their specific message instead of a generic decode error
type checkRequest struct {
	PDFText        json.RawMessage `json:"pdfText"`
	Rules          json.RawMessage `json:"rules"`
	Model          json.RawMessage `json:"model"`
	IncludeSummary bool            `json:"includeSummary"`
}

type checkResponse struct {
	Success bool                `json:"success"`
	Results []model.CheckResult `json:"results"`
	Model   string              `json:"model,omitempty"`
	Summary *string             `json:"summary,omitempty"`
	Stats   *model.Stats        `json:"stats,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type checkInput struct {
	text    string
	rules   []string
	model   string
	summary bool
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	client := clientKey(r)

	reader := http.MaxBytesReader(w, r.Body, s.maxBodyBytes())
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeFailure(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		writeFailure(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	var req checkRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	in, msg := parseCheckRequest(req)
	if msg != "" {
		s.log.Info("server.check.rejected", "client", client, "reason", msg)
		writeFailure(w, http.StatusBadRequest, msg)
		return
	}

	if err := validate.ValidateRuleSet(in.rules); err != nil {
		s.log.Info("server.check.rejected", "client", client, "reason", err.Error())
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	// Only accepted submissions count against the client's interval
	if !s.gate.allow(client) {
		s.log.Warn("server.check.throttled", "client", client)
		writeFailure(w, http.StatusTooManyRequests, msgTooManyChecks)
		return
	}

	if s.pipeline == nil {
		s.log.Error("server.check.config_error", "client", client, "error", s.configErr)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
		return
	}

	report := s.pipeline.Run(r.Context(), pipeline.Request{
		Text:    in.text,
		Rules:   in.rules,
		Model:   in.model,
		Summary: in.summary,
	})

	resp := checkResponse{
		Success: true,
		Results: report.Results,
		Model:   report.Model,
		Stats:   &report.Stats,
	}
	if in.summary {
		resp.Summary = &report.Summary
	}

	s.log.Info("server.check.ok",
		"req_id", report.ID,
		"client", client,
		"model", report.Model,
		"passed", report.Stats.Passed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, resp)
}

// parseCheckRequest applies the request gate in order and returns the first
// failing message
func parseCheckRequest(req checkRequest) (checkInput, string) {
	var in checkInput

	if err := json.Unmarshal(req.PDFText, &in.text); err != nil || strings.TrimSpace(in.text) == "" {
		return in, msgNoText
	}

	var rawRules []json.RawMessage
	if err := json.Unmarshal(req.Rules, &rawRules); err != nil || rawRules == nil {
		return in, msgNoRules
	}
	if len(rawRules) != validate.RuleCount {
		return in, msgWrongCount
	}
	in.rules = make([]string, len(rawRules))
	for i, raw := range rawRules {
		if err := json.Unmarshal(raw, &in.rules[i]); err != nil || strings.TrimSpace(in.rules[i]) == "" {
			return in, msgBlankRule
		}
	}

	if err := json.Unmarshal(req.Model, &in.model); err != nil || in.model == "" {
		return in, msgNoModel
	}

	in.summary = req.IncludeSummary
	return in, ""
}

type modelsResponse struct {
	Models  []llm.ModelInfo `json:"models"`
	Default string          `json:"default"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{
		Models:  s.models,
		Default: llm.DefaultModel(),
	})
}

type healthResponse struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Configured: s.pipeline != nil,
	})
}

func (s *Server) maxBodyBytes() int64 {
	if s.cfg.MaxBodyBytes > 0 {
		return s.cfg.MaxBodyBytes
	}
	return 16 << 20
}

// clientKey identifies the submitting client by remote host
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, checkResponse{
		Success: false,
		Error:   msg,
		Results: []model.CheckResult{},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
