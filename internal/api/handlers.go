package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vegadeck/pkg/buildinfo"
	vderrors "github.com/matzehuels/vegadeck/pkg/errors"
	"github.com/matzehuels/vegadeck/pkg/normalize"
	"github.com/matzehuels/vegadeck/pkg/store"
)

// =============================================================================
// Wire Types
// =============================================================================

// apiError is the JSON shape of one error, both for transport failures
// and for fatal pipeline findings inside a 200 response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// normalizeResponse wraps a pipeline result for the wire. The embedded
// result contributes spec, dialect, renderer, tooltip, map, layout and
// warnings; Error carries the fatal finding when the run failed.
type normalizeResponse struct {
	*normalize.Result
	Error *apiError `json:"error,omitempty"`
}

// createSpecRequest is the body of POST /v1/specs.
type createSpecRequest struct {
	Name string `json:"name"`
	Spec string `json:"spec"`
}

// =============================================================================
// Pipeline Handlers
// =============================================================================

// handleNormalize runs the pipeline over the raw request body.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.runPipeline(r, raw))
}

// handleNormalizeSpec runs the pipeline over a saved specification.
func (s *Server) handleNormalizeSpec(w http.ResponseWriter, r *http.Request) {
	saved, ok := s.lookupSpec(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.runPipeline(r, []byte(saved.Spec)))
}

// runPipeline executes one normalization and wraps the result for the
// wire. Spec problems land in the error field, never in the status.
func (s *Server) runPipeline(r *http.Request, raw []byte) normalizeResponse {
	result := normalize.Normalize(r.Context(), raw, normalize.Options{
		DefaultColor:  s.cfg.Normalize.DefaultColor,
		DefaultScheme: s.cfg.Normalize.DefaultScheme,
		SkipData:      s.cfg.Normalize.SkipData,
		Loaders:       s.loaders,
		Compiler:      s.compiler,
		Logger:        s.logger,
	})

	resp := normalizeResponse{Result: result}
	if result.Err != nil {
		resp.Error = pipelineError(result.Err)
	}
	return resp
}

func pipelineError(err error) *apiError {
	code := vderrors.GetCode(err)
	if code == "" {
		code = vderrors.ErrCodeInternal
	}
	return &apiError{
		Code:    string(code),
		Message: vderrors.UserMessage(err),
	}
}

// =============================================================================
// Saved Spec Handlers
// =============================================================================

func (s *Server) handleCreateSpec(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req createSpecRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, vderrors.ErrCodeInvalidParameter, "request body must be a JSON object with name and spec")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, vderrors.ErrCodeInvalidParameter, "name must not be empty")
		return
	}
	if strings.TrimSpace(req.Spec) == "" {
		s.writeError(w, http.StatusBadRequest, vderrors.ErrCodeInvalidParameter, "spec must not be empty")
		return
	}

	saved := store.New(req.Name, req.Spec)
	if err := s.store.Save(r.Context(), saved); err != nil {
		s.logger.Error("saving spec", "err", err)
		s.writeError(w, http.StatusInternalServerError, vderrors.ErrCodeInternal, "could not save the specification")
		return
	}
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListSpecs(w http.ResponseWriter, r *http.Request) {
	specs, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("listing specs", "err", err)
		s.writeError(w, http.StatusInternalServerError, vderrors.ErrCodeInternal, "could not list specifications")
		return
	}
	if specs == nil {
		specs = []*store.SavedSpec{}
	}
	s.writeJSON(w, http.StatusOK, specs)
}

func (s *Server) handleGetSpec(w http.ResponseWriter, r *http.Request) {
	saved, ok := s.lookupSpec(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteSpec(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, vderrors.ErrCodeNotFound, "no saved spec with id %q", id)
	case err != nil:
		s.logger.Error("deleting spec", "id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, vderrors.ErrCodeInternal, "could not delete the specification")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// lookupSpec loads the saved spec named by the id route parameter,
// writing the error response itself when the lookup fails.
func (s *Server) lookupSpec(w http.ResponseWriter, r *http.Request) (*store.SavedSpec, bool) {
	id := chi.URLParam(r, "id")
	saved, err := s.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, vderrors.ErrCodeNotFound, "no saved spec with id %q", id)
		return nil, false
	case err != nil:
		s.logger.Error("loading spec", "id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, vderrors.ErrCodeInternal, "could not load the specification")
		return nil, false
	}
	return saved, true
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Request/Response Plumbing
// =============================================================================

// readBody reads the request body within the configured size cap. A
// false return means the error response was already written.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, vderrors.ErrCodeInvalidParameter,
				"request body exceeds %d bytes", tooLarge.Limit)
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, vderrors.ErrCodeInvalidParameter, "could not read the request body")
		return nil, false
	}
	return raw, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code vderrors.Code, format string, args ...any) {
	s.writeJSON(w, status, map[string]*apiError{
		"error": {
			Code:    string(code),
			Message: fmt.Sprintf(format, args...),
		},
	})
}
