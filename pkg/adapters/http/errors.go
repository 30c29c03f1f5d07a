package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// badRequest marks caller mistakes that have no domain sentinel.
type badRequest struct{ err error }

func (b *badRequest) Error() string { return b.err.Error() }
func (b *badRequest) Unwrap() error { return b.err }

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	var (
		br  *badRequest
		agg *schema.AggregateError
		ve  *schema.ValidationError
	)
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.As(err, &agg), errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound),
		errors.Is(err, domain.ErrPortNotFound),
		errors.Is(err, domain.ErrParameterNotFound),
		errors.Is(err, domain.ErrGraphNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrNotConnectable),
		errors.Is(err, domain.ErrUnknownNodeType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPortOccupied),
		errors.Is(err, domain.ErrDuplicateNode),
		errors.Is(err, domain.ErrNoEntryNode),
		errors.Is(err, domain.ErrSkillFinished),
		errors.Is(err, skillgraph.ErrTickLimit):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "status", code, "err", err)
	}
	s.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
