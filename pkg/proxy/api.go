package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type preferencesBody struct {
	UseWebSocket *bool `json:"useWebSocket"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route(s.apiPrefix, func(r chi.Router) {
		r.Post("/decode", s.handleDecode)
		r.Post("/encode", s.handleEncode)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			io.WriteString(w, "ok")
		})
		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readAPIBody reads a request body, replying 413 when it is too large.
func (s *Server) readAPIBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "body too large"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return nil, false
	}
	return data, true
}

// handleDecode renders a raw batch. Undecodable input yields the placeholder
// batch with status 200, or 422 when ?strict=true.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readAPIBody(w, r)
	if !ok {
		return
	}
	rendered, _, err := s.tc.decode(r.Context(), raw)
	if err != nil && r.URL.Query().Get("strict") == "true" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(rendered)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readAPIBody(w, r)
	if !ok {
		return
	}
	raw, err := s.tc.encode(r.Context(), text)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(raw)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	v := s.prefs.UseWebSocket()
	writeJSON(w, http.StatusOK, preferencesBody{UseWebSocket: &v})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readAPIBody(w, r)
	if !ok {
		return
	}
	var body preferencesBody
	if err := json.Unmarshal(data, &body); err != nil || body.UseWebSocket == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: `expected {"useWebSocket": bool}`})
		return
	}
	if err := s.prefs.SetUseWebSocket(*body.UseWebSocket); err != nil {
		s.logger.Error("save preferences failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "save preferences failed"})
		return
	}
	s.logger.Info("preference updated", "useWebSocket", *body.UseWebSocket)
	s.handleGetPreferences(w, r)
}
