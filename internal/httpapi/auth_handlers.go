package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/architect-platform/architect-engine/internal/errs"
)

type setTokenRequest struct {
	Token string `json:"token"`
}

type authStatusResponse struct {
	Provider    string `json:"provider"`
	Configured bool   `json:"configured"`
}

func (s *Server) handleAuthSet(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req setTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.ConfigInvalid, "invalid request body: %v", err))
		return
	}
	if req.Token == "" {
		writeError(w, errs.New(errs.ConfigInvalid, "token must not be empty"))
		return
	}

	if err := s.credentials.Set(provider, req.Token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authStatusResponse{Provider: provider, Configured: true})
}

func (s *Server) handleAuthDelete(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	if err := s.credentials.Delete(provider); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authStatusResponse{Provider: provider, Configured: false})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	writeJSON(w, http.StatusOK, authStatusResponse{Provider: provider, Configured: s.credentials.Status(provider)})
}
