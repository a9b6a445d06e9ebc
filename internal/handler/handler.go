// Package handler wires the HTTP surface to the authentication
// service and maps failures to error envelopes at one boundary.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jmcamacho/auth-portal/internal/apperr"
	"github.com/jmcamacho/auth-portal/internal/middleware"
	"github.com/jmcamacho/auth-portal/internal/models"
	"github.com/jmcamacho/auth-portal/internal/response"
	"github.com/jmcamacho/auth-portal/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperr.Validation("request body must be valid JSON"))
		return
	}

	result, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.WriteJSON(w, response.Success(result, "Authentication successful", http.StatusOK, r.URL.Path))
}

// Public answers without authentication.
func (h *Handler) Public(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{"message": "public access"}
	response.WriteJSON(w, response.Success(data, "", http.StatusOK, r.URL.Path))
}

// Protected echoes the verified claims of the presented token. The
// auth middleware has already rejected unauthenticated requests.
func (h *Handler) Protected(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		h.writeError(w, r, apperr.Unauthorized("token not provided"))
		return
	}
	data := map[string]any{
		"message": "access granted",
		"user": map[string]any{
			"username":  claims.Username,
			"issuedAt":  claims.IssuedAt,
			"expiresAt": claims.ExpiresAt,
		},
	}
	response.WriteJSON(w, response.Success(data, "", http.StatusOK, r.URL.Path))
}

// Users lists the user directory.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data := map[string]any{"users": users, "count": len(users)}
	response.WriteJSON(w, response.Success(data, "", http.StatusOK, r.URL.Path))
}

// Root reports the service surface.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"message": "auth-portal API",
		"endpoints": map[string]string{
			"auth":      "/api/auth/login",
			"public":    "/api/public",
			"protected": "/api/protected",
			"users":     "/api/users",
		},
	}
	response.WriteJSON(w, response.Success(data, "", http.StatusOK, r.URL.Path))
}

// writeError is the single boundary mapping errors to envelopes.
// Unrecognized errors become a generic 500; their detail is logged,
// never sent to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if e := apperr.From(err); e != nil {
		response.WriteJSON(w, response.Error(e.Code, e.Message, e.Status, r.URL.Path))
		return
	}
	h.log.Errorf("Unhandled error on %s: %v", r.URL.Path, err)
	e := apperr.Internal("")
	response.WriteJSON(w, response.Error(e.Code, e.Message, e.Status, r.URL.Path))
}
