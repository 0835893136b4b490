package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shelfline/server/internal/api/problem"
	"github.com/shelfline/server/internal/auth"
)

type AuthHandler struct {
	Credentials *auth.Credentials
	JWTManager  *auth.JWTManager
	Env         string
}

func NewAuthHandler(credentials *auth.Credentials, jwtManager *auth.JWTManager, env string) *AuthHandler {
	return &AuthHandler{Credentials: credentials, JWTManager: jwtManager, Env: env}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /login. It accepts a form-encoded username/password
// pair and returns a bearer token on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Credentials == nil || h.JWTManager == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	if err := r.ParseForm(); err != nil {
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if !h.Credentials.Authenticate(username, password) {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Incorrect username or password", nil, h.Env)
		return
	}

	token, _, err := h.JWTManager.Issue(username)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
