package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/templui/thumbnailer/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Tier     string `json:"tier"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	JWT    string `json:"jwt,omitempty"`
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
}

// Register creates an account and returns its API token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := readCredentials(w, r)
	if !ok {
		return
	}

	user, token, err := h.authService.Register(creds.Username, creds.Password, creds.Tier)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			writeJSON(w, http.StatusBadRequest, map[string][]string{
				"username": {"A user with that username already exists."},
			})
			return
		}
		writeServiceError(w, r, err, msgNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{
		Token:  token.Key,
		UserID: user.ID,
		Tier:   user.TierName(),
	})
}

// Token exchanges a username and password for the API token and a short-lived JWT.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	creds, ok := readCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Login(creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, map[string][]string{
				"non_field_errors": {"Unable to log in with provided credentials."},
			})
			return
		}
		writeServiceError(w, r, err, msgNotFound)
		return
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		writeServiceError(w, r, err, msgNotFound)
		return
	}

	jwt, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate jwt", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:  token.Key,
		JWT:    jwt,
		UserID: user.ID,
		Tier:   user.TierName(),
	})
}

// readCredentials accepts a JSON body or form fields.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		err := json.NewDecoder(r.Body).Decode(&creds)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return creds, false
		}
		return creds, true
	}

	creds.Username = r.FormValue("username")
	creds.Password = r.FormValue("password")
	creds.Tier = r.FormValue("tier")
	return creds, true
}
