package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/pollroom-api/internal/authz"
	"github.com/stanstork/pollroom-api/internal/clock"
	"github.com/stanstork/pollroom-api/internal/models"
	"github.com/stanstork/pollroom-api/internal/repository"
)

type AuthHandler struct {
	userRepository repository.UserRepository
	issuer         *authz.Issuer
	clock          clock.Clock
	logger         zerolog.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewAuthHandler(users repository.UserRepository, issuer *authz.Issuer, clk clock.Clock, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: users,
		issuer:         issuer,
		clock:          clk,
		logger:         logger.With().Str("handler", "auth").Logger(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email, err := models.NormalizeEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_email", err.Error())
		return
	}
	if err := models.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	}

	user, err := h.userRepository.CreateUser(r.Context(), email, req.Password, h.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken", "Email already registered")
			return
		}
		requestLogger(r, h.logger).Error().Err(err).Msg("failed to create user")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create user")
		return
	}

	h.logger.Info().Str("user_id", user.ID).Msg("user registered")
	writeJSON(w, http.StatusCreated, user)
}

// Token exchanges credentials for a bearer token. It accepts a JSON body or
// an OAuth2 password form (username/password).
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid form body")
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepository.AuthenticateUser(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password")
			return
		}
		requestLogger(r, h.logger).Error().Err(err).Msg("failed to authenticate user")
		writeError(w, http.StatusInternalServerError, "internal_error", "Authentication failed")
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		requestLogger(r, h.logger).Error().Err(err).Msg("failed to issue token")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.userRepository.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Token for a user that no longer exists.
			writeError(w, http.StatusUnauthorized, "unauthorized", "Could not validate credentials")
			return
		}
		requestLogger(r, h.logger).Error().Err(err).Msg("failed to load user")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
