package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Gzeu/tarot-reading-app/internal/identity/application/commands"
)

// IdentityHandler handles account API requests.
type IdentityHandler struct {
	register *commands.RegisterUserHandler
	auth     *Authenticator
	logger   *slog.Logger
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(register *commands.RegisterUserHandler, auth *Authenticator, logger *slog.Logger) *IdentityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityHandler{register: register, auth: auth, logger: logger}
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type registerResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// Register handles POST /api/v1/auth/register
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid JSON body")
		return
	}

	result, err := h.register.Handle(r.Context(), commands.RegisterUserCommand{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	token, err := h.auth.IssueToken(result.UserID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		UserID: result.UserID.String(),
		Email:  result.Email,
		Token:  token,
	})
}
