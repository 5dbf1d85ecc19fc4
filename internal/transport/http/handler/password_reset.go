package handler

import (
	"encoding/json"
	"net/http"

	"github.com/supapay/auth-api/internal/application/account"
	"github.com/supapay/auth-api/internal/domain"
	"github.com/supapay/auth-api/internal/pkg/validate"
)

// forgotPasswordMessage is returned whether or not the email is registered.
const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

// PasswordResetHandler handles the forgot/reset password flow.
type PasswordResetHandler struct {
	svc account.Service
}

func NewPasswordResetHandler(svc account.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

func (h *PasswordResetHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeEmailRequired, "invalid request body")
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, forgotPasswordMessage, nil)
}

func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeMissingFields, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeMissingFields, err.Error())
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password has been reset successfully. Please log in with your new password.", nil)
}
