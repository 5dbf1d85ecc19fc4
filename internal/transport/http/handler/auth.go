package handler

import (
	"encoding/json"
	"net/http"

	"github.com/supapay/auth-api/internal/application/account"
	"github.com/supapay/auth-api/internal/domain"
	"github.com/supapay/auth-api/internal/pkg/validate"
	"github.com/supapay/auth-api/internal/transport/http/middleware"
)

// AuthHandler handles signup, verification, and login endpoints.
type AuthHandler struct {
	svc account.Service
}

func NewAuthHandler(svc account.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeMissingFields, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeMissingFields, err.Error())
		return
	}
	res, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated,
		"Account created successfully! Please check your email for verification code.", res)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeMissingFields, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeMissingFields, err.Error())
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Email verified successfully! Welcome to SupaPay.", res)
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeEmailRequired, "invalid request body")
		return
	}
	res, err := h.svc.ResendOTP(r.Context(), req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "New verification code sent to your email", res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, domain.CodeMissingFields, "invalid request body")
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token":   res.Token,
		"account": toSafeAccount(res.Account),
	})
}

// Me returns the authenticated account's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, domain.CodeInvalidToken, "unauthorized")
		return
	}
	acct, err := h.svc.Profile(r.Context(), claims.AccountID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", toSafeAccount(acct))
}
