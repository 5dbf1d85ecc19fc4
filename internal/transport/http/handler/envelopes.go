package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/supapay/auth-api/internal/domain"
)

// Envelope is the wire response wrapper shared by every endpoint.
type Envelope struct {
	Success           bool        `json:"success"`
	Message           string      `json:"message,omitempty"`
	ErrorCode         string      `json:"error,omitempty"`
	Data              interface{} `json:"data,omitempty"`
	AttemptsRemaining *int        `json:"attemptsRemaining,omitempty"`
}

// SafeAccount is the account projection exposed on the wire. Credential
// hashes and outstanding codes never appear here.
type SafeAccount struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Country       string     `json:"country"`
	AccountType   string     `json:"account_type"`
	Status        string     `json:"status"`
	EmailVerified bool       `json:"isEmailVerified"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created"`
}

func toSafeAccount(a *domain.Account) *SafeAccount {
	return &SafeAccount{
		ID:            a.AccountID,
		Email:         a.Email,
		Phone:         a.Phone,
		Country:       a.Country,
		AccountType:   a.AccountType,
		Status:        a.Status,
		EmailVerified: a.EmailVerified,
		LastLogin:     a.LastLogin,
		CreatedAt:     a.CreatedAt,
	}
}

// statusFor maps wire error codes to HTTP statuses.
var statusFor = map[string]int{
	domain.CodeMissingFields:      http.StatusBadRequest,
	domain.CodeTermsNotAccepted:   http.StatusBadRequest,
	domain.CodeDuplicateEmail:     http.StatusBadRequest,
	domain.CodeEmailSendFailed:    http.StatusInternalServerError,
	domain.CodeUserNotFound:       http.StatusNotFound,
	domain.CodeAlreadyVerified:    http.StatusBadRequest,
	domain.CodeNoOTPFound:         http.StatusBadRequest,
	domain.CodeOTPExpired:         http.StatusBadRequest,
	domain.CodeTooManyAttempts:    http.StatusTooManyRequests,
	domain.CodeInvalidOTP:         http.StatusBadRequest,
	domain.CodeInvalidCredentials: http.StatusUnauthorized,
	domain.CodeEmailNotVerified:   http.StatusForbidden,
	domain.CodeAccountDisabled:    http.StatusForbidden,
	domain.CodeEmailRequired:      http.StatusBadRequest,
	domain.CodeInvalidToken:       http.StatusBadRequest,
	domain.CodeInvalidTokenType:   http.StatusBadRequest,
	domain.CodeServerError:        http.StatusInternalServerError,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message, ErrorCode: code})
}

// httpError translates a service error into the wire envelope. Anything that
// is not a typed domain error is reported as a generic server error so
// internal detail never leaks.
func httpError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		status, ok := statusFor[de.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, Envelope{
			Success:           false,
			Message:           de.Message,
			ErrorCode:         de.Code,
			AttemptsRemaining: de.AttemptsRemaining,
		})
		return
	}
	writeErrorCode(w, http.StatusInternalServerError, domain.CodeServerError, domain.ErrServer.Message)
}
