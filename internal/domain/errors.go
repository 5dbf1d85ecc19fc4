package domain

import "errors"

// Sentinel errors for storage-level discrimination. Repositories wrap these
// so services can tell an absent record from a failing store.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Error is a typed API error carried from the services to the transport
// layer. Code is the stable machine-readable identifier exposed on the wire;
// the transport maps it to an HTTP status.
type Error struct {
	Code    string
	Message string
	// AttemptsRemaining is set only on INVALID_OTP responses.
	AttemptsRemaining *int
}

func (e *Error) Error() string { return e.Message }

// Error codes.
const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodeTermsNotAccepted   = "TERMS_NOT_ACCEPTED"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeEmailSendFailed    = "EMAIL_SEND_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeNoOTPFound         = "NO_OTP_FOUND"
	CodeOTPExpired         = "OTP_EXPIRED"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeInvalidOTP         = "INVALID_OTP"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidTokenType   = "INVALID_TOKEN_TYPE"
	CodeServerError        = "SERVER_ERROR"
)

var (
	ErrMissingFields = &Error{Code: CodeMissingFields, Message: "Missing required fields"}
	ErrTermsNotAccepted = &Error{Code: CodeTermsNotAccepted,
		Message: "You must accept the terms and conditions to create an account"}
	ErrDuplicateEmail = &Error{Code: CodeDuplicateEmail, Message: "Email address is already registered"}
	ErrEmailSendFailed = &Error{Code: CodeEmailSendFailed,
		Message: "Failed to send verification email. Please try again."}
	ErrUserNotFound    = &Error{Code: CodeUserNotFound, Message: "User not found"}
	ErrAlreadyVerified = &Error{Code: CodeAlreadyVerified, Message: "Email is already verified"}
	ErrNoOTPFound      = &Error{Code: CodeNoOTPFound, Message: "No verification code found. Please request a new one."}
	ErrOTPExpired      = &Error{Code: CodeOTPExpired, Message: "Verification code has expired. Please request a new one."}
	ErrTooManyAttempts = &Error{Code: CodeTooManyAttempts,
		Message: "Too many failed attempts. Please request a new verification code."}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "Invalid email or password"}
	ErrEmailNotVerified   = &Error{Code: CodeEmailNotVerified, Message: "Please verify your email before logging in"}
	ErrAccountDisabled    = &Error{Code: CodeAccountDisabled, Message: "This account has been disabled"}
	ErrEmailRequired      = &Error{Code: CodeEmailRequired, Message: "Email is required"}
	ErrInvalidToken       = &Error{Code: CodeInvalidToken, Message: "Invalid or expired reset token"}
	ErrInvalidTokenType   = &Error{Code: CodeInvalidTokenType, Message: "Token cannot be used for this operation"}
	ErrServer             = &Error{Code: CodeServerError, Message: "Internal server error. Please try again."}
)

// InvalidOTP builds the mismatch error carrying the attempts the caller has
// left before the code locks.
func InvalidOTP(attemptsRemaining int) *Error {
	return &Error{
		Code:              CodeInvalidOTP,
		Message:           "Invalid verification code",
		AttemptsRemaining: &attemptsRemaining,
	}
}
