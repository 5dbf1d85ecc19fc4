package domain

import "time"

// Account statuses. An account is created pending and only becomes active
// through a successful OTP verification. Suspended and closed are set by
// support tooling, never by the signup/verify flow.
const (
	StatusPendingVerification = "pending_verification"
	StatusActive              = "active"
	StatusSuspended           = "suspended"
	StatusClosed              = "closed"
)

// Account types.
const (
	AccountTypePersonal = "personal"
	AccountTypeBusiness = "business"
)

// OTP delivery channels.
const (
	OTPMethodEmail = "email"
	OTPMethodPhone = "phone"
)

// OTPState is the outstanding verification code embedded in the account
// document. Absent (nil) means no verification cycle is in flight.
type OTPState struct {
	Code      string    `json:"-" dynamodbav:"code"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
}

// ResetState is the outstanding password-reset token embedded in the account
// document. Storing the issued token makes it single-use: the stored copy is
// removed when consumed, so a replayed token no longer matches.
type ResetState struct {
	Token     string    `json:"-" dynamodbav:"token"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
}

// Account is the persisted user entity, one per normalized (lowercase) email.
type Account struct {
	AccountID      string      `json:"id" dynamodbav:"account_id"`
	Email          string      `json:"email" dynamodbav:"email"`
	CredentialHash string      `json:"-" dynamodbav:"credential_hash"`
	Phone          string      `json:"phone" dynamodbav:"phone"`
	Country        string      `json:"country" dynamodbav:"country"`
	AccountType    string      `json:"account_type" dynamodbav:"account_type"`
	ReferralCode   string      `json:"referral_code,omitempty" dynamodbav:"referral_code"`
	OTPMethod      string      `json:"otp_method" dynamodbav:"otp_method"`
	TermsAccepted  bool        `json:"terms_accepted" dynamodbav:"terms_accepted"`
	Status         string      `json:"status" dynamodbav:"status"`
	EmailVerified  bool        `json:"email_verified" dynamodbav:"email_verified"`
	OTP            *OTPState   `json:"-" dynamodbav:"otp,omitempty"`
	ResetToken     *ResetState `json:"-" dynamodbav:"reset_token,omitempty"`
	LastLogin      *time.Time  `json:"last_login,omitempty" dynamodbav:"last_login"`
	CreatedAt      time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time   `json:"updated" dynamodbav:"updated_at"`
}

// CanLogin reports whether the account status permits a login. Pending
// accounts are rejected earlier by the verification gate.
func (a *Account) CanLogin() bool {
	return a.Status != StatusSuspended && a.Status != StatusClosed
}

// SignupRequest is the wire payload for account creation.
type SignupRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	Phone         string `json:"phone" validate:"required,min=10"`
	Country       string `json:"country" validate:"required"`
	AccountType   string `json:"account_type" validate:"required,oneof=personal business"`
	ReferralCode  string `json:"referral_code"`
	OTPMethod     string `json:"otp_method" validate:"omitempty,oneof=email phone"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// VerifyOTPRequest is the wire payload for OTP consumption.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResendOTPRequest asks for a fresh verification code.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest is the wire payload for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
