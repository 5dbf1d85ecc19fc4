// Package account orchestrates the account lifecycle: signup, email
// verification, login, and password reset.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/supapay/auth-api/internal/application/otp"
	"github.com/supapay/auth-api/internal/domain"
	jwtinfra "github.com/supapay/auth-api/internal/infrastructure/jwt"
	"github.com/supapay/auth-api/internal/infrastructure/smtp"
	"github.com/supapay/auth-api/internal/infrastructure/sns"
	"github.com/supapay/auth-api/internal/pkg/id"
	"github.com/supapay/auth-api/internal/pkg/password"
)

// Document attribute names used in partial update maps.
const (
	fieldOTP            = "otp"
	fieldResetToken     = "reset_token"
	fieldStatus         = "status"
	fieldEmailVerified  = "email_verified"
	fieldCredentialHash = "credential_hash"
	fieldLastLogin      = "last_login"
)

type SignupResult struct {
	Email        string `json:"email"`
	Country      string `json:"country"`
	AccountType  string `json:"account_type"`
	OTPMethod    string `json:"otp_method"`
	OTPExpiresIn string `json:"otpExpiresIn"`
}

type VerifyResult struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"isEmailVerified"`
	Status        string `json:"status"`
	NextStep      string `json:"nextStep"`
}

type ResendResult struct {
	Email        string `json:"email"`
	OTPExpiresIn string `json:"otpExpiresIn"`
}

type LoginResult struct {
	Token   string
	Account *domain.Account
}

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*SignupResult, error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error)
	ResendOTP(ctx context.Context, email string) (*ResendResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	Profile(ctx context.Context, accountID string) (*domain.Account, error)
}

// accountStore is the minimal persistence surface the service needs.
// Update applies its set-map and remove-list in one atomic per-document
// write; the service relies on that for clear-OTP-and-activate.
type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Insert(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, accountID string, set map[string]interface{}, remove ...string) error
	Delete(ctx context.Context, accountID string) error
}

type tokenIssuer interface {
	Sign(accountID, email, accountType, purpose string, ttl time.Duration) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type service struct {
	repo             accountStore
	otpMgr           *otp.Manager
	hasher           password.Hasher
	mailer           smtp.Mailer
	smsSender        sns.SMSSender
	tokens           tokenIssuer
	sessionTTL       time.Duration
	resetTTL         time.Duration
	resetLinkBaseURL string
}

type ServiceDeps struct {
	Repo             accountStore
	OTPManager       *otp.Manager
	Hasher           password.Hasher
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	Tokens           tokenIssuer
	SessionTokenTTL  time.Duration
	ResetTokenTTL    time.Duration
	ResetLinkBaseURL string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:             deps.Repo,
		otpMgr:           deps.OTPManager,
		hasher:           deps.Hasher,
		mailer:           deps.Mailer,
		smsSender:        deps.SMSSender,
		tokens:           deps.Tokens,
		sessionTTL:       deps.SessionTokenTTL,
		resetTTL:         deps.ResetTokenTTL,
		resetLinkBaseURL: deps.ResetLinkBaseURL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*SignupResult, error) {
	if req.Email == "" || req.Password == "" || req.Phone == "" || req.Country == "" || req.AccountType == "" {
		return nil, domain.ErrMissingFields
	}
	if !req.TermsAccepted {
		return nil, domain.ErrTermsNotAccepted
	}

	email := normalizeEmail(req.Email)
	// Only a definitive miss means the email is free; an errored read must
	// not let a duplicate slip through.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	code, otpState, err := s.otpMgr.Issue()
	if err != nil {
		return nil, err
	}

	otpMethod := req.OTPMethod
	if otpMethod == "" {
		otpMethod = domain.OTPMethodEmail
	}

	now := time.Now().UTC()
	acct := &domain.Account{
		AccountID:      id.New(),
		Email:          email,
		CredentialHash: hash,
		Phone:          req.Phone,
		Country:        req.Country,
		AccountType:    req.AccountType,
		ReferralCode:   req.ReferralCode,
		OTPMethod:      otpMethod,
		TermsAccepted:  true,
		Status:         domain.StatusPendingVerification,
		EmailVerified:  false,
		OTP:            otpState,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, acct); err != nil {
		return nil, err
	}

	// A pending account that can never receive its code would permanently
	// occupy the unique-email slot, so delivery failure rolls the insert back.
	if err := s.deliverOTP(ctx, acct, code); err != nil {
		slog.Warn("otp delivery failed, rolling back signup", "account_id", acct.AccountID, "err", err)
		if delErr := s.repo.Delete(ctx, acct.AccountID); delErr != nil {
			slog.Error("signup rollback delete failed", "account_id", acct.AccountID, "err", delErr)
		}
		return nil, domain.ErrEmailSendFailed
	}

	return &SignupResult{
		Email:        acct.Email,
		Country:      acct.Country,
		AccountType:  acct.AccountType,
		OTPMethod:    acct.OTPMethod,
		OTPExpiresIn: s.otpExpiresIn(),
	}, nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error) {
	if req.Email == "" || req.OTP == "" {
		return nil, domain.ErrMissingFields
	}
	acct, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if acct.EmailVerified {
		return nil, domain.ErrAlreadyVerified
	}

	switch s.otpMgr.Validate(req.OTP, acct.OTP) {
	case otp.OutcomeNoCode:
		return nil, domain.ErrNoOTPFound
	case otp.OutcomeExpired:
		return nil, domain.ErrOTPExpired
	case otp.OutcomeLocked:
		return nil, domain.ErrTooManyAttempts
	case otp.OutcomeMismatch:
		acct.OTP.Attempts++
		if err := s.repo.Update(ctx, acct.AccountID, map[string]interface{}{fieldOTP: acct.OTP}); err != nil {
			return nil, err
		}
		return nil, domain.InvalidOTP(s.otpMgr.AttemptsRemaining(acct.OTP))
	}

	// Clearing the code and activating the account happen in one write so a
	// concurrent resend or duplicate verify never sees a half-updated record.
	err = s.repo.Update(ctx, acct.AccountID, map[string]interface{}{
		fieldEmailVerified: true,
		fieldStatus:        domain.StatusActive,
	}, fieldOTP)
	if err != nil {
		return nil, err
	}

	// Welcome mail is best effort and must not delay or fail the response.
	go func(email string) {
		subject, body := smtp.WelcomeEmail(strings.SplitN(email, "@", 2)[0])
		if err := s.mailer.SendEmail(email, subject, body); err != nil {
			slog.Warn("welcome email failed", "email", email, "err", err)
		}
	}(acct.Email)

	return &VerifyResult{
		Email:         acct.Email,
		EmailVerified: true,
		Status:        domain.StatusActive,
		NextStep:      "login",
	}, nil
}

func (s *service) ResendOTP(ctx context.Context, email string) (*ResendResult, error) {
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	acct, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if acct.EmailVerified {
		return nil, domain.ErrAlreadyVerified
	}

	// A fresh code always replaces the old one and resets attempts, which is
	// also the escape hatch from a locked code.
	code, otpState, err := s.otpMgr.Issue()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, acct.AccountID, map[string]interface{}{fieldOTP: otpState}); err != nil {
		return nil, err
	}
	acct.OTP = otpState

	// Unlike signup there is no rollback: the account has history and the
	// caller can simply retry the resend.
	if err := s.deliverOTP(ctx, acct, code); err != nil {
		slog.Warn("otp resend delivery failed", "account_id", acct.AccountID, "err", err)
		return nil, domain.ErrEmailSendFailed
	}

	return &ResendResult{Email: acct.Email, OTPExpiresIn: s.otpExpiresIn()}, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrMissingFields
	}

	// Unknown email and wrong password are indistinguishable to the caller;
	// a failing store is neither and surfaces as a server error.
	acct, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(req.Password, acct.CredentialHash) {
		return nil, domain.ErrInvalidCredentials
	}

	// Verification gate only after the credential succeeded, so the gate
	// itself can't be used to probe for registered emails.
	if !acct.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}
	if !acct.CanLogin() {
		return nil, domain.ErrAccountDisabled
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, acct.AccountID, map[string]interface{}{fieldLastLogin: now}); err != nil {
		return nil, err
	}
	acct.LastLogin = &now

	token, err := s.tokens.Sign(acct.AccountID, acct.Email, acct.AccountType, jwtinfra.PurposeSession, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Account: acct}, nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrEmailRequired
	}
	acct, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		// Same outward response as the success path, so the endpoint can't
		// be used to enumerate registered emails.
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.tokens.Sign(acct.AccountID, acct.Email, acct.AccountType, jwtinfra.PurposeReset, s.resetTTL)
	if err != nil {
		return err
	}

	// The issued token is stored on the account; consuming or superseding it
	// removes the stored copy, which is what makes it single-use.
	reset := &domain.ResetState{Token: token, ExpiresAt: time.Now().UTC().Add(s.resetTTL)}
	if err := s.repo.Update(ctx, acct.AccountID, map[string]interface{}{fieldResetToken: reset}); err != nil {
		return err
	}

	link := fmt.Sprintf("%s?token=%s", s.resetLinkBaseURL, url.QueryEscape(token))
	subject, body := smtp.ResetEmail(link, int(s.resetTTL.Minutes()))
	if err := s.mailer.SendEmail(acct.Email, subject, body); err != nil {
		// Surfacing the failure would reveal that the account exists.
		slog.Warn("password reset email failed", "account_id", acct.AccountID, "err", err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if req.Token == "" || req.NewPassword == "" {
		return domain.ErrMissingFields
	}

	claims, err := s.tokens.Verify(req.Token)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if claims.Purpose != jwtinfra.PurposeReset {
		return domain.ErrInvalidTokenType
	}

	acct, err := s.repo.Get(ctx, claims.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidToken
	}
	if err != nil {
		return err
	}
	// The stored copy must match: a consumed or superseded token fails here
	// even though its signature is still valid.
	if acct.ResetToken == nil || acct.ResetToken.Token != req.Token {
		return domain.ErrInvalidToken
	}
	if time.Now().UTC().After(acct.ResetToken.ExpiresAt) {
		return domain.ErrInvalidToken
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, acct.AccountID, map[string]interface{}{fieldCredentialHash: hash}, fieldResetToken)
}

func (s *service) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	acct, err := s.repo.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *service) deliverOTP(ctx context.Context, acct *domain.Account, code string) error {
	minutes := int(s.otpMgr.TTL().Minutes())
	if acct.OTPMethod == domain.OTPMethodPhone && s.smsSender != nil {
		msg := fmt.Sprintf("Your SupaPay verification code is %s. It expires in %d minutes.", code, minutes)
		return s.smsSender.SendSMS(ctx, acct.Phone, msg)
	}
	subject, body := smtp.OTPEmail(code, minutes)
	return s.mailer.SendEmail(acct.Email, subject, body)
}

func (s *service) otpExpiresIn() string {
	return fmt.Sprintf("%d minutes", int(s.otpMgr.TTL().Minutes()))
}
