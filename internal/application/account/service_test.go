package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/supapay/auth-api/internal/application/otp"
	"github.com/supapay/auth-api/internal/domain"
	jwtinfra "github.com/supapay/auth-api/internal/infrastructure/jwt"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Insert(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockStore) Update(ctx context.Context, accountID string, set map[string]interface{}, remove ...string) error {
	return m.Called(ctx, accountID, set, remove).Error(0)
}
func (m *mockStore) Delete(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, html string) error {
	return m.Called(to, subject, html).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Sign(accountID, email, accountType, purpose string, ttl time.Duration) (string, error) {
	args := m.Called(accountID, email, accountType, purpose, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockIssuer) Verify(token string) (*jwtinfra.Claims, error) {
	args := m.Called(token)
	if c, _ := args.Get(0).(*jwtinfra.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeHasher is deterministic so tests can assert plaintext never reaches
// the store.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (fakeHasher) Verify(plain, digest string) bool  { return digest == "hashed:"+plain }

// --- builder ---

type fixture struct {
	repo   *mockStore
	mailer *mockMailer
	sms    *mockSMSSender
	tokens *mockIssuer
	svc    Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:   &mockStore{},
		mailer: &mockMailer{},
		sms:    &mockSMSSender{},
		tokens: &mockIssuer{},
	}
	f.svc = NewService(ServiceDeps{
		Repo:             f.repo,
		OTPManager:       otp.NewManager(10*time.Minute, 5),
		Hasher:           fakeHasher{},
		Mailer:           f.mailer,
		SMSSender:        f.sms,
		Tokens:           f.tokens,
		SessionTokenTTL:  24 * time.Hour,
		ResetTokenTTL:    time.Hour,
		ResetLinkBaseURL: "https://app.supapay.example/passwordreset.html",
	})
	return f
}

func validSignup() domain.SignupRequest {
	return domain.SignupRequest{
		Email:         "A@B.com",
		Password:      "Str0ng!Pass",
		Phone:         "+2348012345678",
		Country:       "NG",
		AccountType:   domain.AccountTypePersonal,
		TermsAccepted: true,
	}
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	return de.Code
}

// --- Signup ---

func TestSignup_MissingFields(t *testing.T) {
	f := newFixture()
	req := validSignup()
	req.Country = ""

	_, err := f.svc.Signup(context.Background(), req)
	assert.Equal(t, domain.CodeMissingFields, apiCode(t, err))
}

func TestSignup_TermsNotAccepted(t *testing.T) {
	f := newFixture()
	req := validSignup()
	req.TermsAccepted = false

	_, err := f.svc.Signup(context.Background(), req)
	assert.Equal(t, domain.CodeTermsNotAccepted, apiCode(t, err))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.Account{AccountID: "u1"}, nil)

	_, err := f.svc.Signup(context.Background(), validSignup())
	assert.Equal(t, domain.CodeDuplicateEmail, apiCode(t, err))
	f.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSignup_HappyPath(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	var inserted *domain.Account
	f.repo.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(*domain.Account) }).
		Return(nil)
	f.mailer.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	require.NotNil(t, inserted)
	assert.Equal(t, "a@b.com", inserted.Email, "email is normalized to lowercase")
	assert.Equal(t, domain.StatusPendingVerification, inserted.Status)
	assert.False(t, inserted.EmailVerified)
	assert.Equal(t, "hashed:Str0ng!Pass", inserted.CredentialHash)
	require.NotNil(t, inserted.OTP)
	assert.Len(t, inserted.OTP.Code, 6)
	assert.Zero(t, inserted.OTP.Attempts)

	assert.Equal(t, "10 minutes", res.OTPExpiresIn)
	assert.Equal(t, domain.OTPMethodEmail, res.OTPMethod)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSignup_DeliveryFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	var inserted *domain.Account
	f.repo.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(*domain.Account) }).
		Return(nil)
	f.mailer.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	f.repo.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	_, err := f.svc.Signup(context.Background(), validSignup())
	assert.Equal(t, domain.CodeEmailSendFailed, apiCode(t, err))

	require.NotNil(t, inserted)
	f.repo.AssertCalled(t, "Delete", mock.Anything, inserted.AccountID)
}

func TestSignup_PhoneOTPMethodUsesSMS(t *testing.T) {
	f := newFixture()
	req := validSignup()
	req.OTPMethod = domain.OTPMethodPhone

	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	f.repo.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil)
	f.sms.On("SendSMS", mock.Anything, "+2348012345678", mock.Anything).Return(nil)

	_, err := f.svc.Signup(context.Background(), req)
	require.NoError(t, err)

	f.sms.AssertExpectations(t)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

// --- VerifyOTP ---

func pendingAccount(otpState *domain.OTPState) *domain.Account {
	return &domain.Account{
		AccountID:     "u1",
		Email:         "a@b.com",
		Status:        domain.StatusPendingVerification,
		EmailVerified: false,
		OTP:           otpState,
	}
}

func TestVerifyOTP_UserNotFound(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	assert.Equal(t, domain.CodeUserNotFound, apiCode(t, err))
}

func TestVerifyOTP_AlreadyVerifiedIsIdempotentReject(t *testing.T) {
	f := newFixture()
	acct := pendingAccount(nil)
	acct.EmailVerified = true
	acct.Status = domain.StatusActive
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(acct, nil)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	assert.Equal(t, domain.CodeAlreadyVerified, apiCode(t, err))
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTP_NoOutstandingCode(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(nil), nil)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	assert.Equal(t, domain.CodeNoOTPFound, apiCode(t, err))
}

func TestVerifyOTP_ExpiredWithoutBurningAttempts(t *testing.T) {
	f := newFixture()
	state := &domain.OTPState{Code: "123456", ExpiresAt: time.Now().Add(-time.Minute), Attempts: 2}
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(state), nil)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	assert.Equal(t, domain.CodeOTPExpired, apiCode(t, err))
	assert.Equal(t, 2, state.Attempts)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTP_LockedEvenWithCorrectCode(t *testing.T) {
	f := newFixture()
	state := &domain.OTPState{Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute), Attempts: 5}
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(state), nil)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	assert.Equal(t, domain.CodeTooManyAttempts, apiCode(t, err))
}

func TestVerifyOTP_MismatchPersistsAttempt(t *testing.T) {
	f := newFixture()
	state := &domain.OTPState{Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute), Attempts: 1}
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(state), nil)
	f.repo.On("Update", mock.Anything, "u1", mock.MatchedBy(func(set map[string]interface{}) bool {
		st, ok := set["otp"].(*domain.OTPState)
		return ok && st.Attempts == 2
	}), mock.Anything).Return(nil)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "999999"})

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeInvalidOTP, de.Code)
	require.NotNil(t, de.AttemptsRemaining)
	assert.Equal(t, 3, *de.AttemptsRemaining)
	f.repo.AssertExpectations(t)
}

func TestVerifyOTP_FifthMismatchLeavesZeroRemaining(t *testing.T) {
	f := newFixture()
	state := &domain.OTPState{Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute), Attempts: 4}
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(state), nil)
	f.repo.On("Update", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "999999"})

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.NotNil(t, de.AttemptsRemaining)
	assert.Equal(t, 0, *de.AttemptsRemaining)
}

func TestVerifyOTP_SuccessClearsCodeAndActivates(t *testing.T) {
	f := newFixture()
	state := &domain.OTPState{Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute)}
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(state), nil)
	f.repo.On("Update", mock.Anything, "u1", mock.MatchedBy(func(set map[string]interface{}) bool {
		return set["email_verified"] == true && set["status"] == domain.StatusActive
	}), []string{"otp"}).Return(nil)
	f.mailer.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil).Maybe()

	res, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	require.NoError(t, err)

	assert.True(t, res.EmailVerified)
	assert.Equal(t, domain.StatusActive, res.Status)
	assert.Equal(t, "login", res.NextStep)
	f.repo.AssertExpectations(t)
}

// --- ResendOTP ---

func TestResendOTP_EmailRequired(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ResendOTP(context.Background(), "")
	assert.Equal(t, domain.CodeEmailRequired, apiCode(t, err))
}

func TestResendOTP_AlreadyVerified(t *testing.T) {
	f := newFixture()
	acct := pendingAccount(nil)
	acct.EmailVerified = true
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(acct, nil)

	_, err := f.svc.ResendOTP(context.Background(), "a@b.com")
	assert.Equal(t, domain.CodeAlreadyVerified, apiCode(t, err))
}

func TestResendOTP_ReplacesLockedCode(t *testing.T) {
	f := newFixture()
	locked := &domain.OTPState{Code: "111111", ExpiresAt: time.Now().Add(5 * time.Minute), Attempts: 5}
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(locked), nil)
	f.repo.On("Update", mock.Anything, "u1", mock.MatchedBy(func(set map[string]interface{}) bool {
		st, ok := set["otp"].(*domain.OTPState)
		return ok && st.Attempts == 0 && st.Code != "111111"
	}), mock.Anything).Return(nil)
	f.mailer.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.ResendOTP(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "10 minutes", res.OTPExpiresIn)
	f.repo.AssertExpectations(t)
}

func TestResendOTP_DeliveryFailureKeepsAccount(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingAccount(nil), nil)
	f.repo.On("Update", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := f.svc.ResendOTP(context.Background(), "a@b.com")
	assert.Equal(t, domain.CodeEmailSendFailed, apiCode(t, err))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- Login ---

func activeAccount() *domain.Account {
	return &domain.Account{
		AccountID:      "u1",
		Email:          "a@b.com",
		CredentialHash: "hashed:Str0ng!Pass",
		AccountType:    domain.AccountTypePersonal,
		Status:         domain.StatusActive,
		EmailVerified:  true,
	}
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(activeAccount(), nil)

	_, err1 := f.svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@b.com", Password: "whatever1"})
	_, err2 := f.svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "wrong-password"})

	assert.Equal(t, err1, err2)
	assert.Equal(t, domain.CodeInvalidCredentials, apiCode(t, err1))
}

func TestLogin_UnverifiedGateAfterCredentialCheck(t *testing.T) {
	f := newFixture()
	acct := activeAccount()
	acct.EmailVerified = false
	acct.Status = domain.StatusPendingVerification
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(acct, nil)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "Str0ng!Pass"})
	assert.Equal(t, domain.CodeEmailNotVerified, apiCode(t, err))
}

func TestLogin_SuspendedAccount(t *testing.T) {
	f := newFixture()
	acct := activeAccount()
	acct.Status = domain.StatusSuspended
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(acct, nil)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "Str0ng!Pass"})
	assert.Equal(t, domain.CodeAccountDisabled, apiCode(t, err))
}

func TestLogin_HappyPath(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(activeAccount(), nil)
	f.repo.On("Update", mock.Anything, "u1", mock.MatchedBy(func(set map[string]interface{}) bool {
		_, ok := set["last_login"]
		return ok
	}), mock.Anything).Return(nil)
	f.tokens.On("Sign", "u1", "a@b.com", domain.AccountTypePersonal, jwtinfra.PurposeSession, 24*time.Hour).
		Return("session-token", nil)

	res, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "A@B.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	assert.Equal(t, "session-token", res.Token)
	require.NotNil(t, res.Account.LastLogin)
	f.tokens.AssertExpectations(t)
}

// --- store failures ---

// A failing store must surface as-is so the transport reports a server
// error, never as a lookup-shaped domain error.

func TestSignup_StoreFailureIsNotTreatedAsFreeEmail(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, errors.New("dynamodb: connection refused"))

	_, err := f.svc.Signup(context.Background(), validSignup())

	var de *domain.Error
	require.Error(t, err)
	assert.False(t, errors.As(err, &de))
	f.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestVerifyOTP_StoreFailureIsNotUserNotFound(t *testing.T) {
	f := newFixture()
	storeErr := errors.New("dynamodb: connection refused")
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, storeErr)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	assert.ErrorIs(t, err, storeErr)

	var de *domain.Error
	assert.False(t, errors.As(err, &de))
}

func TestLogin_StoreFailureIsNotInvalidCredentials(t *testing.T) {
	f := newFixture()
	storeErr := errors.New("dynamodb: connection refused")
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, storeErr)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "Str0ng!Pass"})
	assert.ErrorIs(t, err, storeErr)
	assert.NotEqual(t, domain.ErrInvalidCredentials, err)
}

func TestForgotPassword_StoreFailureIsNotSilent(t *testing.T) {
	f := newFixture()
	storeErr := errors.New("dynamodb: connection refused")
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, storeErr)

	err := f.svc.ForgotPassword(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, storeErr)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_StoreFailureIsNotInvalidToken(t *testing.T) {
	f := newFixture()
	storeErr := errors.New("dynamodb: connection refused")
	f.tokens.On("Verify", "reset-token").Return(resetClaims(jwtinfra.PurposeReset), nil)
	f.repo.On("Get", mock.Anything, "u1").Return(nil, storeErr)

	err := f.svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Token: "reset-token", NewPassword: "NewPass123!"})
	assert.ErrorIs(t, err, storeErr)
	assert.NotEqual(t, domain.ErrInvalidToken, err)
}

func TestProfile_StoreFailureIsNotUserNotFound(t *testing.T) {
	f := newFixture()
	storeErr := errors.New("dynamodb: connection refused")
	f.repo.On("Get", mock.Anything, "u1").Return(nil, storeErr)

	_, err := f.svc.Profile(context.Background(), "u1")
	assert.ErrorIs(t, err, storeErr)
}

// --- ForgotPassword / ResetPassword ---

func TestForgotPassword_UnknownEmailStaysSilent(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)

	err := f.svc.ForgotPassword(context.Background(), "ghost@b.com")
	assert.NoError(t, err)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestForgotPassword_IssuesStoredResetToken(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(activeAccount(), nil)
	f.tokens.On("Sign", "u1", "a@b.com", domain.AccountTypePersonal, jwtinfra.PurposeReset, time.Hour).
		Return("reset-token", nil)
	f.repo.On("Update", mock.Anything, "u1", mock.MatchedBy(func(set map[string]interface{}) bool {
		rs, ok := set["reset_token"].(*domain.ResetState)
		return ok && rs.Token == "reset-token"
	}), mock.Anything).Return(nil)
	f.mailer.On("SendEmail", "a@b.com", mock.Anything, mock.MatchedBy(func(html string) bool {
		// ResetTokenTTL is an hour in this fixture, so the mail must say so.
		return strings.Contains(html, "60 minutes")
	})).Return(nil)

	err := f.svc.ForgotPassword(context.Background(), "a@b.com")
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestForgotPassword_MailFailureStaysSilent(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByEmail", mock.Anything, "a@b.com").Return(activeAccount(), nil)
	f.tokens.On("Sign", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("reset-token", nil)
	f.repo.On("Update", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	assert.NoError(t, f.svc.ForgotPassword(context.Background(), "a@b.com"))
}

func resetClaims(purpose string) *jwtinfra.Claims {
	return &jwtinfra.Claims{AccountID: "u1", Email: "a@b.com", Purpose: purpose}
}

func TestResetPassword_InvalidSignature(t *testing.T) {
	f := newFixture()
	f.tokens.On("Verify", "bad-token").Return(nil, errors.New("bad signature"))

	err := f.svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Token: "bad-token", NewPassword: "NewPass123!"})
	assert.Equal(t, domain.CodeInvalidToken, apiCode(t, err))
}

func TestResetPassword_SessionTokenRejected(t *testing.T) {
	f := newFixture()
	f.tokens.On("Verify", "session-token").Return(resetClaims(jwtinfra.PurposeSession), nil)

	err := f.svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Token: "session-token", NewPassword: "NewPass123!"})
	assert.Equal(t, domain.CodeInvalidTokenType, apiCode(t, err))
}

func TestResetPassword_ConsumedTokenCannotReplay(t *testing.T) {
	f := newFixture()
	acct := activeAccount()
	acct.ResetToken = nil // already consumed
	f.tokens.On("Verify", "reset-token").Return(resetClaims(jwtinfra.PurposeReset), nil)
	f.repo.On("Get", mock.Anything, "u1").Return(acct, nil)

	err := f.svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Token: "reset-token", NewPassword: "NewPass123!"})
	assert.Equal(t, domain.CodeInvalidToken, apiCode(t, err))
}

func TestResetPassword_SupersededTokenRejected(t *testing.T) {
	f := newFixture()
	acct := activeAccount()
	acct.ResetToken = &domain.ResetState{Token: "newer-token", ExpiresAt: time.Now().Add(time.Hour)}
	f.tokens.On("Verify", "reset-token").Return(resetClaims(jwtinfra.PurposeReset), nil)
	f.repo.On("Get", mock.Anything, "u1").Return(acct, nil)

	err := f.svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Token: "reset-token", NewPassword: "NewPass123!"})
	assert.Equal(t, domain.CodeInvalidToken, apiCode(t, err))
}

func TestResetPassword_HappyPathClearsToken(t *testing.T) {
	f := newFixture()
	acct := activeAccount()
	acct.ResetToken = &domain.ResetState{Token: "reset-token", ExpiresAt: time.Now().Add(time.Hour)}
	f.tokens.On("Verify", "reset-token").Return(resetClaims(jwtinfra.PurposeReset), nil)
	f.repo.On("Get", mock.Anything, "u1").Return(acct, nil)
	f.repo.On("Update", mock.Anything, "u1", mock.MatchedBy(func(set map[string]interface{}) bool {
		return set["credential_hash"] == "hashed:NewPass123!"
	}), []string{"reset_token"}).Return(nil)

	err := f.svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Token: "reset-token", NewPassword: "NewPass123!"})
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}
