// Package services содержит регистрацию, вход и проверку сессионного токена.
package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bookease/bookease-backend/internal/lib/apperr"
	"github.com/bookease/bookease-backend/internal/lib/jwt"
	"github.com/bookease/bookease-backend/internal/lib/password"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/metrics"
	"github.com/bookease/bookease-backend/internal/models"
	"github.com/bookease/bookease-backend/internal/storage"
)

// Сообщения об ошибках, которые видит клиент.
const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgPasswordsMismatch   = "Passwords do not match"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgPasswordTooLong     = "Password must be at most 72 bytes"
	MsgEmailTaken          = "An account with this email already exists"
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgTooManyAttempts     = "Too many failed sign-in attempts, try again later"
	MsgNoToken             = "No token provided"
	MsgInvalidToken        = "Invalid or expired token"
	msgInternal            = "internal server error"
)

// AccountRepository хранилище аккаунтов.
type AccountRepository interface {
	// CreateAccount сохраняет аккаунт и возвращает его ID.
	CreateAccount(ctx context.Context, a models.Account) (string, error)
	// AccountByEmail возвращает аккаунт вместе с хешем пароля.
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// EmailExists проверяет, занят ли e-mail.
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Throttle ограничитель неудачных попыток входа.
type Throttle interface {
	Allowed(ctx context.Context, email string) (bool, error)
	RegisterFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService отвечает за регистрацию, вход и валидацию JWT.
type AuthService struct {
	log      *slog.Logger
	accounts AccountRepository
	jwtMaker jwt.Maker
	throttle Throttle
	metrics  *metrics.Metrics
}

// NewAuthService создает новый экземпляр AuthService. throttle и m могут быть nil.
func NewAuthService(log *slog.Logger, accounts AccountRepository, jwtMaker jwt.Maker, throttle Throttle, m *metrics.Metrics) *AuthService {
	return &AuthService{
		log:      log,
		accounts: accounts,
		jwtMaker: jwtMaker,
		throttle: throttle,
		metrics:  m,
	}
}

// RegisterInput данные формы регистрации.
type RegisterInput struct {
	Name             string
	PhoneCountryCode string
	PhoneNumber      string
	Email            string
	Password         string
	ConfirmPassword  string
	OrganisationName string
	Location         string
}

// Result токен и публичные данные аккаунта.
type Result struct {
	Token   string
	Account models.AccountSummary
}

// Register создаёт аккаунт и сразу выдаёт токен.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	const op = "services.AuthService.Register"

	required := []string{in.Name, in.PhoneNumber, in.Email, in.Password, in.ConfirmPassword, in.OrganisationName, in.Location}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return nil, apperr.Validation(MsgAllFieldsRequired)
		}
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation(MsgPasswordsMismatch)
	}
	if len(in.Password) < password.MinLength {
		return nil, apperr.Validation(MsgPasswordTooShort)
	}
	if len(in.Password) > password.MaxBytes {
		return nil, apperr.Validation(MsgPasswordTooLong)
	}

	email := models.NormalizeEmail(in.Email)
	exists, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	if exists {
		return nil, apperr.Conflict(MsgEmailTaken)
	}

	hash, err := password.GetHash(in.Password)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}

	account := models.Account{
		Name:             strings.TrimSpace(in.Name),
		PhoneCountryCode: strings.TrimSpace(in.PhoneCountryCode),
		PhoneNumber:      strings.TrimSpace(in.PhoneNumber),
		Email:            email,
		PasswordHash:     hash,
		OrganisationName: strings.TrimSpace(in.OrganisationName),
		Location:         strings.TrimSpace(in.Location),
	}
	if account.PhoneCountryCode == "" {
		account.PhoneCountryCode = models.DefaultPhoneCountryCode
	}

	// уникальный индекс ловит гонку двух регистраций с одним e-mail
	id, err := s.accounts.CreateAccount(ctx, account)
	if errors.Is(err, storage.ErrAccountExists) {
		return nil, apperr.Conflict(MsgEmailTaken)
	}
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	account.ID = id

	token, err := s.jwtMaker.GenerateToken(account.ID, account.Email)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}

	s.log.Info("account registered", slog.String("op", op), slog.String("account_id", id))
	return &Result{Token: token, Account: account.Summary()}, nil
}

// Login проверяет пароль и выдаёт новый токен. Ранее выданные токены остаются действительными.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "services.AuthService.Login"
	log := s.log.With(slog.String("op", op))

	email = models.NormalizeEmail(email)
	if email == "" || rawPassword == "" {
		return nil, apperr.Validation(MsgCredentialsRequired)
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, email)
		if err != nil {
			log.Warn("sign-in throttle unavailable", sl.Err(err))
		}
		if !allowed {
			return nil, apperr.RateLimit(MsgTooManyAttempts)
		}
	}

	account, err := s.accounts.AccountByEmail(ctx, email)
	if errors.Is(err, storage.ErrAccountNotFound) {
		password.CompareDummy(rawPassword)
		s.failed(ctx, log, email)
		return nil, apperr.Auth(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}

	if err := password.CompareHash(account.PasswordHash, rawPassword); err != nil {
		s.failed(ctx, log, email)
		return nil, apperr.Auth(MsgInvalidCredentials)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			log.Warn("failed to reset sign-in throttle", sl.Err(err))
		}
	}

	token, err := s.jwtMaker.GenerateToken(account.ID, account.Email)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return &Result{Token: token, Account: account.Summary()}, nil
}

func (s *AuthService) failed(ctx context.Context, log *slog.Logger, email string) {
	s.metrics.SignInFailure()
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RegisterFailure(ctx, email); err != nil {
		log.Warn("failed to register sign-in failure", sl.Err(err))
	}
}

// Identity проверяет токен и возвращает его утверждения.
func (s *AuthService) Identity(token string) (*jwt.Claims, error) {
	if token == "" {
		return nil, apperr.Auth(MsgNoToken)
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.Auth(MsgInvalidToken)
	}
	return claims, nil
}
