// Package service implements account registration, login, logout and account self-service.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"todo-api/internal/account/domain"
	"todo-api/internal/audit"
	"todo-api/internal/security"
)

// Sentinel errors for the auth service; the HTTP handler maps them to status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
)

// AuthResult is the outcome of Register, Login and Refresh.
type AuthResult struct {
	Token     string
	AccountID int64
}

// AccountRepo is the minimal account repository needed by the auth service.
type AccountRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// PasswordHasher hashes and checks passwords. Burn spends the same time as a failed Verify.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
	Burn(password string)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(accountID int64) (string, error)
}

// SessionRevoker adds a token to the revocation ledger.
type SessionRevoker interface {
	Revoke(ctx context.Context, token string) error
}

// AuthService implements password register, login, refresh, logout and account management.
type AuthService struct {
	accounts AccountRepo
	hasher   PasswordHasher
	tokens   TokenIssuer
	sessions SessionRevoker
	audit    audit.AuditLogger
	log      *slog.Logger
}

// NewAuthService returns an AuthService. auditLogger and log may be nil.
func NewAuthService(accounts AccountRepo, hasher PasswordHasher, tokens TokenIssuer, sessions SessionRevoker, auditLogger audit.AuditLogger, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		audit:    auditLogger,
		log:      log,
	}
}

func (s *AuthService) logAudit(ctx context.Context, accountID int64, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, accountID, action, resource, metadata)
	}
}

// Register validates the form, creates the account and returns a session token for it.
// Username and email are stored lowercased. Returns *ValidationError, domain.ErrUsernameTaken
// or domain.ErrEmailTaken for client errors.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegistration(username, password, email); err != nil {
		return nil, err
	}

	taken, err := s.accounts.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}
	taken, err = s.accounts.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	acc := &domain.Account{Username: username, Email: email, PasswordHash: hash}
	// A concurrent registration can pass the checks above; the unique constraints decide.
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, acc.ID, audit.ActionRegister, "account", "")
	return &AuthResult{Token: token, AccountID: acc.ID}, nil
}

// Login checks the password for a username or, when identifier contains '@', an email.
// Unknown identifiers and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	var (
		acc *domain.Account
		err error
	)
	if strings.Contains(identifier, "@") {
		acc, err = s.accounts.GetByEmail(ctx, identifier)
	} else {
		acc, err = s.accounts.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if acc == nil {
		s.hasher.Burn(password)
		s.logAudit(ctx, 0, audit.ActionLoginFailure, "session", "reason=unknown_identifier")
		return nil, ErrInvalidCredentials
	}
	ok, err := s.hasher.Verify(acc.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logAudit(ctx, acc.ID, audit.ActionLoginFailure, "session", "reason=bad_password")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, acc.ID, audit.ActionLoginSuccess, "session", "")
	return &AuthResult{Token: token, AccountID: acc.ID}, nil
}

// Refresh returns the presented token unchanged. Tokens are not rotated; a client
// that wants a fresh expiry logs in again.
func (s *AuthService) Refresh(_ context.Context, accountID int64, token string) *AuthResult {
	return &AuthResult{Token: token, AccountID: accountID}
}

// Logout revokes token. Safe to call more than once for the same token.
func (s *AuthService) Logout(ctx context.Context, accountID int64, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	s.logAudit(ctx, accountID, audit.ActionLogout, "session", "token="+security.Fingerprint(token))
	return nil
}

// GetAccount returns the account or ErrAccountNotFound.
func (s *AuthService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// AccountUpdate holds the fields a client submitted; nil means absent.
type AccountUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// Empty reports whether no field was submitted.
func (u AccountUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil
}

// UpdateAccount applies the submitted fields. Every submitted field is validated; taken
// usernames and emails of other accounts are rejected. Returns the updated account.
func (s *AuthService) UpdateAccount(ctx context.Context, id int64, upd AccountUpdate) (*domain.Account, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	var invalid []string
	if upd.Username != nil {
		v := strings.ToLower(strings.TrimSpace(*upd.Username))
		upd.Username = &v
		if !ValidUsername(v) {
			invalid = append(invalid, UsernameCriteria)
		}
	}
	if upd.Password != nil && !ValidPassword(*upd.Password) {
		invalid = append(invalid, PasswordCriteria)
	}
	if upd.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*upd.Email))
		upd.Email = &v
		if !ValidEmail(v) {
			invalid = append(invalid, EmailCriteria)
		}
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	var changed []string
	if upd.Username != nil && *upd.Username != acc.Username {
		taken, err := s.accounts.UsernameExists(ctx, *upd.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrUsernameTaken
		}
		acc.Username = *upd.Username
		changed = append(changed, "username")
	}
	if upd.Email != nil && *upd.Email != acc.Email {
		taken, err := s.accounts.EmailExists(ctx, *upd.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrEmailTaken
		}
		acc.Email = *upd.Email
		changed = append(changed, "email")
	}
	if upd.Password != nil {
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		acc.PasswordHash = hash
		changed = append(changed, "password")
	}

	if err := s.accounts.Update(ctx, acc); err != nil {
		return nil, err
	}
	s.logAudit(ctx, id, audit.ActionAccountUpdated, "account", "fields="+strings.Join(changed, ","))
	return acc, nil
}

// DeleteAccount removes the account with its lists and todos, then revokes token.
// A revocation failure is logged; the account is already gone and the token cannot
// resolve to a live account.
func (s *AuthService) DeleteAccount(ctx context.Context, id int64, token string) error {
	ok, err := s.accounts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccountNotFound
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		s.log.WarnContext(ctx, "account deleted but token revocation failed",
			slog.Int64("account_id", id), slog.Any("error", err))
	}
	s.logAudit(ctx, id, audit.ActionAccountDeleted, "account", "")
	return nil
}
