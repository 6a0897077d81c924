package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// timingPlaceholder is hashed once and verified against when a login names an
// unknown email, so both failure paths cost one hash verification.
const timingPlaceholder = "cadastrahub-unknown-account"

// AuthService implements registration, administrator bootstrap and login.
type AuthService struct {
	accounts ports.AccountRepository
	lots     ports.LotService
	hasher   ports.PasswordHasher
	tokens   ports.TokenManager
	audit    ports.AuditRecorder
	log      zerolog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(
	accounts ports.AccountRepository,
	lots ports.LotService,
	hasher ports.PasswordHasher,
	tokens ports.TokenManager,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		lots:     lots,
		hasher:   hasher,
		tokens:   tokens,
		audit:    recorderOrNop(audit),
		log:      log,
	}
}

// Register creates a USER account and then, if any were submitted, its
// initial lots. Lot failures are reported per item and never undo the account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*ports.RegisterResult, error) {
	account, err := s.createAccount(ctx, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, auditEvent(domain.AuditAccountRegistered, account.ID, account.ID, account.Email, meta.RemoteIP, ""))
	s.log.Info().Int64("account_id", account.ID).Str("category", string(account.Category)).Msg("account registered")

	result := &ports.RegisterResult{Account: account.Redacted()}
	if len(in.Lots) == 0 {
		return result, nil
	}

	owner := domain.Principal{ID: account.ID, Email: account.Email, Role: account.Role}
	lots, err := s.lots.CreateBatch(ctx, owner, in.Lots)
	if err != nil {
		// The account exists; report the batch as failed item by item.
		s.log.Error().Err(err).Int64("account_id", account.ID).Msg("initial lots not stored")
		lots = make([]domain.LotResult, len(in.Lots))
		for i := range in.Lots {
			lots[i] = domain.LotResult{Index: i, Err: err}
		}
	}
	result.Lots = lots
	return result, nil
}

// RegisterAdmin creates an ADMIN account. Initial lots are not accepted.
func (s *AuthService) RegisterAdmin(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*domain.Account, error) {
	in.Lots = nil
	account, err := s.createAccount(ctx, in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, auditEvent(domain.AuditAdminRegistered, account.ID, 0, account.Email, meta.RemoteIP, "bootstrap endpoint"))
	s.log.Warn().Int64("account_id", account.ID).Str("remote_ip", meta.RemoteIP).Msg("administrator created through bootstrap endpoint")
	return account.Redacted(), nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string, meta ports.RequestMeta) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		s.hasher.Verify(password, s.placeholderDigest())
		s.audit.Record(ctx, auditEvent(domain.AuditLoginFailed, 0, 0, email, meta.RemoteIP, "unknown email"))
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.audit.Record(ctx, auditEvent(domain.AuditLoginFailed, account.ID, 0, email, meta.RemoteIP, "password mismatch"))
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(domain.Principal{ID: account.ID, Email: account.Email, Role: account.Role})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.audit.Record(ctx, auditEvent(domain.AuditLoginSucceeded, account.ID, account.ID, email, meta.RemoteIP, ""))
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, Account: account.Redacted()}, nil
}

// createAccount runs validation, the uniqueness pre-checks, hashing and the
// insert. role is decided by the caller, never by the input.
func (s *AuthService) createAccount(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.Account, error) {
	f, err := normalizeRegistration(in)
	if err != nil {
		return nil, err
	}

	wctx, cancel := detach(ctx, defaultWriteTimeout)
	defer cancel()

	if err := ensureUnique(wctx, s.accounts, 0, f.Email, f.TaxID, f.Phone); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(f.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.accounts.Insert(wctx, &domain.Account{
		Name:         f.Name,
		Email:        f.Email,
		PasswordHash: digest,
		TaxID:        f.TaxID,
		Phone:        f.Phone,
		Address:      f.Address,
		Category:     f.Category,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *AuthService) placeholderDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(timingPlaceholder)
		if err != nil {
			s.log.Error().Err(err).Msg("timing placeholder digest")
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}
