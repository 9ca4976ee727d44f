package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/referralnet/internal/auth"
	"github.com/vanshika/referralnet/internal/domain"
)

// ErrValidation marks input rejected before it reaches storage.
var ErrValidation = errors.New("validation failed")

// ErrUnknownReferralCode is returned when a registration names a referral
// code no account owns.
var ErrUnknownReferralCode = fmt.Errorf("%w: unknown referral code", ErrValidation)

const maxCodeAttempts = 5

// AccountRepository is the storage contract required by the account service.
type AccountRepository interface {
	UpsertAccount(ctx context.Context, acct domain.Account) error
	FindAccountByID(ctx context.Context, id string) (domain.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (domain.Account, error)
	FindAccountByReferralCode(ctx context.Context, code string) (domain.Account, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AccountService handles sign-up, sign-in and bulk account ingestion.
type AccountService struct {
	repo   AccountRepository
	tokens TokenIssuer
	hasher PasswordHasher
	codes  CodeGenerator
	idFn   func() string
	nowFn  func() time.Time
}

// NewAccountService constructs an AccountService. A nil hasher falls back to
// bcrypt at its default cost.
func NewAccountService(repo AccountRepository, tokens TokenIssuer, hasher PasswordHasher) *AccountService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}
	return &AccountService{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		codes:  DefaultCodeGenerator{},
		idFn:   uuid.NewString,
		nowFn:  time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *AccountService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// WithIDs overrides the account ID generator.
func (s *AccountService) WithIDs(idFn func() string) {
	if idFn != nil {
		s.idFn = idFn
	}
}

// WithCodes overrides the referral code generator.
func (s *AccountService) WithCodes(gen CodeGenerator) {
	if gen != nil {
		s.codes = gen
	}
}

// Register creates an account, links it under the owner of ReferralCode when
// one is given, and opens a session.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (domain.Session, error) {
	name := sanitizeString(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return domain.Session{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !validEmail(email) {
		return domain.Session{}, fmt.Errorf("%w: email %q is invalid", ErrValidation, input.Email)
	}

	if _, err := s.repo.FindAccountByEmail(ctx, email); err == nil {
		return domain.Session{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, err
	}

	var referrerID string
	if code := normalizeReferralCode(input.ReferralCode); code != "" {
		referrer, err := s.repo.FindAccountByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, ErrUnknownReferralCode
		}
		if err != nil {
			return domain.Session{}, err
		}
		referrerID = referrer.ID
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	id := s.idFn()
	code, err := s.uniqueCode(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}

	now := s.nowFn().UTC()
	acct := domain.Account{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		ReferralCode: code,
		ReferrerID:   referrerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.UpsertAccount(ctx, acct); err != nil {
		return domain.Session{}, err
	}
	return s.open(acct)
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (domain.Session, error) {
	acct, err := s.repo.FindAccountByEmail(ctx, normalizeEmail(input.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.hasher.Compare(acct.PasswordHash, input.Password); err != nil {
		return domain.Session{}, auth.ErrInvalidCredentials
	}
	return s.open(acct)
}

// Account loads the account behind an authenticated user ID.
func (s *AccountService) Account(ctx context.Context, userID string) (domain.Account, error) {
	if userID == "" {
		return domain.Account{}, domain.ErrUnauthenticated
	}
	return s.repo.FindAccountByID(ctx, userID)
}

// UpsertAccount ingests one dataset record. Missing referral codes are
// derived from the ID and a zero total income defaults to roi + level income.
func (s *AccountService) UpsertAccount(ctx context.Context, input AccountInput) error {
	if input.ID == "" {
		return fmt.Errorf("account ID is required")
	}

	now := s.nowFn().UTC()
	createdAt := now
	updatedAt := now
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}
	if input.UpdatedAt != nil {
		updatedAt = input.UpdatedAt.UTC()
	}

	code := normalizeReferralCode(input.ReferralCode)
	if code == "" {
		code = s.codes.Generate(input.ID, 0)
	}
	total := input.TotalIncome
	if total == 0 {
		total = input.ROIIncome + input.LevelIncome
	}

	return s.repo.UpsertAccount(ctx, domain.Account{
		ID:           input.ID,
		Name:         sanitizeString(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: input.PasswordHash,
		ReferralCode: code,
		ReferrerID:   input.ReferrerID,
		ROIIncome:    input.ROIIncome,
		LevelIncome:  input.LevelIncome,
		TotalIncome:  total,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	})
}

func (s *AccountService) uniqueCode(ctx context.Context, userID string) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.codes.Generate(userID, attempt)
		_, err := s.repo.FindAccountByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: could not allocate a referral code", domain.ErrConflict)
}

func (s *AccountService) open(acct domain.Account) (domain.Session, error) {
	if s.tokens == nil {
		return domain.Session{}, errors.New("token issuer is not configured")
	}
	token, expires, err := s.tokens.Issue(acct.ID, acct.Email)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		Token:        token,
		ExpiresAt:    expires,
		User:         acct.ReferralUser(),
		ReferralCode: acct.ReferralCode,
	}, nil
}
