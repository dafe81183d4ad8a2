package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"job-board/internal/domain/user"
	"job-board/internal/notification"
	"job-board/internal/pkg/jwt"
	"job-board/internal/pkg/password"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenNotFound      = errors.New("token invalid or malformed")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type SignupInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

var fullNamePattern = regexp.MustCompile(`^[A-Za-z]+ [A-Za-z]+$`)

func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName,
			validation.Required,
			validation.Length(3, 200),
			validation.Match(fullNamePattern).Error("must be exactly two alphabetic words separated by a space"),
		),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&in.Password, validation.Required, validation.By(strongPassword)),
		validation.Field(&in.Role,
			validation.Required,
			validation.In(string(user.RoleApplicant), string(user.RoleCompany)).Error("must be applicant or company"),
		),
	)
}

func strongPassword(value interface{}) error {
	pw, _ := value.(string)
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '_':
			special = true
		}
	}
	var missing []string
	if len([]rune(pw)) < 8 {
		missing = append(missing, "at least 8 characters")
	}
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if !special {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return errors.New("must contain " + strings.Join(missing, ", "))
	}
	return nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Verification is the outcome of presenting an email verification token.
type Verification struct {
	Outcome user.Outcome
	UserID  uuid.UUID
}

type Config struct {
	VerificationTTL time.Duration
	PublicURL       string
}

type Service struct {
	users    user.Repository
	tokens   user.TokenRepository
	jwt      jwt.Service
	notifier notification.Notifier
	cfg      Config
	logger   *slog.Logger

	now func() time.Time
}

func NewService(users user.Repository, tokens user.TokenRepository, jwtSvc jwt.Service, notifier notification.Notifier, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = time.Hour
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		jwt:      jwtSvc,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (user.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := in.Validate(); err != nil {
		return user.User{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return user.User{}, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := user.User{
		ID:           uuid.New(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         user.Role(in.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	t := user.NewVerificationToken(u.ID, s.now(), s.cfg.VerificationTTL)
	if err := s.users.CreateWithToken(ctx, u, t); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	s.sendVerification(u, t)

	s.logger.Info("user signed up", "user_id", u.ID, "role", u.Role)
	return sanitizeUser(u), nil
}

// IssueEmailVerificationToken persists a fresh token for u and schedules the
// verification email.
func (s *Service) IssueEmailVerificationToken(ctx context.Context, u user.User) error {
	t := user.NewVerificationToken(u.ID, s.now(), s.cfg.VerificationTTL)
	if err := s.tokens.Create(ctx, t); err != nil {
		return fmt.Errorf("create verification token: %w", err)
	}
	s.sendVerification(u, t)
	return nil
}

func (s *Service) sendVerification(u user.User, t user.VerificationToken) {
	s.notifier.Send(notification.Verification(u.Email, u.FullName, t.Token, s.cfg.VerificationTTL, s.cfg.PublicURL))
}

// ResendVerification replaces any outstanding token of an unverified user.
// Unknown and already verified addresses succeed silently.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, validation.Errors{"email": err})
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if u.IsVerified {
		return nil
	}

	if err := s.tokens.DeleteByUser(ctx, u.ID); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return s.IssueEmailVerificationToken(ctx, u)
}

// VerifyEmail consumes a verification token. An expired token is replaced and
// the new one emailed; that case is reported through the outcome, not an
// error.
func (s *Service) VerifyEmail(ctx context.Context, token string) (Verification, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Verification{}, ErrTokenNotFound
	}

	res, err := s.tokens.Consume(ctx, token, s.now().UTC(), s.cfg.VerificationTTL)
	if err != nil {
		if errors.Is(err, user.ErrTokenNotFound) {
			return Verification{}, ErrTokenNotFound
		}
		return Verification{}, fmt.Errorf("consume token: %w", err)
	}

	if res.Outcome == user.OutcomeExpired && res.Replacement != nil {
		s.notifier.Send(notification.VerificationReissued(
			res.User.Email, res.User.FullName, res.Replacement.Token, s.cfg.VerificationTTL, s.cfg.PublicURL,
		))
	}

	s.logger.Info("verification token consumed", "user_id", res.User.ID, "outcome", res.Outcome.String())
	return Verification{Outcome: res.Outcome, UserID: res.User.ID}, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !password.Verify(in.Password, u.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	tok, err := s.jwt.IssueAccessToken(u.ID, string(u.Role))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{AccessToken: tok, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer token to the stored user it names.
func (s *Service) Authenticate(ctx context.Context, bearer string) (user.User, error) {
	claims, err := s.jwt.ValidateAccessToken(bearer)
	if err != nil {
		return user.User{}, ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return sanitizeUser(u), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
