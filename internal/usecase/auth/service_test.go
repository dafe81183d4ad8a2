package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"job-board/internal/domain/user"
	"job-board/internal/infrastructure/mailer"
	"job-board/internal/pkg/jwt"
	"job-board/internal/repository/memory"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	mu  sync.Mutex
	got []mailer.Message
}

func (o *outbox) Send(m mailer.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, m)
}

func (o *outbox) messages() []mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mailer.Message(nil), o.got...)
}

type fixture struct {
	svc   *Service
	store *memory.Store
	mail  *outbox
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	mail := &outbox{}
	svc := NewService(
		store.Users(),
		store.Tokens(),
		jwt.NewHMACService("test-secret", "", time.Hour),
		mail,
		Config{VerificationTTL: time.Hour, PublicURL: "http://localhost:8080"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return fixture{svc: svc, store: store, mail: mail}
}

func validSignup() SignupInput {
	return SignupInput{FullName: "Jane Doe", Email: "Jane@Example.com", Password: "Str0ng!Pass", Role: "applicant"}
}

func TestSignup_WeakPasswordRejected(t *testing.T) {
	f := newFixture(t)
	in := validSignup()
	in.Password = "abc"

	_, err := f.svc.Signup(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	require.Contains(t, verrs, "password")
	msg := verrs["password"].Error()
	assert.Contains(t, msg, "8 characters")
	assert.Contains(t, msg, "uppercase")
	assert.Contains(t, msg, "digit")
	assert.Contains(t, msg, "special")
	assert.Empty(t, f.mail.messages())
}

func TestSignup_StrongPasswordSucceeds(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, user.RoleApplicant, u.Role)
	assert.False(t, u.IsVerified)
	assert.Empty(t, u.PasswordHash)

	tokens := f.store.TokensFor(u.ID)
	require.Len(t, tokens, 1)

	msgs := f.mail.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Verify your email", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, tokens[0].Token)
}

type flakyUsers struct {
	*memory.Users
	fail error
}

func (u *flakyUsers) CreateWithToken(ctx context.Context, usr user.User, t user.VerificationToken) error {
	if u.fail != nil {
		return u.fail
	}
	return u.Users.CreateWithToken(ctx, usr, t)
}

func TestSignup_FailedWriteLeavesNoAccount(t *testing.T) {
	store := memory.NewStore()
	mail := &outbox{}
	users := &flakyUsers{Users: store.Users(), fail: errors.New("connection reset")}
	svc := NewService(
		users,
		store.Tokens(),
		jwt.NewHMACService("test-secret", "", time.Hour),
		mail,
		Config{VerificationTTL: time.Hour, PublicURL: "http://localhost:8080"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, mail.messages())
	_, err = store.Users().GetByEmail(ctx, "jane@example.com")
	require.ErrorIs(t, err, user.ErrNotFound)

	users.fail = nil
	u, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Len(t, store.TokensFor(u.ID), 1)
	assert.Len(t, mail.messages(), 1)
}

func TestSignup_FieldRules(t *testing.T) {
	cases := map[string]func(*SignupInput){
		"full_name": func(in *SignupInput) { in.FullName = "Jane" },
		"email":     func(in *SignupInput) { in.Email = "not-an-email" },
		"role":      func(in *SignupInput) { in.Role = "admin" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t)
			in := validSignup()
			mutate(&in)

			_, err := f.svc.Signup(context.Background(), in)
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, field)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.Email = "JANE@example.com"
	_, err = f.svc.Signup(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerifyEmail_Verifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	tok := f.store.TokensFor(u.ID)[0].Token

	v, err := f.svc.VerifyEmail(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, user.OutcomeVerified, v.Outcome)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Empty(t, f.store.TokensFor(u.ID))

	_, err = f.svc.VerifyEmail(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestVerifyEmail_ExpiredIssuesExactlyOneReplacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	require.NoError(t, f.store.Tokens().DeleteByUser(ctx, u.ID))

	expired := user.NewVerificationToken(u.ID, time.Now().Add(-3*time.Hour), time.Hour)
	f.store.PutToken(expired)

	v, err := f.svc.VerifyEmail(ctx, expired.Token)
	require.NoError(t, err)
	assert.Equal(t, user.OutcomeExpired, v.Outcome)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)

	left := f.store.TokensFor(u.ID)
	require.Len(t, left, 1)
	assert.NotEqual(t, expired.Token, left[0].Token)

	msgs := f.mail.messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, "New verification link", last.Subject)
	assert.Contains(t, last.HTML, left[0].Token)

	_, err = f.svc.VerifyEmail(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestVerifyEmail_AlreadyVerifiedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	first := f.store.TokensFor(u.ID)[0].Token
	require.NoError(t, f.store.Tokens().Create(ctx, user.NewVerificationToken(u.ID, time.Now(), time.Hour)))
	var second string
	for _, tk := range f.store.TokensFor(u.ID) {
		if tk.Token != first {
			second = tk.Token
		}
	}

	_, err = f.svc.VerifyEmail(ctx, first)
	require.NoError(t, err)
	before, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)

	v, err := f.svc.VerifyEmail(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, user.OutcomeAlreadyVerified, v.Outcome)

	after, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	old := f.store.TokensFor(u.ID)[0].Token

	require.NoError(t, f.svc.ResendVerification(ctx, "jane@example.com"))
	left := f.store.TokensFor(u.ID)
	require.Len(t, left, 1)
	assert.NotEqual(t, old, left[0].Token)
	assert.Len(t, f.mail.messages(), 2)

	require.NoError(t, f.svc.ResendVerification(ctx, "nobody@example.com"))
	assert.Len(t, f.mail.messages(), 2)

	err = f.svc.ResendVerification(ctx, "bogus")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Str0ng!Pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := f.svc.Login(ctx, LoginInput{Email: " JANE@example.com ", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, 2, strings.Count(res.AccessToken, "."))

	got, err := f.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.svc.Authenticate(ctx, res.AccessToken+"x")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
