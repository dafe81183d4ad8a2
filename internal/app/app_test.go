package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"job-board/internal/config"
	"job-board/internal/domain/user"
	"job-board/internal/infrastructure/cache"
	"job-board/internal/infrastructure/mailer"
	"job-board/internal/infrastructure/storage"
	"job-board/internal/repository/memory"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Str0ng!Pass"

type outbox struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (o *outbox) Send(_ context.Context, m mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, m)
	return nil
}

func (o *outbox) find(to, subjectPrefix string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range o.msgs {
		if m.To == to && strings.HasPrefix(m.Subject, subjectPrefix) {
			return true
		}
	}
	return false
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Object     json.RawMessage `json:"object"`
	Errors     []string        `json:"errors"`
	TotalSize  int             `json:"totalSize"`
	PageNumber int             `json:"pageNumber"`
}

type testEnv struct {
	t     *testing.T
	app   *App
	store *memory.Store
	mail  *outbox
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		App:          config.AppConfig{AppName: "job-board-test", PublicURL: "http://localhost:8080"},
		JWT:          config.JWTConfig{Secret: "test-secret", Issuer: "job-board", AccessExpiresIn: time.Hour},
		Verification: config.VerificationConfig{TokenExpiresIn: time.Hour},
		Notification: config.NotificationConfig{Workers: 1, QueueSize: 32},
	}

	dir := t.TempDir()
	local, err := storage.NewLocal(dir, cfg.App.PublicURL+"/"+storage.LocalRoute)
	require.NoError(t, err)

	store := memory.NewStore()
	mail := &outbox{}
	c := Assemble(cfg, logger, Dependencies{
		Repos: Repositories{
			Users:        store.Users(),
			Tokens:       store.Tokens(),
			Jobs:         store.Jobs(),
			Applications: store.Applications(),
		},
		Cache:     cache.NewRedis(context.Background(), config.RedisConfig{}, logger),
		Store:     local,
		Transport: mail,
	})
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})

	return &testEnv{t: t, app: New(c), store: store, mail: mail}
}

func (e *testEnv) do(req *http.Request) (int, envelope) {
	e.t.Helper()
	resp, err := e.app.Fiber.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *testEnv) json(method, path, token string, body any) (int, envelope) {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

func (e *testEnv) apply(token, jobID, contentType string, data []byte) (int, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(e.t, w.WriteField("cover_letter", "I would love to join."))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="resume"; filename="resume"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(e.t, err)
	_, err = part.Write(data)
	require.NoError(e.t, err)
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/applications/jobs/"+jobID+"/apply", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return e.do(req)
}

func (e *testEnv) signup(fullName, email, role string) string {
	e.t.Helper()
	status, env := e.json(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": fullName,
		"email":     email,
		"password":  strongPassword,
		"role":      role,
	})
	require.Equal(e.t, fiber.StatusCreated, status, env.Message)

	var obj struct {
		UserID string `json:"user_id"`
	}
	require.NoError(e.t, json.Unmarshal(env.Object, &obj))
	return obj.UserID
}

func (e *testEnv) login(email string) string {
	e.t.Helper()
	status, env := e.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": strongPassword})
	require.Equal(e.t, fiber.StatusOK, status, env.Message)

	var obj struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(e.t, json.Unmarshal(env.Object, &obj))
	require.Equal(e.t, "bearer", obj.TokenType)
	return obj.AccessToken
}

func (e *testEnv) account(fullName, email, role string) string {
	e.signup(fullName, email, role)
	return e.login(email)
}

func (e *testEnv) createJob(token string, body map[string]any) string {
	e.t.Helper()
	status, env := e.json(http.MethodPost, "/api/jobs/", token, body)
	require.Equal(e.t, fiber.StatusCreated, status, env.Message)

	var obj struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(e.t, json.Unmarshal(env.Object, &obj))
	return obj.ID
}

func jobBody(title, status string) map[string]any {
	b := map[string]any{
		"title":       title,
		"description": "Build and run the services behind our platform.",
		"location":    "Remote",
	}
	if status != "" {
		b["status"] = status
	}
	return b
}

var pdf = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestSignup_PasswordStrength(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.json(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"password":  "abc",
		"role":      "applicant",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)
	require.NotEmpty(t, env.Errors)
	assert.True(t, strings.HasPrefix(env.Errors[0], "password:"), env.Errors)

	e.signup("Jane Doe", "jane@example.com", "applicant")
	assert.Eventually(t, func() bool { return e.mail.find("jane@example.com", "Verify your email") }, 2*time.Second, 10*time.Millisecond)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.signup("Jane Doe", "jane@example.com", "applicant")

	status, env := e.json(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "Jane Other",
		"email":     "JANE@example.com",
		"password":  strongPassword,
		"role":      "applicant",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Email already exists", env.Message)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.signup("Jane Doe", "jane@example.com", "applicant")

	status, env := e.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@example.com", "password": "Wr0ng!Pass"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Message)

	status, env = e.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": strongPassword})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Message)
}

func TestVerifyEmail_Flow(t *testing.T) {
	e := newTestEnv(t)
	e.signup("Jane Doe", "jane@example.com", "applicant")

	u, err := e.store.Users().GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	issued := e.store.TokensFor(u.ID)
	require.Len(t, issued, 1)

	e.store.PutToken(user.VerificationToken{
		Token:     "expired-token",
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	})

	status, env := e.json(http.MethodGet, "/api/auth/verify-email?token=expired-token", "", nil)
	assert.Equal(t, fiber.StatusGone, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Token expired. A new verification email was sent.", env.Message)
	assert.Eventually(t, func() bool { return e.mail.find("jane@example.com", "New verification link") }, 2*time.Second, 10*time.Millisecond)

	status, env = e.json(http.MethodGet, "/api/auth/verify-email?token=expired-token", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Token invalid or malformed", env.Message)

	tokens := e.store.TokensFor(u.ID)
	require.Len(t, tokens, 2)

	status, env = e.json(http.MethodGet, "/api/auth/verify-email?token="+tokens[0].Token, "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Email verified successfully", env.Message)

	status, env = e.json(http.MethodGet, "/api/auth/verify-email?token="+tokens[1].Token, "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Email already verified", env.Message)
}

func TestProtectedRoutes_RequireBearer(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.json(http.MethodGet, "/api/jobs/", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = e.json(http.MethodGet, "/api/jobs/", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJobs_OwnershipAndTransitions(t *testing.T) {
	e := newTestEnv(t)
	companyA := e.account("Acme Hiring", "a@acme.example", "company")
	companyB := e.account("Beta Corp", "b@beta.example", "company")
	applicant := e.account("Jane Doe", "jane@example.com", "applicant")

	status, _ := e.json(http.MethodPost, "/api/jobs/", applicant, jobBody("Backend Engineer", ""))
	assert.Equal(t, fiber.StatusForbidden, status)

	jobID := e.createJob(companyA, jobBody("Backend Engineer", ""))

	status, env := e.json(http.MethodPut, "/api/jobs/"+jobID, companyB, map[string]any{"status": "Open"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Unauthorized access", env.Message)

	status, _ = e.json(http.MethodDelete, "/api/jobs/"+jobID, companyB, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = e.json(http.MethodPut, "/api/jobs/"+jobID, companyA, map[string]any{"status": "Open"})
	assert.Equal(t, fiber.StatusOK, status)

	status, env = e.json(http.MethodPut, "/api/jobs/"+jobID, companyA, map[string]any{"status": "Draft"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid status transition", env.Message)

	status, env = e.json(http.MethodGet, "/api/jobs/"+jobID, applicant, nil)
	require.Equal(t, fiber.StatusOK, status)
	var got struct {
		Status      string `json:"status"`
		CompanyName string `json:"company_name"`
	}
	require.NoError(t, json.Unmarshal(env.Object, &got))
	assert.Equal(t, "Open", got.Status)
	assert.Equal(t, "Acme Hiring", got.CompanyName)

	status, env = e.json(http.MethodGet, "/api/jobs/?company_name=acme&page=1&size=5", applicant, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, env.TotalSize)
	assert.Equal(t, 1, env.PageNumber)

	status, _ = e.json(http.MethodGet, "/api/jobs/not-a-uuid", applicant, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = e.json(http.MethodDelete, "/api/jobs/"+jobID, companyA, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, env = e.json(http.MethodGet, "/api/jobs/"+jobID, applicant, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Job not found", env.Message)
}

func TestApplications_ApplyReviewAndNotify(t *testing.T) {
	e := newTestEnv(t)
	companyA := e.account("Acme Hiring", "a@acme.example", "company")
	companyB := e.account("Beta Corp", "b@beta.example", "company")
	applicant := e.account("Jane Doe", "jane@example.com", "applicant")

	jobID := e.createJob(companyA, jobBody("Backend Engineer", "Open"))

	status, env := e.apply(applicant, jobID, "text/plain", []byte("plain text resume"))
	assert.Equal(t, fiber.StatusUnsupportedMediaType, status)
	assert.Equal(t, "Unsupported file format", env.Message)

	status, env = e.apply(applicant, jobID, "application/pdf", pdf)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.Equal(t, "Applied successfully", env.Message)
	var applied struct {
		ApplicationID string `json:"application_id"`
	}
	require.NoError(t, json.Unmarshal(env.Object, &applied))
	assert.Eventually(t, func() bool { return e.mail.find("a@acme.example", "New applicant for Backend Engineer") }, 2*time.Second, 10*time.Millisecond)

	status, env = e.apply(applicant, jobID, "application/pdf", pdf)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Already applied", env.Message)
	assert.Equal(t, 1, e.store.ApplicationCount())

	status, _ = e.apply(companyA, jobID, "application/pdf", pdf)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = e.json(http.MethodGet, "/api/applications/jobs/"+jobID, companyB, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = e.json(http.MethodGet, "/api/applications/jobs/"+jobID, companyA, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, env.TotalSize)

	path := "/api/applications/" + applied.ApplicationID + "/status"
	status, _ = e.json(http.MethodPatch, path, companyB, map[string]string{"new_status": "Hired"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = e.json(http.MethodPatch, path, companyA, map[string]string{"new_status": "Bogus"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid status", env.Message)

	status, env = e.json(http.MethodPatch, path, companyA, map[string]string{"new_status": "Hired"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Eventually(t, func() bool {
		return e.mail.find("jane@example.com", "Congratulations! Hired for Backend Engineer")
	}, 2*time.Second, 10*time.Millisecond)

	status, env = e.json(http.MethodGet, "/api/applications/me?app_status=Hired&app_status=Interview", applicant, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, env.TotalSize)

	status, env = e.json(http.MethodGet, "/api/applications/me?app_status=Applied", applicant, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, env.TotalSize)

	status, _ = e.json(http.MethodGet, "/api/applications/me", companyA, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.json(http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.json(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, env.Success)
}
