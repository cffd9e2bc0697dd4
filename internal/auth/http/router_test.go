package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	authhttp "github.com/devcrm/auth-service/internal/auth/http"
	"github.com/devcrm/auth-service/internal/auth/mail"
	"github.com/devcrm/auth-service/internal/auth/onetime"
	"github.com/devcrm/auth-service/internal/auth/queue"
	"github.com/devcrm/auth-service/internal/auth/rate"
	"github.com/devcrm/auth-service/internal/auth/service"
	"github.com/devcrm/auth-service/internal/auth/session"
	"github.com/devcrm/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/devcrm/auth-service/pkg/cryptox"
	"github.com/devcrm/auth-service/pkg/jwtx"
	"github.com/devcrm/auth-service/pkg/slogx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "authhttp-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testEnv struct {
	server *httptest.Server
	queue  *queue.Queue
	svc    *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec(jwtx.Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		Issuer:        "devcrm",
		Audience:      "devcrm-app",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := &queue.Queue{Redis: client, Name: queue.EmailQueue}
	svc := &service.AuthService{
		Store:    st,
		Codec:    codec,
		Sessions: &session.Store{Redis: client, TTL: 7 * 24 * time.Hour},
		OneTime: &onetime.Store{
			Redis:          client,
			Codec:          codec,
			EmailVerifyTTL: onetime.DefaultEmailVerifyTTL,
			ResetPwdTTL:    onetime.DefaultResetPwdTTL,
		},
		Mail:        q,
		FrontendURL: "https://app.example.com",
		AccessTTL:   15 * time.Minute,
	}

	router := authhttp.NewRouter(codec, "test", st, client, slogx.New(slogx.Config{Service: "auth", Level: "error"}))
	router.AuthService = svc
	router.Limiter = &rate.Limiter{Redis: client}
	router.RateLimitEnabled = true
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, queue: q, svc: svc}
}

func (e *testEnv) post(t *testing.T, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

// registerAndVerify registers through the API and verifies via the queued token.
func (e *testEnv) registerAndVerify(t *testing.T, email string) {
	t.Helper()

	resp, body := e.post(t, "/v1/auth/register", map[string]string{
		"email": email, "name": "Alice", "password": "secret123", "orgName": "Acme",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "register: %v", body)

	job, err := e.queue.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	var payload mail.VerificationEmailPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))

	resp, body = e.post(t, "/v1/auth/verify-email", map[string]string{"token": payload.Token}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "verify: %v", body)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	env.registerAndVerify(t, "a@x.com")

	resp, body := env.post(t, "/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])
	require.Equal(t, true, body["emailVerified"])
}

func TestLoginBeforeVerificationReturns401(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.post(t, "/v1/auth/register", map[string]string{
		"email": "a@x.com", "name": "Alice", "password": "secret123", "orgName": "Acme",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.post(t, "/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	errObj := body["error"].(map[string]any)
	require.Equal(t, "UNAUTHORIZED", errObj["code"])
	require.Equal(t, "Email not verified", errObj["message"])
	require.NotEmpty(t, errObj["requestId"])
}

func TestRegisterDuplicateReturns409(t *testing.T) {
	env := newTestEnv(t)

	env.registerAndVerify(t, "a@x.com")

	resp, body := env.post(t, "/v1/auth/register", map[string]string{
		"email": "a@x.com", "name": "Bob", "password": "secret456", "orgName": "Borg",
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	require.Equal(t, "CONFLICT", errObj["code"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/v1/auth/register", map[string]string{
		"email": "a@x.com", "name": "Alice",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	require.Equal(t, "BAD_REQUEST", errObj["code"])
	require.NotNil(t, errObj["details"])
}

func TestVerifyEmailTwiceReturns400(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.post(t, "/v1/auth/register", map[string]string{
		"email": "a@x.com", "name": "Alice", "password": "secret123", "orgName": "Acme",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	job, err := env.queue.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	var payload mail.VerificationEmailPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))

	resp, _ = env.post(t, "/v1/auth/verify-email", map[string]string{"token": payload.Token}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.post(t, "/v1/auth/verify-email", map[string]string{"token": payload.Token}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshReuseReturns401(t *testing.T) {
	env := newTestEnv(t)

	env.registerAndVerify(t, "a@x.com")

	_, body := env.post(t, "/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret123",
	}, nil)
	refresh1 := body["refreshToken"].(string)

	resp, body := env.post(t, "/v1/auth/refresh", map[string]string{"refreshToken": refresh1}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["refreshToken"])

	resp, body = env.post(t, "/v1/auth/refresh", map[string]string{"refreshToken": refresh1}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	require.Equal(t, "Invalid session", errObj["message"])
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t)

	// 10 attempts from one IP pass the IP gate; each also consumes email
	// budget, so vary the email to isolate the IP dimension.
	for i := 0; i < 10; i++ {
		resp, _ := env.post(t, "/v1/auth/login", map[string]any{
			"email":    string(rune('a'+i)) + "@x.com",
			"password": "whatever1",
		}, map[string]string{"X-Forwarded-For": "1.2.3.4"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// The 11th attempt from the same IP is denied regardless of credentials.
	resp, body := env.post(t, "/v1/auth/login", map[string]any{
		"email":    "k@x.com",
		"password": "whatever1",
	}, map[string]string{"X-Forwarded-For": "1.2.3.4"})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))

	errObj := body["error"].(map[string]any)
	require.Equal(t, "TOO_MANY_REQUESTS", errObj["code"])

	// A different IP is unaffected.
	resp, _ = env.post(t, "/v1/auth/login", map[string]any{
		"email":    "k@x.com",
		"password": "whatever1",
	}, map[string]string{"X-Forwarded-For": "5.6.7.8"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginEmailRateLimit(t *testing.T) {
	env := newTestEnv(t)

	// 5 attempts against one mailbox from different IPs exhaust the email rule.
	for i := 0; i < 5; i++ {
		resp, _ := env.post(t, "/v1/auth/login", map[string]any{
			"email":    "victim@x.com",
			"password": "whatever1",
		}, map[string]string{"X-Forwarded-For": "10.0.0." + string(rune('1'+i))})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, _ := env.post(t, "/v1/auth/login", map[string]any{
		"email":    "victim@x.com",
		"password": "whatever1",
	}, map[string]string{"X-Forwarded-For": "10.0.0.9"})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestForgotPasswordIdenticalResponses(t *testing.T) {
	env := newTestEnv(t)

	env.registerAndVerify(t, "real@x.com")

	resp1, body1 := env.post(t, "/v1/auth/forgot-password", map[string]string{"email": "nouser@x.com"}, nil)
	resp2, body2 := env.post(t, "/v1/auth/forgot-password", map[string]string{"email": "real@x.com"}, nil)

	require.Equal(t, http.StatusOK, resp1.StatusCode)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, body1, body2)
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.registerAndVerify(t, "a@x.com")
	_, body := env.post(t, "/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret123",
	}, nil)
	access := body["accessToken"].(string)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/v1/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	user := me["user"].(map[string]any)
	require.Equal(t, "a@x.com", user["email"])
	require.Equal(t, true, user["emailVerified"])
	org := me["org"].(map[string]any)
	require.Equal(t, "Acme", org["name"])
	require.Equal(t, "FREE", org["plan"])
}

func TestMeWithoutTokenReturns401(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/v1/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/livez")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = env.server.Client().Get(env.server.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
