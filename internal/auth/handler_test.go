package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hr/internal/auth"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
	_ "github.com/odyssey-erp/odyssey-hr/testing"
)

type harness struct {
	router   http.Handler
	sessions *shared.SessionManager
	cookies  []*http.Cookie
}

func newHarness(t *testing.T, api http.Handler) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client := backend.NewClient(srv.URL, time.Second, nil, nil)

	svc := auth.NewService(auth.NewRepository(client), shared.NewTokenSealer("secret"), auth.NewRedirector("https", "odyssey.test", "hr"), nil, nil)
	handler := auth.NewHandler(nil, svc, sessions, csrf, false)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, req.WithContext(ctx))
			require.NoError(t, sessions.Commit(ctx, w, req, sess))
			for k, v := range rec.Header() {
				w.Header()[k] = append(w.Header()[k], v...)
			}
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return &harness{router: r, sessions: sessions}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, httpx.ActionResult) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		h.setCookie(c)
	}
	var out httpx.ActionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func (h *harness) setCookie(c *http.Cookie) {
	for i, existing := range h.cookies {
		if existing.Name == c.Name {
			h.cookies[i] = c
			return
		}
	}
	h.cookies = append(h.cookies, c)
}

func fakeAPI() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct-horse" {
			_, _ = w.Write([]byte(`{"status":false,"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{
			"accessToken":"opaque-token",
			"user":{"id":"u-1","name":"Ops","email":"ops@odyssey.test"},
			"permissions":["masterdata.view"],
			"companies":[{"id":"c-1","name":"Alpha"},{"id":"c-2","name":"Beta"}]}}`))
	})
	mux.HandleFunc("/companies", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer opaque-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"c-1","name":"Alpha"},{"id":"c-2","name":"Beta"}]`))
	})
	return mux
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, fakeAPI())

	rec, _ := h.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, res := h.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "ops@odyssey.test", "password": "correct-horse", "callbackUrl": "/dashboard/foo",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, res.Status)
	data := res.Data.(map[string]any)
	require.Equal(t, "https://hr.odyssey.test/foo", data["redirect"])
	require.NotEmpty(t, data["csrfToken"])

	rec, res = h.do(t, http.MethodGet, "/auth/company", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "c-1", res.Data.(map[string]any)["id"])

	rec, res = h.do(t, http.MethodPost, "/auth/company", map[string]string{"companyId": "c-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Company switched to Beta", res.Message)
	var companyCookie string
	for _, c := range h.cookies {
		if c.Name == auth.CompanyCookie {
			companyCookie = c.Value
		}
	}
	require.Equal(t, "c-2", companyCookie)

	rec, _ = h.do(t, http.MethodPost, "/auth/company", map[string]string{"companyId": "c-404"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, res = h.do(t, http.MethodGet, "/auth/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, res.Data.([]any), 2)

	rec, _ = h.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = h.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, fakeAPI())
	rec, res := h.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "ops@odyssey.test", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, res.Status)
	require.Equal(t, "Invalid email or password", res.Message)
}
