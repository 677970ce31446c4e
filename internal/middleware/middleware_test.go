package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/config"
	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/utils"
)

func newTokens() *utils.TokenService {
	return utils.NewTokenService("access-secret", "refresh-secret")
}

// reached is a terminal handler that records it ran and echoes the identity.
func reached(ran *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*ran = true
		p, _ := Identity(c)
		return c.JSON(http.StatusOK, p)
	}
}

func serve(t *testing.T, h echo.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if body.StatusCode != rec.Code {
		t.Errorf("statusCode field = %d, HTTP status = %d", body.StatusCode, rec.Code)
	}
	return body.Message
}

func TestJWTAuth(t *testing.T) {
	tokens := newTokens()
	valid, err := tokens.IssueAccessToken(utils.AuthPayload{UserID: "u1", Email: "a@b.c", Role: model.RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := tokens.IssueRefreshToken(utils.AuthPayload{UserID: "u1", Email: "a@b.c", Role: model.RoleUser})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"no header", "", http.StatusUnauthorized, "Authentication required"},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "Authentication required"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Authentication required"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid or expired token"},
		{"refresh token as access", "Bearer " + refresh, http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ran bool
			rec := serve(t, JWTAuth(tokens)(reached(&ran)), tc.header)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status != http.StatusOK {
				if ran {
					t.Error("downstream handler ran on rejected request")
				}
				if got := message(t, rec); got != tc.message {
					t.Errorf("message = %q, want %q", got, tc.message)
				}
				return
			}
			var p utils.AuthPayload
			if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
				t.Fatal(err)
			}
			if p.UserID != "u1" || p.Role != model.RoleUser || p.Email != "a@b.c" {
				t.Errorf("identity = %+v", p)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := newTokens()
	tok := func(role string) string {
		s, err := tokens.IssueAccessToken(utils.AuthPayload{UserID: "u1", Email: "a@b.c", Role: role})
		if err != nil {
			t.Fatal(err)
		}
		return "Bearer " + s
	}
	chain := func(ran *bool) echo.HandlerFunc {
		return JWTAuth(tokens)(RequireAdmin()(reached(ran)))
	}

	var ran bool
	rec := serve(t, chain(&ran), tok(model.RoleUser))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("USER status = %d, want 403", rec.Code)
	}
	if ran {
		t.Error("handler ran for USER")
	}
	if got := message(t, rec); got != "Admin access required" {
		t.Errorf("message = %q", got)
	}

	ran = false
	rec = serve(t, chain(&ran), tok(model.RoleAdmin))
	if rec.Code != http.StatusOK || !ran {
		t.Errorf("ADMIN status = %d ran = %v, want 200 and handler run", rec.Code, ran)
	}
}

func TestRequireRolePanicsWithoutIdentity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RequireRole without JWTAuth did not panic")
		}
	}()
	var ran bool
	serve(t, RequireAdmin()(reached(&ran)), "")
}

func TestRateLimiterPassThroughWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1}
	mw := NewTokenBucket(cfg, nil, zap.NewNop())
	for i := 0; i < 5; i++ {
		var ran bool
		rec := serve(t, mw(reached(&ran)), "")
		if rec.Code != http.StatusOK || !ran {
			t.Fatalf("request %d: status %d ran %v", i, rec.Code, ran)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "" {
			t.Error("rate limit headers set while limiter disabled")
		}
	}
}

func TestCachePassThroughWithoutRedis(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: true, TTL: time.Minute}, nil, zap.NewNop())
	var ran bool
	rec := serve(t, mw(reached(&ran)), "")
	if !ran || rec.Header().Get("X-Cache") != "" {
		t.Errorf("ran = %v X-Cache = %q, want handler run and no cache header", ran, rec.Header().Get("X-Cache"))
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")

	cases := map[string]string{
		"ip":       "rl:ip:10.0.0.7",
		"user":     "rl:user:anon",
		"ip_route": "rl:ip:10.0.0.7:route:POST /api/auth/login",
		"":         "rl:ip:10.0.0.7:user:anon:route:POST /api/auth/login",
	}
	for strategy, want := range cases {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		if got != want {
			t.Errorf("strategy %q: key = %q, want %q", strategy, got, want)
		}
	}

	SetIdentity(c, utils.AuthPayload{UserID: "u9", Role: model.RoleUser})
	if got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c); got != "rl:user:u9" {
		t.Errorf("authenticated user key = %q", got)
	}
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"totalLeads":3}`))
	if err != nil {
		t.Fatal(err)
	}
	status, gotHdr, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || gotHdr.Get("Content-Type") != "application/json" || string(body) != `{"totalLeads":3}` {
		t.Errorf("decode = %d %v %q %v", status, gotHdr, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Error("truncated payload decoded")
	}
}

func TestCacheKeyIgnoresCaller(t *testing.T) {
	e := echo.New()
	key := func(target, auth string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set(echo.HeaderAuthorization, auth)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/api/dashboard/stats")
		return cacheKey("crm:cache", c)
	}
	a := key("/api/dashboard/stats", "Bearer one")
	if b := key("/api/dashboard/stats", "Bearer two"); a != b {
		t.Errorf("key differs by caller: %s vs %s", a, b)
	}
	if b := key("/api/dashboard/stats?month=3", "Bearer one"); a == b {
		t.Errorf("query string not part of key")
	}
}
