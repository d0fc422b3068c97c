package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"quill-server-go/internal/domain/auth"
	"quill-server-go/internal/domain/auth/model"
	"quill-server-go/internal/domain/auth/session"
	ptesting "quill-server-go/internal/platform/testing"
)

type stubSource struct {
	principals map[uint]*model.Principal
	err        error
	panics     bool
}

func (s *stubSource) PrincipalByID(_ context.Context, id uint) (*model.Principal, error) {
	if s.panics {
		panic("principal source exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.principals[id], nil
}

type gateFixture struct {
	authority *auth.Authority
	source    *stubSource
	engine    *gin.Engine
}

func newGateFixture(t *testing.T, publicPaths []string) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemory(session.Config{TTL: time.Hour})
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	logger := ptesting.SetupTestLogger(t)
	authority, err := auth.NewAuthority(auth.Options{
		Secret:        "gate-test-secret",
		TokenLifetime: time.Hour,
		Store:         store,
		Logger:        logger,
	})
	ptesting.AssertNoError(t, err)

	source := &stubSource{principals: map[uint]*model.Principal{}}
	gate, err := NewGate(authority, source, publicPaths, logger)
	ptesting.AssertNoError(t, err)

	engine := gin.New()
	engine.Use(gate.Handler())
	engine.GET("/api/posts", probeHandler)
	engine.GET("/api/me", RequireIdentity(), probeHandler)
	engine.GET("/api/admin", RequireRole(model.RoleAdmin), probeHandler)

	return &gateFixture{authority: authority, source: source, engine: engine}
}

// probeHandler reports whether the gate established an identity.
func probeHandler(c *gin.Context) {
	if principal, ok := CurrentPrincipal(c); ok {
		c.JSON(http.StatusOK, gin.H{"email": principal.Email})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": ""})
}

func (f *gateFixture) get(path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *gateFixture) addPrincipal(t *testing.T, p model.Principal) string {
	t.Helper()
	f.source.principals[p.ID] = &p
	token, err := f.authority.Issue(context.Background(), p)
	ptesting.AssertNoError(t, err)
	return token
}

func TestGatePublicPathBypassesHeaderInspection(t *testing.T) {
	f := newGateFixture(t, []string{"/api/posts"})

	// Garbage header on a public path must not cost a validation and
	// must never fail.
	rec := f.get("/api/posts", "Bearer utter-garbage")
	ptesting.AssertEqual(t, http.StatusOK, rec.Code)
}

func TestGateGlobPatterns(t *testing.T) {
	tests := []struct {
		path   string
		public bool
	}{
		{"/api/posts/hello", true},
		{"/api/posts/hello/comments", false},
		{"/api/subscribers/confirm", true},
		{"/api/subscribers/a/b/c", true},
		{"/api/posts", false},
	}

	logger := ptesting.SetupTestLogger(t)
	store := session.NewMemory(session.Config{})
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	authority, err := auth.NewAuthority(auth.Options{
		Secret: "s", Store: store, Logger: logger,
	})
	ptesting.AssertNoError(t, err)
	g, err := NewGate(authority, &stubSource{}, []string{"/api/posts/*", "/api/subscribers/**"}, logger)
	ptesting.AssertNoError(t, err)

	for _, tt := range tests {
		if got := g.IsPublic(tt.path); got != tt.public {
			t.Errorf("IsPublic(%q) = %v, want %v", tt.path, got, tt.public)
		}
	}
}

func TestGateMissingHeaderIsNotARejection(t *testing.T) {
	f := newGateFixture(t, nil)

	rec := f.get("/api/posts", "")
	ptesting.AssertEqual(t, http.StatusOK, rec.Code)
	if body := rec.Body.String(); body != `{"email":""}` {
		t.Errorf("expected anonymous probe, got %s", body)
	}

	// Downstream authorization is what rejects protected operations.
	rec = f.get("/api/me", "")
	ptesting.AssertEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestGateWrongSchemePassesWithoutIdentity(t *testing.T) {
	f := newGateFixture(t, nil)

	rec := f.get("/api/posts", "Basic dXNlcjpwYXNz")
	ptesting.AssertEqual(t, http.StatusOK, rec.Code)
	if body := rec.Body.String(); body != `{"email":""}` {
		t.Errorf("expected anonymous probe, got %s", body)
	}
}

func TestGateEstablishesIdentityForValidToken(t *testing.T) {
	f := newGateFixture(t, nil)
	token := f.addPrincipal(t, model.Principal{
		ID: 1, Email: "a@x.com", Role: model.RoleAuthor, Enabled: true,
	})

	rec := f.get("/api/me", "Bearer "+token)
	ptesting.AssertEqual(t, http.StatusOK, rec.Code)
	if body := rec.Body.String(); body != `{"email":"a@x.com"}` {
		t.Errorf("unexpected probe body: %s", body)
	}
}

func TestGateRejectsSupersededToken(t *testing.T) {
	f := newGateFixture(t, nil)
	principal := model.Principal{ID: 1, Email: "a@x.com", Role: model.RoleAuthor, Enabled: true}
	t1 := f.addPrincipal(t, principal)

	rec := f.get("/api/me", "Bearer "+t1)
	ptesting.AssertEqual(t, http.StatusOK, rec.Code)

	// Login elsewhere: a second issue supersedes the first token.
	time.Sleep(1100 * time.Millisecond)
	_, err := f.authority.Issue(context.Background(), principal)
	ptesting.AssertNoError(t, err)

	rec = f.get("/api/me", "Bearer "+t1)
	ptesting.AssertEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestGateIgnoresDisabledAccounts(t *testing.T) {
	f := newGateFixture(t, nil)
	token := f.addPrincipal(t, model.Principal{
		ID: 1, Email: "a@x.com", Role: model.RoleAuthor, Enabled: false,
	})

	rec := f.get("/api/me", "Bearer "+token)
	ptesting.AssertEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestGateLookupFailureIsTerminal401(t *testing.T) {
	f := newGateFixture(t, nil)
	token := f.addPrincipal(t, model.Principal{
		ID: 1, Email: "a@x.com", Role: model.RoleAuthor, Enabled: true,
	})
	f.source.err = errors.New("database on fire")

	rec := f.get("/api/posts", "Bearer "+token)
	ptesting.AssertEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestGatePanicIsTerminal401(t *testing.T) {
	f := newGateFixture(t, nil)
	token := f.addPrincipal(t, model.Principal{
		ID: 1, Email: "a@x.com", Role: model.RoleAuthor, Enabled: true,
	})
	f.source.panics = true

	rec := f.get("/api/posts", "Bearer "+token)
	ptesting.AssertEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleSplits401And403(t *testing.T) {
	f := newGateFixture(t, nil)
	authorToken := f.addPrincipal(t, model.Principal{
		ID: 1, Email: "author@x.com", Role: model.RoleAuthor, Enabled: true,
	})
	adminToken := f.addPrincipal(t, model.Principal{
		ID: 2, Email: "admin@x.com", Role: model.RoleAdmin, Enabled: true,
	})

	rec := f.get("/api/admin", "")
	ptesting.AssertEqual(t, http.StatusUnauthorized, rec.Code)

	rec = f.get("/api/admin", "Bearer "+authorToken)
	ptesting.AssertEqual(t, http.StatusForbidden, rec.Code)

	rec = f.get("/api/admin", "Bearer "+adminToken)
	ptesting.AssertEqual(t, http.StatusOK, rec.Code)
}

func TestNewGateRejectsBadPattern(t *testing.T) {
	logger := ptesting.SetupTestLogger(t)
	store := session.NewMemory(session.Config{})
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	authority, err := auth.NewAuthority(auth.Options{Secret: "s", Store: store, Logger: logger})
	ptesting.AssertNoError(t, err)

	if _, err := NewGate(authority, &stubSource{}, []string{"/api/[bad"}, logger); err == nil {
		t.Fatal("expected error for malformed glob pattern")
	}
}
