package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/glob"

	"quill-server-go/internal/domain/auth"
	"quill-server-go/internal/domain/auth/model"
)

const principalKey = "principal"

const bearerPrefix = "Bearer "

// Logger provides the minimal logging contract required by the middleware.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// PrincipalSource loads the full account record for a verified
// identity. Read access only.
type PrincipalSource interface {
	PrincipalByID(ctx context.Context, id uint) (*model.Principal, error)
}

// Gate runs once per inbound call, before any business logic, and
// establishes (or deliberately skips) the request identity. It holds
// no per-route role policy; enforcement lives in RequireRole.
type Gate struct {
	authority *auth.Authority
	source    PrincipalSource
	public    []glob.Glob
	logger    Logger
}

// NewGate compiles the public path allow-list and wires the gate.
// Patterns use '/' as separator: '*' matches one segment, '**'
// crosses segments.
func NewGate(authority *auth.Authority, source PrincipalSource, publicPaths []string, logger Logger) (*Gate, error) {
	if authority == nil {
		return nil, fmt.Errorf("gate requires a token authority")
	}
	if source == nil {
		return nil, fmt.Errorf("gate requires a principal source")
	}
	if logger == nil {
		return nil, fmt.Errorf("gate requires a logger")
	}

	public := make([]glob.Glob, 0, len(publicPaths))
	for _, pattern := range publicPaths {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid public path pattern %q: %w", pattern, err)
		}
		public = append(public, compiled)
	}

	return &Gate{
		authority: authority,
		source:    source,
		public:    public,
		logger:    logger,
	}, nil
}

// IsPublic reports whether a path matches the allow-list.
func (g *Gate) IsPublic(path string) bool {
	for _, pattern := range g.public {
		if pattern.Match(path) {
			return true
		}
	}
	return false
}

// Handler returns the gin middleware. Public paths pass through
// before any header inspection. A missing, malformed or invalid
// credential is not itself a rejection: the request proceeds with no
// identity and downstream authorization decides. Only an internal
// failure inside the gate terminates the request, with one generic
// 401 that leaks nothing.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.IsPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		principal, failed := g.resolve(c)
		if failed {
			abortUnauthorized(c)
			return
		}
		if principal != nil {
			c.Set(principalKey, *principal)
			c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), *principal))
		}
		c.Next()
	}
}

// resolve attempts to establish identity from the Authorization
// header. The second return value is true only for internal
// failures, which the caller converts to a terminal 401.
func (g *Gate) resolve(c *gin.Context) (principal *model.Principal, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("[AUTH] gate panic on %s: %v", c.Request.URL.Path, r)
			principal = nil
			failed = true
		}
	}()

	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return nil, false
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if tokenString == "" {
		return nil, false
	}

	ctx := c.Request.Context()
	if !g.authority.Validate(ctx, tokenString) {
		// Invalid is indistinguishable from absent; downstream
		// authorization rejects protected operations.
		return nil, false
	}

	identity, err := g.authority.Identify(tokenString)
	if err != nil {
		g.logger.Warn("[AUTH] identify failed after successful validation: %v", err)
		return nil, true
	}

	account, err := g.source.PrincipalByID(ctx, identity.ID)
	if err != nil {
		g.logger.Error("[AUTH] principal lookup failed for id %d: %v", identity.ID, err)
		return nil, true
	}
	if account == nil || !account.Enabled {
		return nil, false
	}
	return account, false
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "unauthorized",
		"code":    http.StatusUnauthorized,
		"data":    gin.H{},
	})
}

// CurrentPrincipal extracts the identity the gate established for
// this request, if any.
func CurrentPrincipal(c *gin.Context) (model.Principal, bool) {
	if value, exists := c.Get(principalKey); exists {
		if principal, ok := value.(model.Principal); ok {
			return principal, true
		}
	}
	return auth.FromContext(c.Request.Context())
}
