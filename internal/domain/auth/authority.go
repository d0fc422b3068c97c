package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quill-server-go/internal/domain/auth/model"
	"quill-server-go/internal/domain/auth/session"
)

const (
	defaultTokenLifetime = 12 * time.Hour
	defaultStoreTimeout  = 3 * time.Second
)

// Claims carries the identity embedded in an issued token. Subject
// is the principal id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Options encapsulates the dependencies required to construct an Authority.
type Options struct {
	Secret        string
	TokenLifetime time.Duration
	StoreTimeout  time.Duration
	Store         session.Store
	Logger        model.Logger
}

// Authority issues and validates bearer tokens with single-active-
// session semantics: the session store holds at most one canonical
// token per principal email, and only that token validates.
type Authority struct {
	secret        []byte
	tokenLifetime time.Duration
	storeTimeout  time.Duration
	store         session.Store
	logger        model.Logger
}

// NewAuthority wires an Authority using the supplied options. An
// empty signing secret is a configuration error and fails here, at
// process start, never at call time.
func NewAuthority(opts Options) (*Authority, error) {
	if opts.Secret == "" {
		return nil, errors.New("token authority requires a signing secret")
	}
	if opts.Store == nil {
		return nil, errors.New("token authority requires a session store")
	}
	if opts.Logger == nil {
		return nil, errors.New("token authority requires a logger")
	}
	tokenLifetime := opts.TokenLifetime
	if tokenLifetime <= 0 {
		tokenLifetime = defaultTokenLifetime
	}
	storeTimeout := opts.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Authority{
		secret:        []byte(opts.Secret),
		tokenLifetime: tokenLifetime,
		storeTimeout:  storeTimeout,
		store:         opts.Store,
		logger:        opts.Logger,
	}, nil
}

// Issue signs a token for the principal and records it as the
// canonical session, superseding any token issued earlier for the
// same email. The store applies its own TTL as the administrative
// ceiling on session lifetime.
func (a *Authority) Issue(ctx context.Context, principal model.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: principal.Email,
		Role:  principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(principal.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, a.storeTimeout)
	defer cancel()
	if err := a.store.Set(storeCtx, principal.Email, signed, 0); err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	a.logger.Debug("[AUTH] issued token for %s", principal.Email)
	return signed, nil
}

// Validate reports whether the presented token is currently valid.
// Signature and expiry are checked locally first; only then is the
// canonical session record consulted. Any failure along the way
// (parse error, superseded session, store timeout) yields false, and
// the caller cannot tell which reason applied.
func (a *Authority) Validate(ctx context.Context, tokenString string) bool {
	claims, err := a.parseClaims(tokenString)
	if err != nil {
		return false
	}

	storeCtx, cancel := context.WithTimeout(ctx, a.storeTimeout)
	defer cancel()
	canonical, ok, err := a.store.Get(storeCtx, claims.Email)
	if err != nil {
		// Store unavailable fails closed.
		a.logger.Warn("[AUTH] session lookup failed for %s: %v", claims.Email, err)
		return false
	}
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(canonical), []byte(tokenString)) == 1
}

// Identify extracts the principal identity embedded in a token. It
// verifies signature and expiry but does not re-check the canonical
// session; use it only after Validate has succeeded or in
// non-authoritative contexts.
func (a *Authority) Identify(tokenString string) (model.Principal, error) {
	claims, err := a.parseClaims(tokenString)
	if err != nil {
		return model.Principal{}, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return model.Principal{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	return model.Principal{
		ID:    uint(id),
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// Invalidate removes the canonical session for an email. Invalidating
// an absent session is a no-op, not an error.
func (a *Authority) Invalidate(ctx context.Context, email string) error {
	storeCtx, cancel := context.WithTimeout(ctx, a.storeTimeout)
	defer cancel()
	if err := a.store.Delete(storeCtx, email); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	a.logger.Debug("[AUTH] invalidated session for %s", email)
	return nil
}

// HasActiveSession reports whether a live session record exists for
// the email. No token comparison is performed.
func (a *Authority) HasActiveSession(ctx context.Context, email string) bool {
	storeCtx, cancel := context.WithTimeout(ctx, a.storeTimeout)
	defer cancel()
	ok, err := a.store.Exists(storeCtx, email)
	if err != nil {
		return false
	}
	return ok
}

func (a *Authority) parseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("missing email claim")
	}
	return claims, nil
}
