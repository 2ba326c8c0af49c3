// Package middleware provides the Fiber middleware shared by every route:
// authentication, rate limiting, request logging, tracing and metrics.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"brewlog/internal/config"
	"brewlog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	wsTicketTTL    = 30 * time.Second
	wsTicketPrefix = "ws_ticket:"
	blacklistKey   = "blacklist:"
)

// Authenticator verifies access tokens issued by the identity provider.
// Tokens arrive as a Bearer header or in the auth cookie.
type Authenticator struct {
	secret     []byte
	issuer     string
	audience   string
	cookieName string
	rdb        *redis.Client
}

// NewAuthenticator returns an Authenticator for cfg. rdb may be nil, in which
// case revocation checks and WebSocket tickets are unavailable.
func NewAuthenticator(cfg *config.Config, rdb *redis.Client) *Authenticator {
	cookie := cfg.AuthCookieName
	if cookie == "" {
		cookie = "access_token"
	}
	return &Authenticator{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		cookieName: cookie,
		rdb:        rdb,
	}
}

// ParseToken validates raw and returns the account ID in its subject.
func (a *Authenticator) ParseToken(ctx context.Context, raw string) (uint, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return 0, models.NewUnauthenticatedError("Invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, models.NewUnauthenticatedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, models.NewUnauthenticatedError("Invalid user ID in token")
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && a.rdb != nil {
		revoked, err := a.rdb.Exists(ctx, blacklistKey+jti).Result()
		if err == nil && revoked > 0 {
			return 0, models.NewUnauthenticatedError("Token has been revoked")
		}
	}

	return uint(userID), nil
}

// Required rejects requests without a valid token and stores the caller's
// ID in c.Locals("userID") otherwise.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := a.tokenFrom(c)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization required"))
		}
		userID, err := a.ParseToken(c.UserContext(), raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		return setUser(c, userID)
	}
}

// RequiredOrTicket is Required that also accepts a single-use WebSocket
// ticket in ?ticket=. Mount it only on the WebSocket upgrade route.
func (a *Authenticator) RequiredOrTicket() fiber.Handler {
	required := a.Required()
	return func(c *fiber.Ctx) error {
		if userID, ok := a.consumeTicket(c); ok {
			return setUser(c, userID)
		}
		return required(c)
	}
}

// Optional identifies the caller when a valid token is present and lets
// anonymous requests through unchanged.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := a.tokenFrom(c)
		if raw == "" {
			return c.Next()
		}
		userID, err := a.ParseToken(c.UserContext(), raw)
		if err != nil {
			return c.Next()
		}
		return setUser(c, userID)
	}
}

// IssueWSTicket stores a single-use ticket that authenticates one WebSocket
// upgrade for userID.
func (a *Authenticator) IssueWSTicket(ctx context.Context, userID uint) (string, error) {
	if a.rdb == nil {
		return "", errors.New("websocket tickets require redis")
	}
	ticket := uuid.NewString()
	if err := a.rdb.Set(ctx, wsTicketPrefix+ticket, userID, wsTicketTTL).Err(); err != nil {
		return "", fmt.Errorf("store websocket ticket: %w", err)
	}
	return ticket, nil
}

func (a *Authenticator) consumeTicket(c *fiber.Ctx) (uint, bool) {
	ticket := c.Query("ticket")
	if ticket == "" || a.rdb == nil {
		return 0, false
	}
	raw, err := a.rdb.GetDel(c.UserContext(), wsTicketPrefix+ticket).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

func (a *Authenticator) tokenFrom(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Cookies(a.cookieName)
}

func setUser(c *fiber.Ctx, userID uint) error {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
	return c.Next()
}

// SignToken mints an HS256 access token for userID. Used by tooling and
// tests; production tokens come from the identity provider.
func SignToken(cfg *config.Config, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	if cfg.JWTIssuer != "" {
		claims["iss"] = cfg.JWTIssuer
	}
	if cfg.JWTAudience != "" {
		claims["aud"] = cfg.JWTAudience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}
