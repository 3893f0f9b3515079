package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/examind-dev/examind-api/internal/utils"
)

// Roles carried by verified tokens. The identity provider is an external
// collaborator; the engine trusts the decoded tuple.
const (
	RoleAdmin     = "admin"
	RoleCandidate = "candidate"
)

// JWTProtected returns a middleware that validates JWT bearer tokens and
// binds the verified (user_id, role, tenant_id) tuple to the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if userID := claimUint(claims, "sub", "user_id", "id"); userID != nil {
			c.Locals("user_id", *userID)
		}
		if tenantID := claimUint(claims, "tenant_id"); tenantID != nil {
			c.Locals("tenant_id", *tenantID)
		}
		if role := claimRole(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

// RequireRole rejects requests whose verified role differs from the
// expected one.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actual, _ := c.Locals("user_role").(string)
		if actual != role {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

func claimUint(claims jwt.MapClaims, keys ...string) *uint {
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUintClaim(value); err == nil {
				return &normalized
			}
		}
	}
	return nil
}

func normalizeUintClaim(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid claim value")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid claim value")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported claim type")
	}
}

func claimRole(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		if value, ok := claims[key]; ok {
			if role := normalizeRole(value); role != "" {
				return role
			}
		}
	}
	return ""
}

func normalizeRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				role := strings.ToLower(strings.TrimSpace(str))
				if role != "" {
					return role
				}
			}
		}
	default:
		return ""
	}
	return ""
}
