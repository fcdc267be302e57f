package middleware

import (
	"strings"

	"tabwise_server/pkg/apperr"
	"tabwise_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by an extension session token.
type Claims struct {
	InstallID string `json:"install_id"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token the extension attaches to every API
// call. The token is an HS256 JWT minted at install time; its install_id
// claim identifies one browser profile.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperr.Unauthorized("missing authorization header")
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return apperr.Unauthorized("malformed authorization header")
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, apperr.InvalidToken("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.WithError(err).Warn("rejected token on %s", c.Path())
			return apperr.InvalidToken("invalid or expired token")
		}
		if claims.InstallID == "" {
			return apperr.InvalidToken("token has no install_id")
		}

		c.Locals("install_id", claims.InstallID)
		return c.Next()
	}
}

// InstallID returns the authenticated install id, or "" outside JWTAuth.
func InstallID(c *fiber.Ctx) string {
	id, _ := c.Locals("install_id").(string)
	return id
}
