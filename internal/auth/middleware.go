package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

// CookieName is the httpOnly cookie the login handler sets. The middleware
// accepts either a bearer header or this cookie.
const CookieName = "auth_token"

// TokenFromRequest extracts the raw token from the Authorization header,
// falling back to the auth cookie. Empty string means unauthenticated.
func TokenFromRequest(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// resolveClaims parses and validates the request token, including the
// stored token version so logout invalidates outstanding tokens.
func resolveClaims(c *gin.Context, tokens TokenService, repo *Repo) *Claims {
	raw := TokenFromRequest(c)
	if raw == "" {
		return nil
	}
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil
	}
	if repo != nil {
		currentVersion, err := repo.GetTokenVersion(c.Request.Context(), claims.UserID)
		if err != nil || currentVersion != claims.TokenVersion {
			return nil
		}
	}
	return claims
}

// RequireAdmin gates mutating routes behind the admin capability.
// Missing or invalid credentials yield 401, a valid non-admin token 403.
func RequireAdmin(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := resolveClaims(c, tokens, repo)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if claims.Role != RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// IsAdmin is the yes/no capability check for routes that stay public but
// behave differently for the admin (e.g. listing drafts). It never aborts.
func IsAdmin(c *gin.Context, tokens TokenService, repo *Repo) bool {
	claims := resolveClaims(c, tokens, repo)
	return claims != nil && claims.Role == RoleAdmin
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
