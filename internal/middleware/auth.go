package middleware

import (
	"net/http"
	"strings"

	"travelapproval/internal/config"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"

	accessTokenCookie = "access_token"
)

// Auth validates HS256 access tokens issued at login.
type Auth struct {
	secret        []byte
	secureCookies bool
}

func NewAuth(cfg *config.Config) *Auth {
	return &Auth{secret: cfg.JWTSecret, secureCookies: cfg.IsRelease()}
}

// SetTokenCookie stores the access token as an HttpOnly cookie
func (a *Auth) SetTokenCookie(c *gin.Context, accessToken string, maxAgeSeconds int) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	c.SetSameSite(a.sameSite())
	c.SetCookie(accessTokenCookie, accessToken, maxAgeSeconds, "/", "", a.secureCookies, true)
}

// ClearTokenCookie removes the access_token cookie
func (a *Auth) ClearTokenCookie(c *gin.Context) {
	c.SetSameSite(a.sameSite())
	c.SetCookie(accessTokenCookie, "", -1, "/", "", a.secureCookies, true)
}

func (a *Auth) sameSite() http.SameSite {
	if a.secureCookies {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Authenticate accepts any valid token regardless of role.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return a.RequireRole()
}

// RequireRole validates the JWT token and, when allowedRoles is non-empty,
// checks that the token's role is one of them.
func (a *Auth) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie(accessTokenCookie)
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				response.Abort(c, http.StatusUnauthorized, "Authorization is missing")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Abort(c, http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'")
				return
			}
			tokenString = parts[1]
		}

		claims, err := a.ParseToken(tokenString)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, _ := claims["sub"].(string)
		if _, err := uuid.Parse(userID); err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid token subject")
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok {
			response.Abort(c, http.StatusForbidden, "Role not found in token")
			return
		}

		if len(allowedRoles) > 0 && !contains(allowedRoles, userRole) {
			response.Abort(c, http.StatusForbidden, "Access denied: insufficient permissions")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, userRole)

		c.Next()
	}
}

// ParseToken verifies signature and expiry and returns the claims.
func (a *Auth) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// CurrentUser returns the authenticated user id and role set by RequireRole.
func CurrentUser(c *gin.Context) (uuid.UUID, string, bool) {
	raw := c.GetString(ContextUserID)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, c.GetString(ContextUserRole), true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
