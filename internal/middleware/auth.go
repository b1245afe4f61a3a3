package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"backend/internal/authz"
	"backend/internal/model"
	"backend/internal/session"
	"backend/pkg/response"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// extractToken reads the access token from the cookie, falling back to the
// Authorization header.
func extractToken(c *gin.Context) (string, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// parseClaims validates the signature and returns the claims map.
func parseClaims(tokenString string, secret []byte) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// ProfileLoader resolves the business profile for an authenticated account.
type ProfileLoader interface {
	GetByAccountID(ctx context.Context, accountID string) (*model.UserProfile, error)
}

// Auth bundles the guard middleware with its injected profile loader. No
// package-level state: tests substitute a fixture loader.
type Auth struct {
	loader ProfileLoader
	secret []byte
}

func NewAuth(loader ProfileLoader, secret []byte) *Auth {
	return &Auth{loader: loader, secret: secret}
}

// resolve authenticates the request and loads the profile. A valid token with
// no stored profile yields a synthesized guest profile, never an error.
func (a *Auth) resolve(c *gin.Context) (session.State, *model.UserProfile) {
	tokenString, ok := extractToken(c)
	if !ok {
		return session.StateUnauthenticated, nil
	}

	claims, ok := parseClaims(tokenString, a.secret)
	if !ok {
		return session.StateUnauthenticated, nil
	}

	accountID, _ := claims["sub"].(string)
	if accountID == "" {
		return session.StateUnauthenticated, nil
	}
	email, _ := claims["email"].(string)

	profile, err := a.loader.GetByAccountID(c.Request.Context(), accountID)
	if err != nil || profile == nil {
		guest := session.DefaultProfile(accountID, email)
		return session.StateAuthenticatedNoProfile, &guest
	}
	// Deactivation takes effect immediately, not at token expiry.
	if !profile.Active {
		return session.StateUnauthenticated, nil
	}
	return session.StateAuthenticatedWithProfile, profile
}

// RequireAccess guards a route with the full decision chain: authentication,
// role allow-list bypass, required permission, province check. Denials
// redirect rather than error so the browser lands somewhere usable.
func (a *Auth) RequireAccess(cfg AccessConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, profile := a.resolve(c)

		effective := cfg
		if effective.ProvinceCheck == nil && effective.ProvinceParam != "" {
			provinceID := c.Param(effective.ProvinceParam)
			effective.ProvinceCheck = func(p *model.UserProfile) bool {
				return authz.HasProvinceAccess(p, provinceID)
			}
		}

		decision := Decide(state, profile, c.Request.URL.RequestURI(), effective)
		switch decision.Kind {
		case DecisionAllow:
			setProfileContext(c, profile)
			c.Next()
		case DecisionRedirect:
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			// Authenticating cannot occur on the request path, where token
			// validation is synchronous; answer retriably if it ever does.
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Session still authenticating"))
		}
	}
}

// RequireAuth only demands a valid token; any profile state passes. API
// consumers get a JSON 401 instead of a redirect.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, profile := a.resolve(c)
		if state != session.StateAuthenticatedWithProfile && state != session.StateAuthenticatedNoProfile {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing or invalid"))
			return
		}
		setProfileContext(c, profile)
		c.Next()
	}
}

// RequirePermission is the JSON-API variant of RequireAccess for endpoints
// consumed by non-browser clients: 401/403 instead of redirects.
func (a *Auth) RequirePermission(required authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, profile := a.resolve(c)
		if state != session.StateAuthenticatedWithProfile && state != session.StateAuthenticatedNoProfile {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing or invalid"))
			return
		}
		if !authz.HasPermission(profile, required) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+string(required)+"'"))
			return
		}
		setProfileContext(c, profile)
		c.Next()
	}
}

// RequireRole validates the token and checks the profile's role against the
// allow-list.
func (a *Auth) RequireRole(allowedRoles ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, profile := a.resolve(c)
		if state != session.StateAuthenticatedWithProfile && state != session.StateAuthenticatedNoProfile {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing or invalid"))
			return
		}
		if !authz.HasAnyRole(profile, allowedRoles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient role"))
			return
		}
		setProfileContext(c, profile)
		c.Next()
	}
}

func setProfileContext(c *gin.Context, profile *model.UserProfile) {
	if profile == nil {
		return
	}
	c.Set("accountID", profile.AccountID)
	c.Set("profile", profile)
	c.Set("userRole", profile.Role)
}

// ProfileFromContext retrieves the profile placed by the guard middleware.
func ProfileFromContext(c *gin.Context) *model.UserProfile {
	v, ok := c.Get("profile")
	if !ok {
		return nil
	}
	p, _ := v.(*model.UserProfile)
	return p
}
