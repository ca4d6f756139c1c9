package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/clipzone/clipzone/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	accountContextKey = "account_id"
	roleContextKey    = "account_role"
)

var jwtSecret string

// Claims represents JWT claims for a verified principal
type Claims struct {
	AccountID string      `json:"account_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SetJWTSecret sets the JWT secret for the middleware
func SetJWTSecret(secret string) {
	jwtSecret = secret
}

// JWTAuth middleware validates JWT tokens and injects the verified
// principal (account id and role) into the request context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set(accountContextKey, claims.AccountID)
		c.Set(roleContextKey, claims.Role)
		c.Next()
	}
}

// RequireRole guards a route group to the given roles. Admin accounts
// pass every role guard.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if role == models.RoleAdmin {
			c.Next()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		c.Abort()
	}
}

// GenerateToken generates a JWT token for an account
func GenerateToken(account *models.Account, expiresIn time.Duration) (string, error) {
	claims := Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// GetAccountID retrieves the authenticated account ID from the context
func GetAccountID(c *gin.Context) (string, bool) {
	id, exists := c.Get(accountContextKey)
	if !exists {
		return "", false
	}

	idStr, ok := id.(string)
	return idStr, ok
}

// GetRole retrieves the authenticated account role from the context
func GetRole(c *gin.Context) (models.Role, bool) {
	role, exists := c.Get(roleContextKey)
	if !exists {
		return "", false
	}

	r, ok := role.(models.Role)
	return r, ok
}
