package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// contextUserKey is the gin context key holding the authenticated Account.
const contextUserKey = "user"

type claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 token for u.
func (s *Server) issueToken(u Account) (string, error) {
	now := s.now()
	c := claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// parseToken verifies a token and returns the user ID it was issued to.
func (s *Server) parseToken(raw string) (string, error) {
	var c claims
	// Expiry is checked against s.now below.
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || c.UserID == "" {
		return "", errors.New("invalid token")
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(s.now()) {
		return "", errors.New("token expired")
	}
	return c.UserID, nil
}

// requireAuth validates the Bearer token and stores the caller in the context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			fail(c, http.StatusUnauthorized, "missing authorization token", "UNAUTHORIZED")
			c.Abort()
			return
		}
		userID, err := s.parseToken(raw)
		if err != nil {
			fail(c, http.StatusUnauthorized, "invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}
		u, err := s.store.User(userID)
		if err != nil {
			fail(c, http.StatusUnauthorized, "user no longer exists", "INVALID_TOKEN")
			c.Abort()
			return
		}
		c.Set(contextUserKey, u)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func currentUser(c *gin.Context) Account {
	u, _ := c.MustGet(contextUserKey).(Account)
	return u
}
