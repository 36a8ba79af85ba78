package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tradepost/internal/middleware"
	"tradepost/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "tradepost-api"
	tokenAudience = "tradepost-client"
	tokenTTL      = 7 * 24 * time.Hour
)

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

// generateToken creates a JWT token for the given user ID and username
func (s *Server) generateToken(userID uint, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

type tokenClaims struct {
	userID    uint
	jti       string
	expiresAt time.Time
}

// parseToken verifies signature, expiry, issuer and audience.
func (s *Server) parseToken(tokenString string) (*tokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	out := &tokenClaims{userID: uint(userID)}
	out.jti, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.expiresAt = exp.Time
	}
	return out, nil
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if jti == "" || s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, blacklistKey(jti)).Result()
	return err == nil && n > 0
}

// AuthRequired accepts a Bearer header or a token query parameter.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		if s.isRevoked(c.UserContext(), claims.jti) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		c.Locals("userID", claims.userID)
		c.Locals("jti", claims.jti)
		c.Locals("tokenExpiresAt", claims.expiresAt)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID identifies the caller on public routes; any problem with
// the token is treated as anonymous.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return 0, false
	}
	claims, err := s.parseToken(tokenString)
	if err != nil || s.isRevoked(c.UserContext(), claims.jti) {
		return 0, false
	}
	return claims.userID, true
}
