package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
)

// authenticateRequest validates the Authorization header and returns the user ID.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	user, err := s.requireUser(ctx, authHeader)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// requireUser validates the Authorization header and returns the full user.
func (s *Server) requireUser(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, err := s.services.Auth.VerifyAccessToken(ctx, parts[1])
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return user, nil
}

// checkAuthRate applies the per-IP limit on credential endpoints.
// Direct connections without forwarding headers share one bucket.
func (s *Server) checkAuthRate(xForwardedFor, xRealIP string) error {
	ip := extractIP(xForwardedFor, xRealIP)
	if ip == "" {
		ip = "direct"
	}
	if !s.authRateLimiter.Allow(ip) {
		if s.logger != nil {
			s.logger.Warn("auth rate limit exceeded", "ip", ip)
		}
		return huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}
	return nil
}

// extractIP picks the client IP from forwarding headers.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		// First entry in the chain is the client.
		if i := strings.IndexByte(xForwardedFor, ','); i >= 0 {
			return strings.TrimSpace(xForwardedFor[:i])
		}
		return xForwardedFor
	}
	return xRealIP
}
