// Package middleware provides a gin middleware that decodes and validates
// bearer tokens with jwtdecode. It does not verify signatures and belongs
// behind a gateway or proxy that already has.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cybergodev/jwtdecode"
	"github.com/cybergodev/jwtdecode/internal/logger"
)

// ContextKey is the gin context key holding the decoded *jwtdecode.Token.
const ContextKey = "jwtdecode.token"

// Extractor errors. A TokenExtractor returns ErrMissingToken when the request carries no token.
var (
	ErrMissingToken         = errors.New("missing Authorization header")
	ErrInvalidAuthorization = errors.New("invalid Authorization format")
)

// TokenExtractor pulls the raw token out of a request.
type TokenExtractor func(c *gin.Context) (string, error)

// Option configures Claims.
type Option func(*settings)

type settings struct {
	logger   *slog.Logger
	extract  TokenExtractor
	optional bool
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExtractor replaces the default Authorization bearer extractor.
func WithExtractor(fn TokenExtractor) Option {
	return func(s *settings) {
		if fn != nil {
			s.extract = fn
		}
	}
}

// Optional lets requests without a token through. Present but invalid tokens are still rejected.
func Optional() Option {
	return func(s *settings) { s.optional = true }
}

// Claims returns a handler that rejects requests whose token cannot be decoded
// or fails validation with opts, and stores the decoded token in the context.
func Claims(opts jwtdecode.Options, options ...Option) gin.HandlerFunc {
	s := settings{
		logger:  logger.Logger(),
		extract: BearerToken,
	}
	for _, o := range options {
		o(&s)
	}

	insp, err := jwtdecode.NewInspectorWithLogger(s.logger, opts)
	if err != nil {
		s.logger.Error("claims middleware misconfigured", "error", err)
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token validation not configured"})
		}
	}

	return func(c *gin.Context) {
		token, err := s.extract(c)
		switch {
		case errors.Is(err, ErrMissingToken) && s.optional:
			requestsTotal.WithLabelValues(OutcomeSkipped).Inc()
			c.Next()
			return
		case errors.Is(err, ErrMissingToken):
			requestsTotal.WithLabelValues(OutcomeMissing).Inc()
			reject(c, err.Error(), nil)
			return
		case err != nil:
			requestsTotal.WithLabelValues(OutcomeMalformed).Inc()
			reject(c, err.Error(), nil)
			return
		}

		res, err := insp.DecodeAndValidate(token)
		if err != nil {
			requestsTotal.WithLabelValues(OutcomeMalformed).Inc()
			s.logger.Debug("rejected undecodable token", "path", c.FullPath(), "error", err)
			reject(c, err.Error(), nil)
			return
		}
		if !res.Valid {
			requestsTotal.WithLabelValues(OutcomeInvalid).Inc()
			s.logger.Debug("rejected invalid token", "path", c.FullPath(), "errors", res.Errors)
			reject(c, "invalid token", res.Errors)
			return
		}

		requestsTotal.WithLabelValues(OutcomeValid).Inc()
		c.Set(ContextKey, res.Token)
		c.Next()
	}
}

// BearerToken reads the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidAuthorization
	}
	return strings.TrimSpace(parts[1]), nil
}

// TokenFromContext returns the token stored by Claims.
func TokenFromContext(c *gin.Context) (*jwtdecode.Token, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	tok, ok := v.(*jwtdecode.Token)
	return tok, ok && tok != nil
}

func reject(c *gin.Context, msg string, errs []string) {
	if errs == nil {
		errs = []string{}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "errors": errs})
}
