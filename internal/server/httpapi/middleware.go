package httpapi

import (
	"strings"
	"time"

	"github.com/anypart/marketplace/internal/server/models"
	"github.com/gofiber/fiber/v3"
)

// logRequests emits one structured line per completed request.
func (s *Server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info(c.Context(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start).String(),
	)
	return err
}

const sessionLocal = "session"

// attachSession resolves the session cookie, if any, and stores the session
// in the request context. Anonymous requests pass through untouched.
func (s *Server) attachSession(c fiber.Ctx) error {
	token := c.Cookies(SessionCookie)
	if token == "" {
		return c.Next()
	}
	session, err := s.sessions.Resolve(c.Context(), token)
	if err == nil {
		c.Locals(sessionLocal, session)
	}
	return c.Next()
}

// sessionFromCtx returns the resolved session or nil for anonymous requests.
func sessionFromCtx(c fiber.Ctx) *models.Session {
	if v, ok := c.Locals(sessionLocal).(*models.Session); ok {
		return v
	}
	return nil
}

func (s *Server) requireKind(kind string, h fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		session := sessionFromCtx(c)
		if session == nil || session.Kind != kind {
			return writeUnauthenticated(c)
		}
		return h(c)
	}
}

func (s *Server) requireBuyer(h fiber.Handler) fiber.Handler {
	return s.requireKind(models.PrincipalBuyer, h)
}

func (s *Server) requireSeller(h fiber.Handler) fiber.Handler {
	return s.requireKind(models.PrincipalSeller, h)
}

// requirePrincipal admits any logged-in buyer or seller.
func (s *Server) requirePrincipal(h fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		session := sessionFromCtx(c)
		if session == nil || session.Kind == models.PrincipalAdmin {
			return writeUnauthenticated(c)
		}
		return h(c)
	}
}

const adminLocal = "admin_id"

// requireAdmin validates the Bearer access token of the back-office API.
func (s *Server) requireAdmin(h fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return writeUnauthenticated(c)
		}
		adminID, err := s.admin.Authenticate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return writeUnauthenticated(c)
		}
		c.Locals(adminLocal, adminID)
		return h(c)
	}
}
