package rest

import (
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/and161185/task-keeper/internal/errs"
	"github.com/and161185/task-keeper/internal/model"
)

const actingUserKey = "tk.actingUser"

// requireAuth resolves the acting identity from the Authorization header and
// stores it in request locals. Handlers then pass the owner ID explicitly into
// the task service; nothing downstream reads ambient auth state.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	u, err := s.auth.ResolveIdentity(c.UserContext(), raw)
	if err != nil {
		return err
	}
	c.Locals(actingUserKey, u)
	return c.Next()
}

// actingUser returns the identity resolved by requireAuth.
func actingUser(c *fiber.Ctx) (*model.User, error) {
	u, ok := c.Locals(actingUserKey).(*model.User)
	if !ok || u == nil {
		return nil, errs.ErrUnauthenticated
	}
	return u, nil
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		if t := strings.TrimSpace(header[7:]); t != "" {
			return t, nil
		}
	}
	return "", errs.ErrUnauthenticated
}

// loggingMiddleware logs request metadata. No payloads, no tokens.
func (s *Server) loggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = errStatus(err)
		}
		s.log.Info("http",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", c.IP()),
		)
		return err
	}
}

// recoverMiddleware converts handler panics into a generic 500 after logging
// the stack.
func (s *Server) recoverMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Path()),
				)
				err = fiber.NewError(fiber.StatusInternalServerError, "internal error")
			}
		}()
		return c.Next()
	}
}
