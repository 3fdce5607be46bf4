package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/access"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/session"
)

// Client-held session cookies. The session token and role tag are server-read
// only; the auxiliary cookies are client-readable UI conveniences and are
// never consulted for access decisions.
const (
	sessionCookieName       = "session"
	roleCookieName          = "role"
	studentRollNoCookieName = "studentRollNo"
	teacherIDCookieName     = "teacherId"

	contextDescriptorKey = "sessionDescriptor"
)

// gateMiddleware classifies every request and enforces the role constraints.
// The session cookie counts only if its signature verifies and the role tag
// agrees with the signed role; anything else is treated as no session.
func gateMiddleware(issuer *session.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()

			var sess access.Session
			if c, err := req.Cookie(sessionCookieName); err == nil {
				if desc, err := issuer.Verify(c.Value); err == nil {
					if rc, err := req.Cookie(roleCookieName); err == nil && rc.Value == string(desc.Role) {
						sess = access.Session{Present: true, Role: desc.Role}
						ctx.Set(contextDescriptorKey, desc)
					}
				}
			}

			decision := access.Decide(req.URL.Path, req.URL.RawQuery, sess)
			if !decision.Allow {
				return ctx.Redirect(http.StatusFound, decision.Redirect)
			}
			return next(ctx)
		}
	}
}

// getContextDescriptor returns the verified session Descriptor set by the gate.
func getContextDescriptor(ctx echo.Context) (session.Descriptor, bool) {
	desc, ok := ctx.Get(contextDescriptorKey).(session.Descriptor)
	return desc, ok
}

func newAuthCookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
		Secure:   !core.Conf.Debug,
	}
}

// setAuthCookies attaches the issued token set to the response.
func setAuthCookies(ctx echo.Context, tokens session.Tokens) {
	ctx.SetCookie(newAuthCookie(sessionCookieName, tokens.Session, true))
	ctx.SetCookie(newAuthCookie(roleCookieName, string(tokens.Role), true))

	switch tokens.Role {
	case account.RoleStudent:
		ctx.SetCookie(newAuthCookie(studentRollNoCookieName, tokens.Aux, false))
	case account.RoleTeacher:
		ctx.SetCookie(newAuthCookie(teacherIDCookieName, tokens.Aux, false))
	}
}

// clearAuthCookies expires every cookie issued at login so the client discards
// them. Clearing an already-absent session is a no-op success.
func clearAuthCookies(ctx echo.Context) {
	for _, name := range []string{
		sessionCookieName,
		roleCookieName,
		studentRollNoCookieName,
		teacherIDCookieName,
	} {
		ctx.SetCookie(&http.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			Expires: time.Unix(0, 0),
			MaxAge:  -1,
		})
	}
}
