package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

var (
	// credential failures collapse to one message: the client never learns
	// whether the account exists, the role differed or the password failed.
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	errAccountExists      = echo.NewHTTPError(http.StatusConflict, "account already exists")
	errBadAdminCode       = echo.NewHTTPError(http.StatusForbidden, "invalid admin code")
	errUnsupportedRole    = echo.NewHTTPError(http.StatusBadRequest, "unsupported role")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch origErr {
			case account.ErrNotFound, account.ErrBadPassword, account.ErrRoleMismatch:
				code = errInvalidCredentials.Code
				message = errInvalidCredentials.Message
			case account.ErrAccountExists:
				code = errAccountExists.Code
				message = errAccountExists.Message
			case account.ErrBadAdminCode:
				code = errBadAdminCode.Code
				message = errBadAdminCode.Message
			case account.ErrLinkMissing:
				// data-integrity fault: already reported by the service; the
				// client only sees a generic server error, never a credentials
				// problem.
				code = http.StatusInternalServerError
				message = http.StatusText(code)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(code)
				message = msg

				args := []interface{}{errors.Wrap(err, msg)}
				if desc, ok := getContextDescriptor(ctx); ok {
					args = append(args, map[string]interface{}{"accountId": desc.AccountID, "role": desc.Role})
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
