package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/session"
)

type accountApi struct {
	service *account.Service
	issuer  *session.Issuer
}

func registerAccountAPI(g *echo.Group, svc *account.Service, issuer *session.Issuer) {
	api := accountApi{service: svc, issuer: issuer}

	g.POST("/login", api.accountLogin)
	g.POST("/register", api.accountRegister)
	g.POST("/logout", api.accountLogout)
}

// Handlers

func (api *accountApi) accountLogin(ctx echo.Context) error {
	data := new(account.Login)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	verified, err := api.service.Authenticate(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return api.issueSession(ctx, verified, data.Redirect)
}

func (api *accountApi) accountRegister(ctx echo.Context) error {
	data := new(RegisterRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	var verified account.Verified
	var err error
	switch data.Role {
	case account.RoleStudent:
		verified, err = api.service.RegisterStudent(reqCtx, account.NewStudent{
			Name:     data.Name,
			RollNo:   data.RollNo,
			Password: data.Password,
		})
	case account.RoleTeacher:
		verified, err = api.service.RegisterTeacher(reqCtx, account.NewTeacher{
			Name:     data.Name,
			Email:    data.Email,
			Password: data.Password,
		})
	case account.RoleAdmin:
		verified, err = api.service.RegisterAdmin(reqCtx, account.NewAdmin{
			Email:     data.Email,
			Password:  data.Password,
			AdminCode: data.AdminCode,
		})
	default:
		return errUnsupportedRole
	}
	if err != nil {
		return err
	}

	// registration logs the new account in right away
	return api.issueSession(ctx, verified, "")
}

func (api *accountApi) accountLogout(ctx echo.Context) error {
	_ = session.Teardown()
	clearAuthCookies(ctx)
	return ctx.JSON(http.StatusOK, LogoutResponse{Success: true})
}

func (api *accountApi) issueSession(ctx echo.Context, verified account.Verified, redirect string) error {
	tokens, err := api.issuer.Issue(verified)
	if err != nil {
		return err
	}
	setAuthCookies(ctx, tokens)
	return ctx.JSON(http.StatusOK, LoginResponse{Redirect: session.LandingPath(verified, redirect)})
}

type (
	// RegisterRequest is the union of the role-dependent registration payloads;
	// the handler dispatches on Role.
	RegisterRequest struct {
		Role      account.Role `json:"role"`
		Name      string       `json:"name"`
		Email     string       `json:"email"`
		RollNo    string       `json:"rollNo"`
		Password  string       `json:"password"`
		AdminCode string       `json:"adminCode"`
	}

	LoginResponse struct {
		Redirect string `json:"redirect"`
	}

	LogoutResponse struct {
		Success bool `json:"success"`
	}
)
