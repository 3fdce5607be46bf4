package echoapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/session"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger     core.Logger
		AccountSvc *account.Service
		Issuer     *session.Issuer
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
		stopOnce sync.Once
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	// the authorization gate runs on every request, before any handler
	s.app.Use(gateMiddleware(s.opts.Issuer))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = debug

	// portal area roots; the actual pages are rendered by the frontend
	s.app.GET("/", home)
	s.app.GET("/login", loginPage)
	s.app.GET("/admin", adminArea)
	s.app.GET("/teacher/:id", teacherArea)
	s.app.GET("/student", studentArea)
	s.app.GET("/:rollNo", studentArea)

	api := s.app.Group("/api")
	registerAccountAPI(api, s.opts.AccountSvc, s.opts.Issuer)
}

func (s *server) Start() {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Start(s.opts.Addr) }()

	select {
	case err := <-errc:
		s.app.Logger.Fatal(err)
	case <-s.shutdown:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			s.app.Logger.Fatal(err)
		}
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// signalShutdown gracefully shuts the Server down when an integrity error is caught.
func (s *server) signalShutdown() {
	s.stopOnce.Do(func() { close(s.shutdown) })
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+"!")
}

func loginPage(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Log in")
}

func adminArea(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Admin portal")
}

func teacherArea(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Teacher portal")
}

func studentArea(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Student portal")
}
