package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-idp-core/auth"
	"github.com/jrsteele09/go-idp-core/clients"
	"github.com/jrsteele09/go-idp-core/codes"
	"github.com/jrsteele09/go-idp-core/internal/config"
	"github.com/jrsteele09/go-idp-core/loginsession"
	"github.com/jrsteele09/go-idp-core/server"
	"github.com/jrsteele09/go-idp-core/sessions"
	"github.com/jrsteele09/go-idp-core/strategies"
	"github.com/jrsteele09/go-idp-core/token"
	"github.com/jrsteele09/go-idp-core/token/refresh"
	"github.com/jrsteele09/go-idp-core/users"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	for {
		if err := run(log); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run(log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	authService, err := buildAuthService(c, log)
	if err != nil {
		return fmt.Errorf("build auth service: %w", err)
	}
	srv, err := server.New(c, authService, log)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer, log)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildAuthService wires the stores and managers. With REDIS_ADDR set
// the session, login-session and code stores go to redis; otherwise
// everything stays in memory.
func buildAuthService(c config.Config, log zerolog.Logger) (*auth.Service, error) {
	var sessionRepo sessions.Repo
	var loginRepo loginsession.Repo
	var codeRepo codes.Repo

	if addr := c.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		sessionRepo = sessions.NewRedisRepo(client, c.GetSessionExpiry())
		loginRepo = loginsession.NewRedisRepo(client, c.GetLoginSessionExpiry())
		codeRepo = codes.NewRedisRepo(client)
		log.Info().Str("addr", addr).Msg("using redis stores")
	} else {
		sessionRepo = sessions.NewInMemoryRepo()
		loginRepo = loginsession.NewInMemoryRepo()
		codeRepo = codes.NewInMemoryRepo()
		log.Info().Msg("using in-memory stores")
	}

	registry := strategies.NewRegistry()
	registry.Register("oidc", strategies.NewOIDCStrategy(
		c.GetBaseURL()+server.RouteCallback,
		time.Duration(c.GetProviderTimeoutSeconds())*time.Second,
	))

	refreshManager := refresh.NewManager(refresh.NewInMemoryRepo(), c.GetRefreshTokenLength())
	tokenManager := token.NewManager(c.GetSigningSecret(), c.GetBaseURL(), c.GetAccessTokenExpiry(), refreshManager)

	return auth.NewService(c, auth.Repos{
		Clients:       clients.NewInMemoryRepo(),
		Users:         users.NewInMemoryRepo(),
		Sessions:      sessionRepo,
		LoginSessions: loginRepo,
	}, codes.NewIssuer(codeRepo), registry, tokenManager, log)
}

func listenAndServe(httpServer *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
