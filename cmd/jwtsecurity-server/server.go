package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	jwtsecurity "github.com/catuns/go-jwt-security"
	"github.com/catuns/go-jwt-security/auth"
	"github.com/catuns/go-jwt-security/config"
	"github.com/catuns/go-jwt-security/core"
	jwtecho "github.com/catuns/go-jwt-security/framework/echo"
	"github.com/catuns/go-jwt-security/token"
)

// serverPublicPaths are always reachable without a token.
var serverPublicPaths = []string{"/login", "/metrics"}

type meResponse struct {
	Name        string   `json:"name"`
	Authorities []string `json:"authorities"`
}

// setupHandler wires the token provider, the chain and the routes.
func setupHandler(cfg *config.Config, store auth.UserStore, registry *prometheus.Registry, log logrus.FieldLogger) (http.Handler, error) {
	logger := jwtsecurity.NewLogrusLogger(log)

	provider, err := cfg.NewProvider(token.WithCustomizer(token.TokenIDCustomizer()))
	if err != nil {
		return nil, err
	}

	metrics, err := core.NewPrometheusMetrics(registry)
	if err != nil {
		return nil, err
	}

	engine, err := core.New(
		core.WithProvider(provider),
		core.WithLogger(logger),
		core.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	chainCfg, err := cfg.ChainConfig()
	if err != nil {
		return nil, err
	}
	chainCfg.PublicPaths = append(chainCfg.PublicPaths, serverPublicPaths...)

	chain, err := jwtsecurity.NewChain(engine, chainCfg, jwtsecurity.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	authenticator, err := auth.NewAuthenticator(store, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(jwtecho.CORS(chain))

	e.POST("/login", func(c echo.Context) error {
		r := c.Request()
		username, password, ok := r.BasicAuth()
		if !ok {
			chain.Exception().HandleError(c.Response(), r, auth.ErrBadCredentials)
			return nil
		}

		p, err := authenticator.Authenticate(r.Context(), username, password)
		if err == nil {
			err = jwtsecurity.Authenticate(r, p)
		}
		if err != nil {
			chain.Exception().HandleError(c.Response(), r, err)
			return nil
		}
		return c.NoContent(http.StatusNoContent)
	})

	e.GET("/me", func(c echo.Context) error {
		p, ok := jwtsecurity.PrincipalFrom(c.Request().Context())
		if !ok {
			return c.NoContent(http.StatusUnauthorized)
		}
		return c.JSON(http.StatusOK, meResponse{Name: p.Name, Authorities: p.Authorities})
	})

	e.GET("/actuator/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "UP"})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return chain.Then(e), nil
}
