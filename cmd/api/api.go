package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartsales/internal/auth"
	"smartsales/internal/domain/checkout"
	"smartsales/internal/domain/session"
	"smartsales/internal/metrics"
	"smartsales/internal/orders"
	"smartsales/internal/payments"
	"smartsales/internal/ratelimiter"
	"smartsales/internal/wallet"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	sessions      *session.Store
	orders        *orders.Client
	wallet        *wallet.Client
	gateways      *payments.PaymentManager
	refs          *payments.ReferenceGenerator
	authenticator auth.Authenticator
	rateLimiter   *ratelimiter.FixedWindowRateLimiter
	metrics       *metrics.StoreMetrics
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	auth        authConfig
	checkout    checkoutConfig
	orders      collaboratorConfig
	wallet      collaboratorConfig
	payment     paymentConfig
	ratelimiter ratelimiter.Config
	sessionTTL  time.Duration
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type checkoutConfig struct {
	taxRate  decimal.Decimal
	currency string
	method   string
}

type collaboratorConfig struct {
	url     string
	apiKey  string
	timeout time.Duration
}

type paymentConfig struct {
	stripeSecret string
	successURL   string
	cancelURL    string
	refSalt      string
}

// policy builds the tax/shipping policy handed to every quote. Shipping is
// the flat free policy for now; the config knob would land here.
func (app *application) policy() checkout.Policy {
	return checkout.Policy{
		TaxRate:  app.config.checkout.taxRate,
		Shipping: checkout.FreeShipping,
	}
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(app.RateLimiterMiddleware)
	r.Use(app.MetricsMiddleware)

	r.Use(middleware.Timeout(60 * time.Second))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)

		r.Post("/sessions", app.createSessionHandler)

		// Gateway redirects arrive from the shopper's browser, outside the
		// bearer-token flow; they identify the session by query parameter.
		r.Get("/checkout/return/success", app.checkoutSuccessHandler)
		r.Get("/checkout/return/cancel", app.checkoutCancelHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.SessionTokenMiddleware)

			r.Route("/store/cart", func(r chi.Router) {
				r.Get("/", app.getCartHandler)
				r.Delete("/", app.clearCartHandler)
				r.Post("/items", app.addCartItemHandler)
				r.Patch("/items/{productID}", app.updateCartItemQtyHandler)
				r.Delete("/items/{productID}", app.removeCartItemHandler)
			})

			r.Get("/wallet/balance", app.walletBalanceHandler)

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/quote", app.quoteHandler)
				r.Post("/allocation", app.allocationHandler)
				r.Post("/", app.checkoutHandler)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
