package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"smartsales/internal/auth"
	"smartsales/internal/domain/session"
	"smartsales/internal/metrics"
	"smartsales/internal/orders"
	"smartsales/internal/payments"
	"smartsales/internal/ratelimiter"
	"smartsales/internal/wallet"
)

var version = "0.3.0"

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 200
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			log.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			log.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	return zap.New(core).Sugar(), nil
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("Invalid %s, defaulting to %s", key, fallback)
	}
	return fallback
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	taxRate, err := decimal.NewFromString(os.Getenv("TAX_RATE"))
	if err != nil {
		log.Fatalf("Invalid value for TAX_RATE: %v", err)
	}
	if taxRate.IsNegative() {
		log.Fatalf("TAX_RATE must not be negative, got %s", taxRate)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("SESSION_TOKEN_SECRET"),
				exp:    envDuration("SESSION_TOKEN_EXP", 24*time.Hour),
				iss:    "smartsales",
			},
		},
		checkout: checkoutConfig{
			taxRate:  taxRate,
			currency: os.Getenv("CURRENCY"),
			method:   "stripe",
		},
		orders: collaboratorConfig{
			url:     os.Getenv("ORDERS_URL"),
			apiKey:  os.Getenv("ORDERS_API_KEY"),
			timeout: envDuration("ORDERS_TIMEOUT", 10*time.Second),
		},
		wallet: collaboratorConfig{
			url:     os.Getenv("WALLET_URL"),
			apiKey:  os.Getenv("WALLET_API_KEY"),
			timeout: envDuration("WALLET_TIMEOUT", 5*time.Second),
		},
		payment: paymentConfig{
			stripeSecret: os.Getenv("STRIPE_SECRET_KEY"),
			successURL:   os.Getenv("PAYMENT_SUCCESS_URL"),
			cancelURL:    os.Getenv("PAYMENT_CANCEL_URL"),
			refSalt:      os.Getenv("PAYMENT_REF_SALT"),
		},
		ratelimiter: LoadRateLimiterConfig(),
		sessionTTL:  envDuration("SESSION_TTL", 7*24*time.Hour),
	}

	logger, err := NewLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	refs, err := payments.NewReferenceGenerator(cfg.payment.refSalt)
	if err != nil {
		logger.Fatalw("reference generator", "error", err)
	}

	gateways := payments.NewPaymentManager()
	gateways.RegisterGateway("stripe", payments.NewStripeAdapter(cfg.payment.stripeSecret))

	app := &application{
		config:        cfg,
		logger:        logger,
		sessions:      session.NewStore(cfg.sessionTTL),
		orders:        orders.NewClient(cfg.orders.url, cfg.orders.apiKey, cfg.orders.timeout),
		wallet:        wallet.NewClient(cfg.wallet.url, cfg.wallet.apiKey, cfg.wallet.timeout),
		gateways:      gateways,
		refs:          refs,
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, "smartsales", cfg.auth.token.iss, cfg.auth.token.exp),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(cfg.ratelimiter.RequestsPerTimeFrame, cfg.ratelimiter.TimeFrame),
		metrics:       metrics.New("smartsales"),
	}

	mux := app.mount()
	if err := app.run(mux); err != nil {
		logger.Fatalw("server", "error", err)
	}

	app.sessions.Stop()
	app.rateLimiter.Stop()
}
