// exposerpcd is a standalone gRPC server exposing the sample demo
// containers over the RPC Surface.
//
// Usage:
//
//	go run ./cmd/exposerpcd                  # Default :50051
//	go run ./cmd/exposerpcd -addr :8080      # Custom port
//	go run ./cmd/exposerpcd -config cfg.yaml # Load config from disk
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeeves-cluster-organization/exposerpc/auth"
	"github.com/jeeves-cluster-organization/exposerpc/config"
	"github.com/jeeves-cluster-organization/exposerpc/demo"
	"github.com/jeeves-cluster-organization/exposerpc/eventbus"
	"github.com/jeeves-cluster-organization/exposerpc/observability"
	"github.com/jeeves-cluster-organization/exposerpc/registry"
	"github.com/jeeves-cluster-organization/exposerpc/rpcserver"
)

// stdLogger implements rpcserver.Logger using the standard library log
// package. Grounded on cmd/main.go's stdLogger.
type stdLogger struct{}

func (l *stdLogger) Debug(msg string, keysAndValues ...any) {
	log.Printf("[DEBUG] %s %v", msg, keysAndValues)
}

func (l *stdLogger) Info(msg string, keysAndValues ...any) {
	log.Printf("[INFO] %s %v", msg, keysAndValues)
}

func (l *stdLogger) Warn(msg string, keysAndValues ...any) {
	log.Printf("[WARN] %s %v", msg, keysAndValues)
}

func (l *stdLogger) Error(msg string, keysAndValues ...any) {
	log.Printf("[ERROR] %s %v", msg, keysAndValues)
}

func main() {
	addr := flag.String("addr", ":50051", "gRPC server address")
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	tracingEndpoint := flag.String("tracing-endpoint", "", "OTLP collector endpoint (disabled if empty)")
	flag.Parse()

	logger := &stdLogger{}
	logger.Info("exposerpcd_starting", "address", *addr)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadYAML(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	config.Set(cfg)

	reg := registry.New()
	mustRegister(reg, &demo.Greeter{})
	mustRegister(reg, demo.NewBuild())
	mustRegister(reg, &demo.Math{})
	mustRegister(reg, &demo.Vault{})
	mustRegister(reg, &demo.Async{})
	reg.Freeze()
	logger.Info("registry_scan_completed", "member_count", len(reg.All()))

	bus := eventbus.New(5 * time.Second)
	unsubscribe := observability.SubscribeEventBus(bus)
	defer unsubscribe()
	bus.Publish(context.Background(), &eventbus.RegistryScanCompleted{MemberCount: len(reg.All())})

	authn := buildAuthenticator(cfg.Security, logger, bus)

	if *tracingEndpoint != "" {
		shutdown, err := observability.InitTracer("exposerpcd", *tracingEndpoint)
		if err != nil {
			logger.Warn("tracing_init_failed", "error", err.Error())
		} else {
			defer shutdown(context.Background())
		}
	}

	service := rpcserver.New(reg, authn, bus, logger)
	server := rpcserver.NewGracefulServer(service, *addr, cfg.Transport, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh, err := server.StartBackground()
	if err != nil {
		log.Fatalf("starting server: %v", err)
	}

	logger.Info("exposerpcd_ready", "address", *addr)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown_signal_received", "signal", sig.String())
		server.ShutdownWithTimeout(10 * time.Second)
	case err := <-errCh:
		if err != nil {
			logger.Error("server_error", "error", err.Error())
		}
	}

	logger.Info("exposerpcd_stopped")
}

func mustRegister(reg *registry.Registry, obj any) {
	if err := reg.Register(obj); err != nil {
		log.Fatalf("registering %T: %v", obj, err)
	}
}

// buildAuthenticator wires TokenValidator/KeyValidator from configuration;
// either or both may be left nil when their family is disabled, matching
// auth.New's documented contract. The TokenValidator's eviction hook
// publishes eventbus.TokenCacheEvicted so observability's subscriber can
// track exposerpc_token_cache_evictions_total without auth importing the
// eventbus package.
func buildAuthenticator(sec config.SecurityConfig, logger *stdLogger, bus eventbus.Bus) *auth.Authenticator {
	var tokenValidator *auth.TokenValidator
	if sec.Token.Enabled {
		fetcher := auth.NewHTTPKeySetFetcher(sec.Token.KeySetURI)
		tv, err := auth.NewTokenValidator(fetcher, auth.TokenValidatorConfig{
			Issuer:    sec.Token.Issuer,
			Audience:  sec.Token.Audience,
			ClockSkew: sec.Token.ClockSkew,
			CacheTTL:  sec.Token.CacheTTL,
		})
		if err != nil {
			log.Fatalf("building token validator: %v", err)
		}
		tv.OnEvict(func(reason string) {
			bus.Publish(context.Background(), &eventbus.TokenCacheEvicted{Reason: reason})
		})
		tokenValidator = tv
	}

	var keyValidator *auth.KeyValidator
	if sec.Key.Enabled {
		keyValidator = auth.NewKeyValidator(sec.Key.Keys)
	}

	logger.Info("authenticator_configured",
		"security_enabled", sec.Enabled,
		"token_enabled", sec.Token.Enabled,
		"key_enabled", sec.Key.Enabled,
	)
	return auth.New(tokenValidator, keyValidator, sec.Enabled)
}
