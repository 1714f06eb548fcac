package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"inmatesearch-backend/lib/scrapers/sheriff"
	"inmatesearch-backend/lib/serviceutil"
	"inmatesearch-backend/lib/telemetry"
	"inmatesearch-backend/services/inmatesearch"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "inmatesearch-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := telemetry.Shutdown(context.Background())
		if err != nil {
			slog.Error("shutdown telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx, 15*time.Second)
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "The path to the config file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := ReadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	sessionOpts, err := cfg.SessionOptions()
	if err != nil {
		serviceutil.Fatal("init scrape sessions", err)
	}

	service, err := inmatesearch.NewService(func(ctx context.Context) (sheriff.Session, error) {
		return sheriff.NewSession(ctx, sessionOpts)
	}, cfg.ServiceOptions())
	if err != nil {
		serviceutil.Fatal("init inmatesearch", err)
	}

	slog.InfoContext(
		ctx, "starting inmatesearch-server",
		"driver", cfg.Driver,
		"base_url", cfg.BaseUrl,
		"auth", cfg.AccessToken != "",
	)
	err = serviceutil.StartHttpServer(ctx, cfg.Port, service.Handler())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
