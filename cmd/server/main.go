package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sewa/internal/app"
	"sewa/internal/config"
	"sewa/internal/db"
	grpcserver "sewa/internal/grpc"
	"sewa/internal/httpapi"
	"sewa/internal/logger"
	"sewa/internal/notify"
	"sewa/repository"
	"sewa/repository/mongostore"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.Init(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	lg.Info("configuration loaded", zap.Stringer("config", cfg))

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx := context.Background()

	stores, closeStores, err := openStores(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer closeStores()

	notifier, closeNotifier, err := buildNotifier(cfg, lg)
	if err != nil {
		return err
	}
	defer closeNotifier()

	svcs := app.NewServices(app.Options{
		Stores:        stores,
		Notifier:      notifier,
		Logger:        lg,
		NotifyTimeout: cfg.Notify.Timeout,
		Location:      cfg.Donation.Location,
	})

	// Start gRPC
	shutdownGRPC, err := grpcserver.StartGRPC(cfg, svcs, lg.Named("grpc"))
	if err != nil {
		return err
	}

	var httpSrv *http.Server
	if cfg.HTTP.Address != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           httpapi.NewRouter(svcs, cfg.Auth.JWTSecret, lg.Named("http")),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.Error("http serve", zap.Error(err))
			}
		}()
		lg.Info("http listening", zap.String("addr", cfg.HTTP.Address))
	}

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("http shutdown", zap.Error(err))
		}
	}
	if err := shutdownGRPC(shutdownCtx); err != nil {
		lg.Warn("grpc shutdown", zap.Error(err))
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, lg *zap.Logger) (repository.Stores, func(), error) {
	if cfg.Database.Backend == config.BackendMongo {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		ms, err := mongostore.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.DB, lg.Named("mongo"))
		if err != nil {
			return repository.Stores{}, nil, err
		}
		return ms.Stores(), func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = ms.Close(closeCtx)
		}, nil
	}

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return repository.Stores{}, nil, err
	}
	return repository.NewSQLiteStores(d), func() {
		if err := d.Close(); err != nil {
			lg.Warn("close db", zap.Error(err))
		}
	}, nil
}

// buildNotifier enables NATS and SMTP only when configured; without either
// notifications are logged.
func buildNotifier(cfg *config.Config, lg *zap.Logger) (notify.Notifier, func(), error) {
	opts := notify.HubOptions{
		SubjectPrefix: cfg.NATS.SubjectPrefix,
		AdminEmail:    cfg.SMTP.AdminEmail,
		Logger:        lg,
	}
	closeFn := func() {}
	if cfg.NATS.URL != "" {
		pub, err := notify.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return nil, nil, err
		}
		opts.Publisher = pub
		closeFn = func() { _ = pub.Close() }
	}
	if cfg.SMTP.Host != "" {
		mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		opts.Mailer = mailer
	}
	return notify.NewHub(opts), closeFn, nil
}
