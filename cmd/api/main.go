package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"posgate.io/internal/auth"
	"posgate.io/internal/config"
	"posgate.io/internal/directory"
	"posgate.io/internal/gateway"
	"posgate.io/internal/httpapi"
	"posgate.io/internal/imagestore"
	"posgate.io/internal/obs"
	"posgate.io/internal/store/ora"
)

var (
	version = "1.2.0"
	commit  = "dev"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := ora.Open(cfg.DB.DSN, cfg.DB.PoolSize, ora.WithAcquireTimeout(cfg.DB.AcquireTimeout))
	if err != nil {
		log.Fatalf("open credential store: %v", err)
	}
	defer store.Close()

	tokens, err := auth.NewTokenService(cfg.Auth.Secret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	opts := []gateway.Option{}
	var dir *directory.Service
	if cfg.LDAP.URL != "" {
		dir = directory.NewService(directory.Config{
			URL:          cfg.LDAP.URL,
			BindDN:       cfg.LDAP.BindDN,
			BindPassword: cfg.LDAP.BindPassword,
			BaseDN:       cfg.LDAP.BaseDN,
			PoolSize:     cfg.LDAP.PoolSize,
			Timeout:      cfg.LDAP.Timeout,
		})
		defer dir.Close()
		opts = append(opts, gateway.WithDirectory(dir))
	}
	if cfg.SFTP.Addr != "" {
		images := imagestore.NewClient(imagestore.Config{
			Addr:     cfg.SFTP.Addr,
			User:     cfg.SFTP.User,
			Password: cfg.SFTP.Password,
			Root:     cfg.SFTP.Root,
		})
		defer images.Close()
		opts = append(opts, gateway.WithImageStore(images))
	}

	svc := gateway.New(store, tokens, opts...)
	api := httpapi.New(svc, version,
		httpapi.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		httpapi.WithRateLimit(cfg.HTTP.RateBurst, cfg.HTTP.RatePerSec),
	)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	log.Printf("Starting posgate-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
