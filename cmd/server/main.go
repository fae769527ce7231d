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
	"github.com/jrsteele09/go-asset-console/internal/config"
	memberrepofake "github.com/jrsteele09/go-asset-console/members/repofake"
	menurepofake "github.com/jrsteele09/go-asset-console/menus/repofake"
	"github.com/jrsteele09/go-asset-console/server"
	"github.com/jrsteele09/go-asset-console/token/keys"
	"github.com/jrsteele09/go-asset-console/token/refresh"
	"github.com/jrsteele09/go-asset-console/token/refresh/redisrepo"
	refreshrepofake "github.com/jrsteele09/go-asset-console/token/refresh/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	configureLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signer, err := newSigner(c)
	if err != nil {
		return err
	}
	refreshRepo, closeRepo, err := newRefreshTokenRepo(ctx, c.GetRedisAddr())
	if err != nil {
		return err
	}
	defer closeRepo()

	srv, err := server.New(c, server.Repos{
		Members:       memberrepofake.NewFakeMemberRepo(),
		Menus:         menurepofake.NewFakeMenuRepo(),
		RefreshTokens: refreshRepo,
	}, signer)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	go srv.RunBackground(ctx)

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(httpServer)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(httpServer)
}

// newSigner signs with HMAC when a shared secret is configured, otherwise with
// an RSA key kept in the data folder so the published key set survives
// restarts.
func newSigner(c config.Config) (keys.Signer, error) {
	if secret := c.GetJWTSecret(); secret != "" {
		log.Info().Msg("Signing access tokens with HS256")
		return keys.NewHMACSigner(secret), nil
	}
	kp, err := keys.LoadOrGenerateKeyPair(c.GetKeyFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	log.Info().Str("kid", kp.KeyID).Str("keyFile", c.GetKeyFile()).Msg("Signing access tokens with RS256")
	return keys.NewKeyPairSigner(kp), nil
}

func newRefreshTokenRepo(ctx context.Context, redisAddr string) (refresh.Repo, func(), error) {
	if redisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, refresh tokens are kept in memory")
		return refreshrepofake.NewFakeRefreshTokenRepo(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis not reachable at %s: %w", redisAddr, err)
	}
	log.Info().Str("addr", redisAddr).Msg("Refresh tokens stored in redis")
	return redisrepo.New(client, ""), func() { _ = client.Close() }, nil
}

func configureLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
