// README: Entry point; loads config, wires stores and services, serves the HTTP API until SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"carrental/internal/config"
	httptransport "carrental/internal/http"
	"carrental/internal/infra"
	"carrental/internal/modules/configurator"
	"carrental/internal/modules/fleet"
	"carrental/internal/modules/pricing"
	"carrental/internal/modules/rental"
	"carrental/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := infra.NewLogger("info", false)
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := infra.NewLogger(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("carrental-api stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	pool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	db := infra.SQLDB(pool)
	defer db.Close()

	var fleetCache *fleet.Cache
	if cfg.Redis.Addr != "" {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		if err := infra.PingRedis(ctx, redisClient); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, fleet cache disabled")
		} else {
			fleetCache = fleet.NewCache(redisClient, cfg.Redis.FleetCacheTTL)
		}
	}

	verifiers := infra.ChainVerifier{}
	var issuer user.TokenIssuer
	if cfg.Auth.JWTSecret != "" {
		jwtIssuer := infra.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		issuer = jwtIssuer
		verifiers = append(verifiers, jwtIssuer)
	}
	if cfg.Firebase.ProjectID != "" {
		fb, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return err
		}
		verifiers = append(verifiers, fb)
	}

	fleetSvc := fleet.NewService(fleet.NewStore(db), fleetCache, log)
	pricingSvc := pricing.NewService(pricing.DefaultEngine(), log)
	rentalSvc := rental.NewService(rental.NewStore(db), log)
	userSvc := user.NewService(user.NewStore(db), issuer, log)
	configuratorSvc := configurator.NewService(fleetSvc, rentalSvc, pricingSvc, cfg.Currency, log)

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Fleet:        fleetSvc,
		Configurator: configuratorSvc,
		Rentals:      rentalSvc,
		Users:        userSvc,
		Verifier:     verifiers,
		Log:          log,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		Pprof:        cfg.HTTP.Pprof,
		Currency:     cfg.Currency,
	})

	return httptransport.Run(ctx, httptransport.NewServer(cfg.HTTP.Addr, router), log)
}
