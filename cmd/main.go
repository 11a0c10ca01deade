package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/auth"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/cosign"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/game"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/keymgmt"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/config"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/middleware"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/pubsub"
	hub "github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/ws"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/secret"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/wallet"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/ws"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/firebase"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	setupViper()
	setupZerolog()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := setupDb(cfg)
	client := setupPubSub(ctx, cfg)
	if client != nil {
		defer client.Close()
	}

	var verifier *firebase.TokenVerifier
	if cfg.AuthMode == config.AuthModeFirebase {
		v, err := firebase.NewTokenVerifier(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize firebase")
		}
		verifier = v
	}

	apiRouter, poller := setupApiRouter(ctx, cfg, db, client, verifier)
	defer poller.Stop()

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      apiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", cfg.Port).Str("authMode", cfg.AuthMode).Msg("Starting pokerzk api")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setupDb(cfg config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DbUrl), &gorm.Config{})

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	sqlDb, _ := db.DB()

	sqlDb.SetMaxOpenConns(50)
	sqlDb.SetConnMaxLifetime(time.Minute * 10)

	err = db.AutoMigrate(
		&model.Player{},
		&model.CustodialWallet{},
		&model.SeedSecretRecord{},
		&model.CurrentGame{},
		&model.StartGameOffer{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	return db
}

func setupPubSub(ctx context.Context, cfg config.Config) *pubsub.Client {
	if cfg.GoogleProjectId == "" {
		log.Info().Msg("No Google project configured, running without pubsub")
		return nil
	}
	client, err := pubsub.NewClient(ctx, cfg.GoogleProjectId)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pubsub client")
	}
	return client
}

func setupApiRouter(ctx context.Context, cfg config.Config, db *gorm.DB, client *pubsub.Client, verifier *firebase.TokenVerifier) (*gin.Engine, *game.Poller) {
	apiRouter := gin.Default()
	middleware.RegisterGlobalMiddleware(apiRouter, cfg.AllowedOrigins)
	routerGroup := apiRouter.Group("/pokerzk-api")

	rpcLedger, err := blockchain.NewRPCLedger(cfg.LedgerRpcUrl, cfg.LedgerTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up ledger gateway")
	}
	ledger := blockchain.NewRetryingLedger(rpcLedger, cfg.RetryAttempts)
	index := secret.NewGormGameIndex(db)
	notificationHub := hub.NewNotificationHub()

	games := game.NewService(ledger, game.Options{
		Contract:    cfg.ContractAddress,
		Network:     cfg.Network,
		AuthLedgers: cfg.LedgersFor(cfg.AuthTTL),
		EventWindow: cfg.EventWindowLedgers,
		EventLimit:  cfg.EventPageLimit,
		Secrets:     secret.NewGormStore(db),
		Index:       index,
	})
	poller := game.NewPoller(ctx, games, notificationHub, game.Intervals{
		CommitFast: cfg.PollCommitFast,
		Commit:     cfg.PollCommit,
		Default:    cfg.PollDefault,
		Lobby:      cfg.PollLobby,
	})
	games.SetTracker(poller)
	poller.StartLobby()

	var walletPublisher wallet.Publisher
	var offerPublisher cosign.Publisher
	if client != nil {
		walletPublisher = client
		offerPublisher = client
	}

	wallets := wallet.NewService(db, wallet.Options{
		Keys: keymgmt.KmsKeys{
			ProjectId:  cfg.KmsProjectId,
			LocationId: cfg.KmsLocationId,
			KeyRingId:  cfg.KmsKeyRingId,
		},
		Publisher:    walletPublisher,
		Notifier:     notificationHub,
		AccountTopic: cfg.AccountRequestTopic,
	})

	var local blockchain.Signer
	if cfg.AuthMode == config.AuthModeLocal {
		signer, err := blockchain.GetLocalAuthorizer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load local signer")
		}
		local = signer
	}
	player := middleware.Player(cfg.AuthMode, verifier, wallets, local)
	var identity []gin.HandlerFunc
	if cfg.AuthMode == config.AuthModeFirebase {
		identity = []gin.HandlerFunc{middleware.VerifyAuthToken(verifier)}
	}

	offers := cosign.NewService(
		cosign.NewOrchestrator(ledger, cosign.Options{
			Contract:    cfg.ContractAddress,
			Network:     cfg.Network,
			AuthLedgers: cfg.LedgersFor(cfg.MultiSigAuthTTL),
		}),
		cosign.ServiceOptions{
			Offers:     cosign.NewOfferStore(db),
			Publisher:  offerPublisher,
			Notifier:   notificationHub,
			Index:      index,
			Tracker:    poller,
			OfferTopic: cfg.StartGameOfferTopic,
		},
	)

	if client != nil {
		go client.Subscribe(pubsub.SubscriptionHandler{
			SubscriptionId: cfg.StartGameOfferSubscriber,
			Handler:        pubsub.JSONHandler("OfferCreated", offers.HandleOfferCreated),
		})
		go client.Subscribe(pubsub.SubscriptionHandler{
			SubscriptionId: cfg.AccountCreatedSubscription,
			Handler:        pubsub.JSONHandler("AccountCreated", wallets.HandleAccountCreated),
		})
	}

	game.RegisterRoutes(routerGroup, games, player)
	cosign.RegisterRoutes(routerGroup, offers, player)
	ws.RegisterRoutes(routerGroup, notificationHub, poller, player, identity)
	if cfg.AuthMode == config.AuthModeFirebase {
		auth.RegisterRoutes(routerGroup, wallets, cfg.GoogleProjectApiKey)
		wallet.RegisterRoutes(routerGroup, wallets, identity)
	}

	return apiRouter, poller
}

func setupViper() {
	viper.AutomaticEnv()
	viper.SetConfigFile("./.env")
	if err := viper.ReadInConfig(); err != nil {
		log.Debug().Err(err).Msg("No .env file, using environment only")
	}
	config.SetDefaults()
}

func setupZerolog() {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
