package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/clashwarriors/clash-warriors-sub000/internal/api"
	"github.com/clashwarriors/clash-warriors-sub000/internal/battle"
	"github.com/clashwarriors/clash-warriors-sub000/internal/config"
	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
	"github.com/clashwarriors/clash-warriors-sub000/internal/service"
	"github.com/clashwarriors/clash-warriors-sub000/internal/storage"
)

const sweepEvery = time.Minute

func main() {
	// Local development keeps secrets in a .env file; in containers the
	// variables come from the environment directly.
	_ = godotenv.Load()

	botToken := os.Getenv(constants.EnvTelegramBotToken)
	if botToken == "" && os.Getenv(constants.EnvAuthDisabled) != "1" {
		logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": constants.EnvTelegramBotToken})
	}

	// Load the card and ability configuration file (required). Path may be
	// provided via CLASH_CONFIG or defaults to ./clash_config.json in the
	// current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./clash_config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid clash configuration", err, logging.Fields{"config_path": configPath, "hint": "create a clash_config.json with a 'card_list' array (card_id,name,attack,armor,agility,intelligence,powers,vitality) and an 'ability_list' array (key,name,kind,weights)"})
	}

	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/clash.db"
	}
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	repo := storage.NewSQLiteRepository(db)

	store := battle.NewStore(cfg.Abilities)
	bots := battle.NewScheduler(store, cfg.BotMinDelay, cfg.BotMaxDelay, cfg.BotAbilityKind)
	ctrl := battle.NewController(store, bots, repo, battle.ControllerConfig{
		Timings: cfg.Timings,
		Rewards: cfg.Rewards,
	})

	// Matches that were running when the process stopped get their
	// lifecycle watchers back.
	if err := service.ResumeActiveMatches(repo, ctrl); err != nil {
		logging.Error("failed to resume active matches", err, nil)
	}

	// Background sweeper: purge match rows the in-process cleanup never
	// reached, typically left behind by a crash.
	sweeperStop := make(chan struct{})
	service.StartSweeper(repo, cfg.Timings, 10*time.Second, sweepEvery, sweeperStop)
	defer close(sweeperStop)

	handler := api.NewMatchHandler(repo, store, ctrl, cfg.Cards, cfg.Abilities)

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteCards, handler.Cards)
		apiRoutes.GET(constants.RouteAbilities, handler.Abilities)
		apiRoutes.GET(constants.RouteLeaderboard, handler.Leaderboard)
		apiRoutes.GET(constants.RouteVersion, api.Version)

		// Authenticated endpoints
		protected := apiRoutes.Group("")
		protected.Use(api.AuthRequired(botToken))

		protected.GET(constants.RouteProfile, handler.Profile)
		protected.POST(constants.RouteMatches, handler.CreateMatch)
		protected.GET(constants.RouteMatchByID, handler.GetMatch)
		protected.POST(constants.RouteMatchSelect, handler.SelectCard)
		protected.POST(constants.RouteMatchAbility, handler.SelectAbility)
		protected.POST(constants.RouteMatchEndRound, handler.EndRound)
		protected.POST(constants.RouteMatchCancel, handler.CancelMatch)
		protected.GET(constants.RouteMatchStream, handler.StreamMatch)
	}

	addr := cfg.ServerAddress
	displayAddr := addr
	if len(addr) > 0 && addr[0] == ':' {
		displayAddr = "http://localhost" + addr
	}
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: displayAddr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
