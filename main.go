package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/raceready/dbot/backend"
	"github.com/raceready/dbot/cogs"
	"github.com/raceready/dbot/config"
	"github.com/raceready/dbot/discord"
	"github.com/raceready/dbot/log"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	godotenv.Load()

	handler := log.NewPrettyHandler(os.Stdout, log.Options{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))

	slog.Info("race ready bot starting")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded", "environment", cfg.Environment, "debug", cfg.Debug)

	api := backend.New(cfg.API.URL, cfg.API.Key, cfg.Discord.GuildID)

	rolesCog := cogs.NewRoles(api, cfg.Discord.GuildID)
	defer rolesCog.Close()

	botCogs := []discord.Cog{
		cogs.NewAbout(),
		cogs.NewTeamLinks(api),
		cogs.NewProfile(api),
		rolesCog,
		cogs.NewMembers(api, cfg.Discord.GuildID),
	}
	if cfg.Debug {
		botCogs = append(botCogs, cogs.NewDiagnostics(cfg.Discord.GuildID))
	}

	bot, err := discord.NewBot(discord.BotConfig{
		BotToken: cfg.Discord.Token,
		GuildID:  cfg.Discord.GuildID,
	}, botCogs)
	if err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	slog.Info("bot is now running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	if err := bot.Close(); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
}
