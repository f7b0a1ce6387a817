// Package cogs contains the bot's command modules. Each cog groups related
// slash commands and, where needed, gateway listeners and schedules.
package cogs

import (
	"github.com/bwmarrin/discordgo"

	"github.com/raceready/dbot/discord"
)

// About is the cog for informational commands.
type About struct{}

// NewAbout creates the about cog.
func NewAbout() *About {
	return &About{}
}

func (a *About) Name() string { return "about" }

type helpRequest struct{}

func (a *About) Functions() []discord.BotFunctionI {
	return []discord.BotFunctionI{
		discord.NewBotFunction("help", "Get philosophical wisdom about Zwift racing", a.handleHelp, nil),
	}
}

func (a *About) handleHelp(_ *discord.Context, _ helpRequest) (*discordgo.InteractionResponseData, error) {
	return &discordgo.InteractionResponseData{
		Content: "Racing on Zwift transcends mere exercise; it's a metaphysical confrontation " +
			"between ego and algorithm — where watts become wisdom, suffering becomes synergy, " +
			"and every virtual climb mirrors the uphill struggles of our digitized humanity.",
	}, nil
}
