package cogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/raceready/dbot/backend"
	"github.com/raceready/dbot/discord"
)

// TeamLinks is the cog for the magic-link command.
type TeamLinks struct {
	api *backend.Client
}

// NewTeamLinks creates the team links cog.
func NewTeamLinks(api *backend.Client) *TeamLinks {
	return &TeamLinks{api: api}
}

func (t *TeamLinks) Name() string { return "team_links" }

type teamLinksRequest struct{}

func (t *TeamLinks) Functions() []discord.BotFunctionI {
	return []discord.BotFunctionI{
		discord.NewBotFunction("team_links", "Get a link to the team links page", t.handleTeamLinks, nil),
	}
}

func (t *TeamLinks) handleTeamLinks(ctx *discord.Context, _ teamLinksRequest) (*discordgo.InteractionResponseData, error) {
	link, err := t.api.TeamLink(context.Background(), ctx.UserID())
	if errors.Is(err, backend.ErrNotFound) {
		return &discordgo.InteractionResponseData{
			Content: "Could not generate link.\n\n" +
				"Please make sure you have an account on the team website.",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team link: %w", err)
	}

	expiresIn := link.ExpiresInSeconds
	if expiresIn <= 0 {
		expiresIn = 300
	}

	return &discordgo.InteractionResponseData{
		Content: fmt.Sprintf(
			"Here's your personal link to the Team Links page:\n\n%s\n\n"+
				"This link expires in %d minutes and can only be used once.",
			link.MagicLinkURL, expiresIn/60),
	}, nil
}
