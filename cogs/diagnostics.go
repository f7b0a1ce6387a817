package cogs

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/raceready/dbot/discord"
)

// Diagnostics is the cog for debug-mode commands. It is only handed to the
// bot when the debug flag is set, so /diag does not exist otherwise.
type Diagnostics struct {
	guildID string
	started time.Time
}

// NewDiagnostics creates the diagnostics cog.
func NewDiagnostics(guildID string) *Diagnostics {
	return &Diagnostics{
		guildID: guildID,
		started: time.Now(),
	}
}

func (d *Diagnostics) Name() string { return "diagnostics" }

type diagRequest struct{}

func (d *Diagnostics) Functions() []discord.BotFunctionI {
	return []discord.BotFunctionI{
		discord.NewBotFunction("diag", "Show diagnostic information (debug mode only)", d.handleDiag, nil),
	}
}

func (d *Diagnostics) handleDiag(ctx *discord.Context, _ diagRequest) (*discordgo.InteractionResponseData, error) {
	member := ctx.Member()

	nickname := "None"
	if member.Nick != "" {
		nickname = member.Nick
	}

	var roleLines []string
	for _, roleID := range member.Roles {
		name := roleID
		if role, err := ctx.Session.State.Role(ctx.GuildID(), roleID); err == nil {
			name = role.Name
		}
		roleLines = append(roleLines, fmt.Sprintf("- %s (%s)", name, roleID))
	}
	rolesText := "No roles"
	if len(roleLines) > 0 {
		rolesText = strings.Join(roleLines, "\n")
	}

	response := fmt.Sprintf(
		"**Diagnostic Information**\n"+
			"```\n"+
			"Guild ID:          %s\n"+
			"Discord ID:        %s\n"+
			"Discord Username:  %s\n"+
			"Discord Nickname:  %s\n"+
			"Has Roles:         %t\n"+
			"Uptime:            %s\n"+
			"Gateway Latency:   %s\n"+
			"```\n"+
			"**Roles:**\n%s",
		ctx.GuildID(),
		member.User.ID,
		member.User.Username,
		nickname,
		len(member.Roles) > 0,
		time.Since(d.started).Round(time.Second),
		ctx.Session.HeartbeatLatency().Round(time.Millisecond),
		rolesText,
	)

	return &discordgo.InteractionResponseData{Content: response}, nil
}
