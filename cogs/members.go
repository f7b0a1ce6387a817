package cogs

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/raceready/dbot/backend"
	"github.com/raceready/dbot/discord"
)

// Members is the cog for the bulk member sync command.
type Members struct {
	api     *backend.Client
	guildID string
}

// NewMembers creates the member sync cog.
func NewMembers(api *backend.Client, guildID string) *Members {
	return &Members{api: api, guildID: guildID}
}

func (m *Members) Name() string { return "member_sync" }

type syncMembersRequest struct{}

func (m *Members) Functions() []discord.BotFunctionI {
	return []discord.BotFunctionI{
		discord.NewAdminFunction("sync_members", "Sync all guild members to the database", m.handleSyncMembers),
	}
}

func (m *Members) handleSyncMembers(ctx *discord.Context, _ syncMembersRequest) (*discordgo.InteractionResponseData, error) {
	guild, err := ctx.Session.State.Guild(m.guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not in state: %w", m.guildID, err)
	}

	members := make([]backend.GuildMember, 0, len(guild.Members))
	for _, member := range guild.Members {
		if member.User == nil {
			continue
		}

		avatarHash := member.Avatar
		if avatarHash == "" {
			avatarHash = member.User.Avatar
		}

		joinedAt := ""
		if !member.JoinedAt.IsZero() {
			joinedAt = member.JoinedAt.Format(time.RFC3339)
		}

		members = append(members, backend.GuildMember{
			DiscordID:   member.User.ID,
			Username:    member.User.Username,
			DisplayName: member.DisplayName(),
			Nickname:    member.Nick,
			AvatarHash:  avatarHash,
			Roles:       append([]string(nil), member.Roles...),
			JoinedAt:    joinedAt,
			IsBot:       member.User.Bot,
		})
	}

	result, err := m.api.SyncGuildMembers(context.Background(), ctx.UserID(), members)
	if err != nil {
		return nil, fmt.Errorf("guild member sync failed: %w", err)
	}

	return &discordgo.InteractionResponseData{
		Content: fmt.Sprintf(
			"Member sync complete!\n"+
				"- Created: %d\n- Updated: %d\n- Rejoined: %d\n- Left: %d\n"+
				"- Linked to accounts: %d\n- Total active: %d",
			result.Created, result.Updated, result.Rejoined,
			result.Left, result.Linked, result.TotalActive),
	}, nil
}
