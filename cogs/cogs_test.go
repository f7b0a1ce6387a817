package cogs

import (
	"github.com/bwmarrin/discordgo"

	"github.com/raceready/dbot/discord"
)

const testGuildID = "guild-1"

// testContext builds a command context the way the dispatcher would for a
// guild interaction.
func testContext(s *discordgo.Session, userID string) *discord.Context {
	return &discord.Context{
		Session: s,
		Interaction: &discordgo.InteractionCreate{
			Interaction: &discordgo.Interaction{
				GuildID: testGuildID,
				Member: &discordgo.Member{
					GuildID: testGuildID,
					User:    &discordgo.User{ID: userID, Username: "tester"},
				},
			},
		},
	}
}

// testSession builds a session whose state contains the test guild.
func testSession(guild *discordgo.Guild) *discordgo.Session {
	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: "bot-1", Username: "raceready"}
	if guild != nil {
		s.State.GuildAdd(guild)
	}
	return s
}
