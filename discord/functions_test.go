package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchRequest struct {
	Name  string `discord:"description:Name to search for"`
	Limit int    `discord:"optional,default:10"`
}

func TestHandleInteractionDecodesOptions(t *testing.T) {
	var got searchRequest
	fn := NewBotFunction("search", "Search", func(_ *Context, req searchRequest) (*discordgo.InteractionResponseData, error) {
		got = req
		return &discordgo.InteractionResponseData{Content: "ok"}, nil
	}, nil)

	data := &discordgo.ApplicationCommandInteractionData{
		Name: "search",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "name", Type: discordgo.ApplicationCommandOptionString, Value: "anna"},
			{Name: "limit", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		},
	}

	resp, err := fn.HandleInteraction(&Context{}, data)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "anna", got.Name)
	assert.Equal(t, 3, got.Limit)
}

func TestHandleInteractionAppliesDefaults(t *testing.T) {
	var got searchRequest
	fn := NewBotFunction("search", "Search", func(_ *Context, req searchRequest) (*discordgo.InteractionResponseData, error) {
		got = req
		return &discordgo.InteractionResponseData{}, nil
	}, nil)

	data := &discordgo.ApplicationCommandInteractionData{
		Name: "search",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "name", Type: discordgo.ApplicationCommandOptionString, Value: "anna"},
		},
	}

	_, err := fn.HandleInteraction(&Context{}, data)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Limit)
}

func TestAdminFunction(t *testing.T) {
	fn := NewAdminFunction("sync_roles", "Sync roles", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
		return nil, nil
	})

	assert.True(t, fn.AdminOnly())
	assert.Nil(t, fn.GetAutocomplete())

	regular := NewBotFunction("help", "Help", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
		return nil, nil
	}, nil)
	assert.False(t, regular.AdminOnly())
}

func TestContextUserID(t *testing.T) {
	guildCtx := &Context{Interaction: &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: "member-1"}},
		},
	}}
	assert.Equal(t, "member-1", guildCtx.UserID())

	dmCtx := &Context{Interaction: &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			User: &discordgo.User{ID: "dm-user"},
		},
	}}
	assert.Equal(t, "dm-user", dmCtx.UserID())
}
