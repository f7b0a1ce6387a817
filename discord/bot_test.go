package discord

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApplicationCommands(t *testing.T) {
	type namedRequest struct {
		Name string `discord:"description:Who to look up"`
	}

	functions := []BotFunctionI{
		NewBotFunction("lookup", "Look someone up", func(_ *Context, _ namedRequest) (*discordgo.InteractionResponseData, error) {
			return nil, nil
		}, nil),
		NewAdminFunction("sync_roles", "Sync all roles", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
			return nil, nil
		}),
	}

	commands, err := buildApplicationCommands(functions)
	require.NoError(t, err)
	require.Len(t, commands, 2)

	assert.Equal(t, "lookup", commands[0].Name)
	assert.Equal(t, "Look someone up", commands[0].Description)
	require.Len(t, commands[0].Options, 1)
	assert.Nil(t, commands[0].DefaultMemberPermissions)

	assert.Equal(t, "sync_roles", commands[1].Name)
	require.NotNil(t, commands[1].DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionAdministrator), *commands[1].DefaultMemberPermissions)
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(nil))
	assert.False(t, IsAdmin(&discordgo.Member{Permissions: discordgo.PermissionSendMessages}))
	assert.True(t, IsAdmin(&discordgo.Member{Permissions: discordgo.PermissionAdministrator}))
	assert.True(t, IsAdmin(&discordgo.Member{
		Permissions: discordgo.PermissionAdministrator | discordgo.PermissionSendMessages,
	}))
}

type capturedRequest struct {
	method string
	path   string
	body   []byte
}

// stubTransport records every REST call the session makes and answers with an
// empty JSON object.
type stubTransport struct {
	requests []capturedRequest
}

func (st *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	st.requests = append(st.requests, capturedRequest{
		method: req.Method,
		path:   req.URL.Path,
		body:   body,
	})
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader("{}")),
	}, nil
}

// newStubSession builds a session whose REST calls go to a stub transport
// instead of Discord.
func newStubSession(t *testing.T) (*discordgo.Session, *stubTransport) {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)

	transport := &stubTransport{}
	s.Client = &http.Client{Transport: transport}
	return s, transport
}

func commandInteraction(name string, member *discordgo.Member) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:      "interaction-1",
			AppID:   "app-1",
			Token:   "token-1",
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "guild-1",
			Member:  member,
			Data:    discordgo.ApplicationCommandInteractionData{Name: name},
		},
	}
}

// interactionCallback mirrors the wire shape of an interaction response.
type interactionCallback struct {
	Type int `json:"type"`
	Data struct {
		Content string `json:"content"`
		Flags   int    `json:"flags"`
	} `json:"data"`
}

func decodeCallback(t *testing.T, body []byte) interactionCallback {
	t.Helper()
	var cb interactionCallback
	require.NoError(t, json.Unmarshal(body, &cb))
	return cb
}

func TestHandleCommandRejectsNonAdminBeforeHandler(t *testing.T) {
	s, transport := newStubSession(t)

	handlerCalled := false
	b := &Bot{
		session: s,
		config:  BotConfig{GuildID: "guild-1"},
		functions: []BotFunctionI{
			NewAdminFunction("sync_roles", "Sync all roles", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
				handlerCalled = true
				return &discordgo.InteractionResponseData{Content: "synced"}, nil
			}),
		},
	}

	b.handleCommand(s, commandInteraction("sync_roles", &discordgo.Member{
		User:        &discordgo.User{ID: "user-1"},
		Permissions: discordgo.PermissionSendMessages,
	}))

	// The handler never ran, so nothing downstream of it could have been
	// called either.
	assert.False(t, handlerCalled)

	require.Len(t, transport.requests, 1)
	cb := decodeCallback(t, transport.requests[0].body)
	assert.Equal(t, int(discordgo.InteractionResponseChannelMessageWithSource), cb.Type)
	assert.Equal(t, int(discordgo.MessageFlagsEphemeral), cb.Data.Flags)
	assert.Contains(t, cb.Data.Content, "administrator")
}

func TestHandleCommandFailureSendsGenericReply(t *testing.T) {
	s, transport := newStubSession(t)

	b := &Bot{
		session: s,
		config:  BotConfig{GuildID: "guild-1"},
		functions: []BotFunctionI{
			NewBotFunction("team_links", "Get links", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
				return nil, errors.New("backend unreachable")
			}, nil),
		},
	}

	b.handleCommand(s, commandInteraction("team_links", &discordgo.Member{
		User: &discordgo.User{ID: "user-1"},
	}))

	require.Len(t, transport.requests, 2)

	// The deferred ack carries the ephemeral flag, so every later reply on
	// this interaction is invoker-only.
	ack := decodeCallback(t, transport.requests[0].body)
	assert.Equal(t, int(discordgo.InteractionResponseDeferredChannelMessageWithSource), ack.Type)
	assert.Equal(t, int(discordgo.MessageFlagsEphemeral), ack.Data.Flags)

	edit := transport.requests[1]
	assert.Equal(t, http.MethodPatch, edit.method)

	var payload struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(edit.body, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "Error", payload.Embeds[0].Title)
	assert.Equal(t, genericFailure, payload.Embeds[0].Description)
}

func TestHandleCommandNilResponseFallsBack(t *testing.T) {
	s, transport := newStubSession(t)

	b := &Bot{
		session: s,
		config:  BotConfig{GuildID: "guild-1"},
		functions: []BotFunctionI{
			NewBotFunction("quiet", "Says nothing", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
				return nil, nil
			}, nil),
		},
	}

	b.handleCommand(s, commandInteraction("quiet", &discordgo.Member{
		User: &discordgo.User{ID: "user-1"},
	}))

	require.Len(t, transport.requests, 2)

	var payload struct {
		Embeds []struct {
			Description string `json:"description"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(transport.requests[1].body, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, genericFailure, payload.Embeds[0].Description)
}

func TestHandleCommandSuccessKeepsEphemeralAck(t *testing.T) {
	s, transport := newStubSession(t)

	b := &Bot{
		session: s,
		config:  BotConfig{GuildID: "guild-1"},
		functions: []BotFunctionI{
			NewBotFunction("hello", "Say hello", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
				return &discordgo.InteractionResponseData{Content: "hi there"}, nil
			}, nil),
		},
	}

	b.handleCommand(s, commandInteraction("hello", &discordgo.Member{
		User: &discordgo.User{ID: "user-1"},
	}))

	require.Len(t, transport.requests, 2)

	ack := decodeCallback(t, transport.requests[0].body)
	assert.Equal(t, int(discordgo.InteractionResponseDeferredChannelMessageWithSource), ack.Type)
	assert.Equal(t, int(discordgo.MessageFlagsEphemeral), ack.Data.Flags)

	var payload struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(transport.requests[1].body, &payload))
	assert.Equal(t, "hi there", payload.Content)
}

func TestHandleCommandRejectsWrongGuild(t *testing.T) {
	s, transport := newStubSession(t)

	b := &Bot{
		session: s,
		config:  BotConfig{GuildID: "other-guild"},
		functions: []BotFunctionI{
			NewBotFunction("hello", "Say hello", func(_ *Context, _ struct{}) (*discordgo.InteractionResponseData, error) {
				t.Fatal("handler should not run for a foreign guild")
				return nil, nil
			}, nil),
		},
	}

	b.handleCommand(s, commandInteraction("hello", &discordgo.Member{
		User: &discordgo.User{ID: "user-1"},
	}))

	require.Len(t, transport.requests, 1)
	cb := decodeCallback(t, transport.requests[0].body)
	assert.Equal(t, int(discordgo.MessageFlagsEphemeral), cb.Data.Flags)
	assert.Contains(t, cb.Data.Content, "configured guild")
}
