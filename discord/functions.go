package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/mitchellh/mapstructure"
)

// Request is the marker interface for command request definitions. A request
// struct's fields become the command's options; the "discord" struct tag
// controls option metadata (see helpers.go).
type Request interface{}

// Context carries everything a command handler needs for one interaction.
// Handlers receive it explicitly instead of reaching for shared state.
type Context struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
}

// GuildID returns the guild the interaction was invoked in.
func (c *Context) GuildID() string {
	return c.Interaction.GuildID
}

// Member returns the invoking guild member, or nil outside a guild.
func (c *Context) Member() *discordgo.Member {
	return c.Interaction.Member
}

// UserID returns the invoking user's id.
func (c *Context) UserID() string {
	if c.Interaction.Member != nil && c.Interaction.Member.User != nil {
		return c.Interaction.Member.User.ID
	}
	if c.Interaction.User != nil {
		return c.Interaction.User.ID
	}
	return ""
}

// Autocomplete is implemented by commands that provide option suggestions.
type Autocomplete interface {
	// Complete takes the focused option's current input and returns choices.
	Complete(ctx *Context, input string) ([]*discordgo.ApplicationCommandOptionChoice, error)
}

// BotFunctionI is the common interface for all bot command functions.
type BotFunctionI interface {
	GetName() string
	GetDescription() string
	GetRequestPrototype() Request
	// AdminOnly marks commands restricted to guild administrators.
	AdminOnly() bool
	// HandleInteraction decodes interaction data into a request struct and
	// calls the handler, returning response data to send to Discord.
	HandleInteraction(ctx *Context, data *discordgo.ApplicationCommandInteractionData) (*discordgo.InteractionResponseData, error)
	// GetAutocomplete returns the command's autocomplete implementation, or nil.
	GetAutocomplete() Autocomplete
}

// GenericBotFunction is a generic implementation of BotFunctionI.
type GenericBotFunction[T Request] struct {
	Name        string
	Description string
	Admin       bool
	// Handler is the function executed for the command.
	Handler func(*Context, T) (*discordgo.InteractionResponseData, error)
	// Autocomplete optionally provides option choices.
	Autocomplete Autocomplete
}

func (bf *GenericBotFunction[T]) GetName() string        { return bf.Name }
func (bf *GenericBotFunction[T]) GetDescription() string { return bf.Description }
func (bf *GenericBotFunction[T]) AdminOnly() bool        { return bf.Admin }

func (bf *GenericBotFunction[T]) GetRequestPrototype() Request {
	var req T
	return req
}

func (bf *GenericBotFunction[T]) GetAutocomplete() Autocomplete { return bf.Autocomplete }

// HandleInteraction builds a request of type T from the interaction options
// and invokes the handler.
func (bf *GenericBotFunction[T]) HandleInteraction(ctx *Context, data *discordgo.ApplicationCommandInteractionData) (*discordgo.InteractionResponseData, error) {
	var req T

	optsMap := make(map[string]interface{}, len(data.Options))
	for _, opt := range data.Options {
		optsMap[opt.Name] = opt.Value
	}

	// Option names are the lowercased field names, so mapstructure's
	// case-insensitive field matching lines them up.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(optsMap); err != nil {
		return nil, err
	}

	if err := setDefaults(&req); err != nil {
		return nil, err
	}

	return bf.Handler(ctx, req)
}

// NewBotFunction constructs a command available to every guild member.
func NewBotFunction[T Request](name, description string, handler func(*Context, T) (*discordgo.InteractionResponseData, error), autocomplete Autocomplete) BotFunctionI {
	return &GenericBotFunction[T]{
		Name:         name,
		Description:  description,
		Handler:      handler,
		Autocomplete: autocomplete,
	}
}

// NewAdminFunction constructs a command restricted to guild administrators.
func NewAdminFunction[T Request](name, description string, handler func(*Context, T) (*discordgo.InteractionResponseData, error)) BotFunctionI {
	return &GenericBotFunction[T]{
		Name:        name,
		Description: description,
		Admin:       true,
		Handler:     handler,
	}
}
