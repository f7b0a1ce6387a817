package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

const (
	// genericFailure is the reply shown when a handler fails. Details stay in
	// the logs, not in the channel.
	genericFailure = "Something went wrong talking to the team server. Please try again later."

	errorColor = 0xFF0000
)

// BotConfig contains configuration for the bot.
type BotConfig struct {
	BotToken string
	// GuildID is the only guild commands are registered and served in.
	GuildID string
}

// Cog is a self-contained group of related command functions.
type Cog interface {
	Name() string
	Functions() []BotFunctionI
}

// ListenerProvider is implemented by cogs that react to gateway events.
// Listeners are discordgo handler funcs passed to Session.AddHandler.
type ListenerProvider interface {
	Listeners() []interface{}
}

// ScheduleProvider is implemented by cogs that run recurring tasks.
type ScheduleProvider interface {
	Schedules() []BotScheduleI
}

// Bot encapsulates the discordgo session, configuration, registered command
// functions, and schedules.
type Bot struct {
	session         *discordgo.Session
	config          BotConfig
	functions       []BotFunctionI
	scheduleManager *scheduleManager
}

// NewBot creates the session, wires up every cog's commands, listeners, and
// schedules, opens the gateway connection, and registers the slash commands
// on the configured guild.
func NewBot(cfg BotConfig, cogs []Cog) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	// Guilds for role events, GuildMembers for member-update events and the
	// member cache, MessageContent on top of the slash-command baseline.
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsMessageContent

	bot := &Bot{
		session: dg,
		config:  cfg,
	}

	var schedules []BotScheduleI
	for _, cog := range cogs {
		fns := cog.Functions()
		bot.functions = append(bot.functions, fns...)

		names := make([]string, 0, len(fns))
		for _, fn := range fns {
			names = append(names, fn.GetName())
		}
		slog.Info("loaded cog", "cog", cog.Name(), "commands", names)

		if lp, ok := cog.(ListenerProvider); ok {
			for _, listener := range lp.Listeners() {
				dg.AddHandler(listener)
			}
		}
		if sp, ok := cog.(ScheduleProvider); ok {
			schedules = append(schedules, sp.Schedules()...)
		}
	}

	dg.AddHandler(bot.onReady)
	dg.AddHandler(bot.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return nil, err
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, err
	}

	if len(schedules) > 0 {
		bot.scheduleManager = newScheduleManager(schedules)
		if err := bot.scheduleManager.start(); err != nil {
			dg.Close()
			return nil, err
		}
	}

	return bot, nil
}

// buildApplicationCommands turns command functions into the application
// command definitions registered with Discord. Admin-only functions carry
// administrator default member permissions so the platform hides them from
// everyone else.
func buildApplicationCommands(functions []BotFunctionI) ([]*discordgo.ApplicationCommand, error) {
	adminPerm := int64(discordgo.PermissionAdministrator)

	commands := make([]*discordgo.ApplicationCommand, 0, len(functions))
	for _, fn := range functions {
		options, err := structToCommandOptions(fn.GetRequestPrototype())
		if err != nil {
			return nil, fmt.Errorf("failed to generate options for %s: %w", fn.GetName(), err)
		}
		cmd := &discordgo.ApplicationCommand{
			Name:        fn.GetName(),
			Description: fn.GetDescription(),
			Options:     options,
		}
		if fn.AdminOnly() {
			cmd.DefaultMemberPermissions = &adminPerm
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// registerCommands overwrites the configured guild's command set with the
// bot's functions in one call.
func (b *Bot) registerCommands() error {
	commands, err := buildApplicationCommands(b.functions)
	if err != nil {
		return err
	}

	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.GuildID, commands); err != nil {
		return fmt.Errorf("failed to register guild commands: %w", err)
	}
	slog.Info("registered guild commands", "guild", b.config.GuildID, "count", len(commands))
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("connected to gateway", "user", r.User.Username, "guilds", len(r.Guilds))
}

// findFunction returns the registered function with the given name, or nil.
func (b *Bot) findFunction(name string) BotFunctionI {
	for _, fn := range b.functions {
		if fn.GetName() == name {
			return fn
		}
	}
	return nil
}

// onInteractionCreate routes interactions to the matching command function.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmdData := i.ApplicationCommandData()
	ctx := &Context{Session: s, Interaction: i}

	fn := b.findFunction(cmdData.Name)
	if fn == nil {
		slog.Warn("received unknown command", "command", cmdData.Name)
		respondEphemeral(s, i, "Unknown command: "+cmdData.Name)
		return
	}

	if i.Member == nil {
		respondEphemeral(s, i, "This command can only be used in a server.")
		return
	}
	if i.GuildID != b.config.GuildID {
		respondEphemeral(s, i, "This command can only be used in the configured guild.")
		return
	}

	// Admin commands are rejected before the handler runs, so no backend
	// call is ever made on behalf of a non-admin.
	if fn.AdminOnly() && !IsAdmin(i.Member) {
		slog.Warn("rejected admin command", "command", fn.GetName(), "user", ctx.UserID())
		respondEphemeral(s, i, "You need administrator permissions to use this command.")
		return
	}

	// Acknowledge immediately; handlers do network I/O. The deferred flags
	// make every reply on this interaction invoker-only.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		slog.Error("failed to acknowledge interaction", "command", fn.GetName(), "error", err)
		return
	}

	respData, err := fn.HandleInteraction(ctx, &cmdData)
	if err != nil {
		slog.Error("command failed", "command", fn.GetName(), "user", ctx.UserID(), "error", err)
		respData = nil
	}
	if respData == nil {
		respData = &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Error",
				Description: genericFailure,
				Color:       errorColor,
			}},
		}
	}

	edit := &discordgo.WebhookEdit{}
	if respData.Content != "" {
		edit.Content = &respData.Content
	}
	if len(respData.Embeds) > 0 {
		edit.Embeds = &respData.Embeds
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		slog.Error("failed to send command response", "command", fn.GetName(), "error", err)
	}
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmdData := i.ApplicationCommandData()

	fn := b.findFunction(cmdData.Name)
	if fn == nil || fn.GetAutocomplete() == nil {
		return
	}

	var input string
	for _, opt := range cmdData.Options {
		if opt.Focused {
			input, _ = opt.Value.(string)
			break
		}
	}

	choices, err := fn.GetAutocomplete().Complete(&Context{Session: s, Interaction: i}, input)
	if err != nil {
		// Best effort: an empty suggestion list beats an error banner.
		slog.Error("autocomplete failed", "command", fn.GetName(), "error", err)
		choices = nil
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		slog.Error("failed to send autocomplete choices", "command", fn.GetName(), "error", err)
	}
}

// respondEphemeral sends an immediate invoker-only text reply.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("failed to respond to interaction", "error", err)
	}
}

// IsAdmin reports whether the member holds administrator permissions in the
// invocation channel.
func IsAdmin(member *discordgo.Member) bool {
	return member != nil && member.Permissions&discordgo.PermissionAdministrator != 0
}

// Session exposes the underlying discordgo session.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Close gracefully stops the schedule manager and closes the session.
func (b *Bot) Close() error {
	slog.Info("shutting down bot")
	if b.scheduleManager != nil {
		b.scheduleManager.stop()
	}
	return b.session.Close()
}
