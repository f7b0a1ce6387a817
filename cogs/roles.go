package cogs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/raceready/dbot/backend"
	"github.com/raceready/dbot/discord"
)

// roleSyncQueueSize bounds in-flight background sync work. A burst of role
// churn beyond this drops new jobs instead of spawning unbounded concurrent
// calls.
const roleSyncQueueSize = 32

type jobKind int

const (
	jobFullSync jobKind = iota
	jobRoleEvent
	jobUserSync
)

// syncJob carries everything the worker needs, extracted from the session
// cache at enqueue time so the worker never touches shared state.
type syncJob struct {
	kind   jobKind
	userID string // on-behalf-of id for the request headers

	roles []backend.GuildRole // full sync

	action string            // role event: created, updated, deleted
	role   backend.GuildRole // role event

	memberID string   // user sync
	roleIDs  []string // user sync
}

// Roles keeps the backend's notion of guild roles eventually consistent with
// Discord's live state: a manual full sync, a self sync, incremental event
// listeners, an initial sync at startup, and an hourly full sync.
type Roles struct {
	api     *backend.Client
	guildID string

	jobs    chan syncJob
	done    chan struct{}
	session atomic.Pointer[discordgo.Session]
}

// NewRoles creates the role sync cog and starts its background worker.
func NewRoles(api *backend.Client, guildID string) *Roles {
	r := &Roles{
		api:     api,
		guildID: guildID,
		jobs:    make(chan syncJob, roleSyncQueueSize),
		done:    make(chan struct{}),
	}
	go r.worker()
	return r
}

func (r *Roles) Name() string { return "role_sync" }

// Close stops the background worker. Queued jobs are abandoned.
func (r *Roles) Close() {
	close(r.done)
}

type syncRolesRequest struct{}

type syncMyRolesRequest struct{}

func (r *Roles) Functions() []discord.BotFunctionI {
	return []discord.BotFunctionI{
		discord.NewAdminFunction("sync_roles", "Manually sync all guild roles to the database", r.handleSyncRoles),
		discord.NewBotFunction("sync_my_roles", "Sync your roles to the team database", r.handleSyncMyRoles, nil),
	}
}

func (r *Roles) Listeners() []interface{} {
	return []interface{}{
		r.onGuildCreate,
		r.onRoleCreate,
		r.onRoleUpdate,
		r.onRoleDelete,
		r.onMemberUpdate,
	}
}

func (r *Roles) Schedules() []discord.BotScheduleI {
	return []discord.BotScheduleI{
		discord.NewBotSchedule("periodic_role_sync", "0 * * * *", r.executePeriodicSync),
	}
}

// handleSyncRoles performs a synchronous full sync and reports counts.
func (r *Roles) handleSyncRoles(ctx *discord.Context, _ syncRolesRequest) (*discordgo.InteractionResponseData, error) {
	roles, err := r.collectGuildRoles(ctx.Session)
	if err != nil {
		return nil, err
	}

	result, err := r.api.SyncGuildRoles(context.Background(), ctx.UserID(), roles)
	if err != nil {
		return nil, fmt.Errorf("guild role sync failed: %w", err)
	}

	return &discordgo.InteractionResponseData{
		Content: fmt.Sprintf(
			"Role sync complete!\n- Created: %d\n- Updated: %d\n- Deleted: %d\n- Total: %d",
			result.Created, result.Updated, result.Deleted, result.Total),
	}, nil
}

// handleSyncMyRoles pushes the invoking member's own role list.
func (r *Roles) handleSyncMyRoles(ctx *discord.Context, _ syncMyRolesRequest) (*discordgo.InteractionResponseData, error) {
	member := ctx.Member()

	result, err := r.api.SyncUserRoles(context.Background(), member.User.ID, member.Roles)
	if errors.Is(err, backend.ErrNotFound) {
		return &discordgo.InteractionResponseData{
			Content: "Could not sync your roles. Make sure you have an account on the team website.",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user role sync failed: %w", err)
	}

	names := make([]string, 0, len(result.Roles))
	for _, name := range result.Roles {
		names = append(names, name)
	}
	suffix := ""
	if len(names) > 10 {
		names = names[:10]
		suffix = "..."
	}

	return &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("Your roles have been synced!\nRoles: %s%s", strings.Join(names, ", "), suffix),
	}, nil
}

// onGuildCreate fires when the configured guild's full state arrives; it
// seeds the session pointer and runs the initial full sync.
func (r *Roles) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.ID != r.guildID {
		return
	}
	r.session.Store(s)

	slog.Info("guild available, queueing initial role sync", "guild", g.ID, "roles", len(g.Roles))
	r.enqueue(syncJob{
		kind:   jobFullSync,
		userID: botUserID(s),
		roles:  convertRoles(g.Roles),
	})
}

func (r *Roles) onRoleCreate(s *discordgo.Session, e *discordgo.GuildRoleCreate) {
	if e.GuildID != r.guildID {
		return
	}
	slog.Info("role created, queueing sync", "role", e.Role.Name, "role_id", e.Role.ID)
	r.enqueue(syncJob{
		kind:   jobRoleEvent,
		userID: botUserID(s),
		action: "created",
		role:   convertRole(e.Role),
	})
}

func (r *Roles) onRoleUpdate(s *discordgo.Session, e *discordgo.GuildRoleUpdate) {
	if e.GuildID != r.guildID {
		return
	}
	slog.Info("role updated, queueing sync", "role", e.Role.Name, "role_id", e.Role.ID)
	r.enqueue(syncJob{
		kind:   jobRoleEvent,
		userID: botUserID(s),
		action: "updated",
		role:   convertRole(e.Role),
	})
}

func (r *Roles) onRoleDelete(s *discordgo.Session, e *discordgo.GuildRoleDelete) {
	if e.GuildID != r.guildID {
		return
	}
	// The role is already gone from the cache; the id is all we have.
	slog.Info("role deleted, queueing sync", "role_id", e.RoleID)
	r.enqueue(syncJob{
		kind:   jobRoleEvent,
		userID: botUserID(s),
		action: "deleted",
		role:   backend.GuildRole{ID: e.RoleID},
	})
}

func (r *Roles) onMemberUpdate(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	if e.GuildID != r.guildID || e.User == nil {
		return
	}
	if e.BeforeUpdate != nil && sameRoleSet(e.BeforeUpdate.Roles, e.Roles) {
		return
	}
	slog.Info("member roles changed, queueing sync", "member_id", e.User.ID)
	r.enqueue(syncJob{
		kind:     jobUserSync,
		userID:   e.User.ID,
		memberID: e.User.ID,
		roleIDs:  append([]string(nil), e.Roles...),
	})
}

// executePeriodicSync is the hourly schedule body. It enqueues the same full
// sync the manual command performs.
func (r *Roles) executePeriodicSync() error {
	s := r.session.Load()
	if s == nil {
		return fmt.Errorf("guild state not available yet")
	}

	roles, err := r.collectGuildRoles(s)
	if err != nil {
		return err
	}

	r.enqueue(syncJob{
		kind:   jobFullSync,
		userID: botUserID(s),
		roles:  roles,
	})
	return nil
}

// enqueue adds a job to the bounded queue, dropping it with a log when the
// queue is full.
func (r *Roles) enqueue(job syncJob) {
	select {
	case r.jobs <- job:
	default:
		slog.Warn("role sync queue full, dropping job", "kind", int(job.kind))
	}
}

// worker drains the queue one job at a time. Failures are logged only; no
// user is waiting on background syncs.
func (r *Roles) worker() {
	for {
		select {
		case <-r.done:
			return
		case job := <-r.jobs:
			r.process(job)
		}
	}
}

func (r *Roles) process(job syncJob) {
	switch job.kind {
	case jobFullSync:
		result, err := r.api.SyncGuildRoles(context.Background(), job.userID, job.roles)
		if err != nil {
			slog.Error("background guild role sync failed", "error", err)
			return
		}
		slog.Info("synced guild roles",
			"created", result.Created, "updated", result.Updated,
			"deleted", result.Deleted, "total", result.Total)

	case jobRoleEvent:
		if err := r.api.RoleEvent(context.Background(), job.userID, job.action, job.role); err != nil {
			slog.Error("role event sync failed", "action", job.action, "role_id", job.role.ID, "error", err)
			return
		}
		slog.Info("pushed role event", "action", job.action, "role_id", job.role.ID)

	case jobUserSync:
		result, err := r.api.SyncUserRoles(context.Background(), job.memberID, job.roleIDs)
		if errors.Is(err, backend.ErrNotFound) {
			// Members without website accounts are expected.
			return
		}
		if err != nil {
			slog.Error("user role sync failed", "member_id", job.memberID, "error", err)
			return
		}
		slog.Info("synced user roles", "member_id", job.memberID, "roles_synced", result.RolesSynced)
	}
}

// collectGuildRoles snapshots the configured guild's roles from the session
// cache.
func (r *Roles) collectGuildRoles(s *discordgo.Session) ([]backend.GuildRole, error) {
	guild, err := s.State.Guild(r.guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not in state: %w", r.guildID, err)
	}
	return convertRoles(guild.Roles), nil
}

func convertRoles(roles []*discordgo.Role) []backend.GuildRole {
	out := make([]backend.GuildRole, 0, len(roles))
	for _, role := range roles {
		out = append(out, convertRole(role))
	}
	return out
}

func convertRole(role *discordgo.Role) backend.GuildRole {
	return backend.GuildRole{
		ID:          role.ID,
		Name:        role.Name,
		Color:       role.Color,
		Position:    role.Position,
		Managed:     role.Managed,
		Mentionable: role.Mentionable,
	}
}

func sameRoleSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// botUserID returns the bot's own user id for background requests made on
// nobody's behalf.
func botUserID(s *discordgo.Session) string {
	if s.State != nil && s.State.User != nil {
		return s.State.User.ID
	}
	return ""
}
