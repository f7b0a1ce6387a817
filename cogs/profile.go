package cogs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/raceready/dbot/backend"
	"github.com/raceready/dbot/discord"
)

const profileColor = 0xE67E22

// divToCat maps ZwiftPower divisions to categories, mirroring the backend's
// own mapping.
var divToCat = map[int]string{
	5:  "A+",
	10: "A",
	20: "B",
	30: "C",
	40: "D",
	50: "E",
}

// Profile is the cog for racing-profile commands and the ZwiftPower refresh
// triggers.
type Profile struct {
	api *backend.Client
}

// NewProfile creates the profile cog.
func NewProfile(api *backend.Client) *Profile {
	return &Profile{api: api}
}

func (p *Profile) Name() string { return "zwiftpower" }

type myProfileRequest struct{}

type teammateProfileRequest struct {
	Name string `discord:"description:Search for a teammate by name,autocomplete"`
}

type updateRequest struct{}

func (p *Profile) Functions() []discord.BotFunctionI {
	return []discord.BotFunctionI{
		discord.NewBotFunction("my_profile", "View your Zwift racing profile", p.handleMyProfile, nil),
		discord.NewBotFunction("teammate_profile", "View a teammate's Zwift racing profile", p.handleTeammateProfile, &teammateSearch{api: p.api}),
		discord.NewAdminFunction("update_zp_team", "Update team roster from ZwiftPower", p.handleUpdateTeam),
		discord.NewAdminFunction("update_zp_results", "Update team results from ZwiftPower", p.handleUpdateResults),
	}
}

func (p *Profile) handleMyProfile(ctx *discord.Context, _ myProfileRequest) (*discordgo.InteractionResponseData, error) {
	profile, err := p.api.MyProfile(context.Background(), ctx.UserID())
	if errors.Is(err, backend.ErrNotFound) {
		return &discordgo.InteractionResponseData{
			Content: "Profile not found. Make sure your Zwift ID is linked on the team website.",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	embed := buildProfileEmbed(profile, displayName(ctx.Member()))
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, nil
}

func (p *Profile) handleTeammateProfile(ctx *discord.Context, req teammateProfileRequest) (*discordgo.InteractionResponseData, error) {
	// Autocomplete selections carry the zwid as the option value; free text
	// is resolved through the backend's search.
	zwid, err := strconv.ParseInt(req.Name, 10, 64)
	if err != nil {
		matches, err := p.api.SearchTeammates(context.Background(), ctx.UserID(), req.Name)
		if err != nil {
			return nil, fmt.Errorf("teammate search failed: %w", err)
		}
		if len(matches) == 0 {
			return &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("No teammate found matching %q.", req.Name),
			}, nil
		}
		// The backend orders matches; take its best one.
		zwid = matches[0].Zwid
	}

	profile, err := p.api.TeammateProfile(context.Background(), ctx.UserID(), zwid)
	if errors.Is(err, backend.ErrNotFound) {
		return &discordgo.InteractionResponseData{Content: "Teammate not found."}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teammate profile: %w", err)
	}

	embed := buildProfileEmbed(profile, displayName(ctx.Member()))
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, nil
}

func (p *Profile) handleUpdateTeam(ctx *discord.Context, _ updateRequest) (*discordgo.InteractionResponseData, error) {
	if err := p.api.UpdateZPTeam(context.Background(), ctx.UserID()); err != nil {
		return nil, fmt.Errorf("failed to trigger team update: %w", err)
	}
	return &discordgo.InteractionResponseData{
		Content: "ZwiftPower team update has been queued.\n" +
			"The team roster will be updated in the background.",
	}, nil
}

func (p *Profile) handleUpdateResults(ctx *discord.Context, _ updateRequest) (*discordgo.InteractionResponseData, error) {
	if err := p.api.UpdateZPResults(context.Background(), ctx.UserID()); err != nil {
		return nil, fmt.Errorf("failed to trigger results update: %w", err)
	}
	return &discordgo.InteractionResponseData{
		Content: "ZwiftPower results update has been queued.\n" +
			"Team results will be updated in the background.",
	}, nil
}

// teammateSearch provides autocomplete for the teammate_profile name option.
type teammateSearch struct {
	api *backend.Client
}

func (t *teammateSearch) Complete(ctx *discord.Context, input string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	if len(input) < 2 {
		return nil, nil
	}

	matches, err := t.api.SearchTeammates(context.Background(), ctx.UserID(), input)
	if err != nil {
		return nil, err
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(matches))
	for _, m := range matches {
		label := m.Name
		if m.Flag != "" {
			label = fmt.Sprintf("%s (%s)", m.Name, m.Flag)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  label,
			Value: strconv.FormatInt(m.Zwid, 10),
		})
	}
	return choices, nil
}

func displayName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return member.User.Username
	}
	return ""
}

// buildProfileEmbed renders a rider's combined ZwiftPower and Zwift Racing
// profile. Sections with no data are omitted.
func buildProfileEmbed(data *backend.Profile, fallbackName string) *discordgo.MessageEmbed {
	zp := data.ZwiftPower
	zr := data.ZwiftRacing

	name := fallbackName
	if zp != nil && zp.Name != "" {
		name = zp.Name
	} else if zr != nil && zr.Name != "" {
		name = zr.Name
	}

	embed := &discordgo.MessageEmbed{
		Title: "Profile: " + name,
		Color: profileColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Zwift ID: %d", data.Zwid),
		},
	}

	if account := data.Account; account != nil {
		discordName := account.DiscordNickname
		if discordName == "" {
			discordName = account.DiscordUsername
		}
		if discordName != "" {
			verified := ""
			if account.ZwidVerified {
				verified = " ✓"
			}
			embed.Description = fmt.Sprintf("Discord: **%s**%s", discordName, verified)
		}
	}

	if zp != nil {
		if field := zwiftPowerField(zp, data.Zwid); field != nil {
			embed.Fields = append(embed.Fields, field)
		}
	}
	if zr != nil {
		if field := zwiftRacingField(zr, data.Zwid); field != nil {
			embed.Fields = append(embed.Fields, field)
		}
		if field := powerCurveField(zr); field != nil {
			embed.Fields = append(embed.Fields, field)
		}
	}
	if field := verificationField(data.Verification); field != nil {
		embed.Fields = append(embed.Fields, field)
	}

	return embed
}

func zwiftPowerField(zp *backend.ZwiftPowerStats, zwid int64) *discordgo.MessageEmbedField {
	var lines []string

	if zp.Div != 0 {
		cat, ok := divToCat[zp.Div]
		if !ok {
			cat = strconv.Itoa(zp.Div)
		}
		lines = append(lines, "**Cat:** "+cat)
	}
	if zp.Rank != 0 {
		lines = append(lines, fmt.Sprintf("**Rank:** %g", zp.Rank))
	}
	if zp.FTP != 0 {
		lines = append(lines, fmt.Sprintf("**FTP:** %dW", zp.FTP))
	}
	if zp.Weight != 0 {
		lines = append(lines, fmt.Sprintf("**Weight:** %gkg", zp.Weight))
	}

	var power []string
	if zp.H15Watts != 0 {
		wkg := ""
		if zp.H15WKg != 0 {
			wkg = fmt.Sprintf(" (%gw/kg)", zp.H15WKg)
		}
		power = append(power, fmt.Sprintf("15s: %dW%s", zp.H15Watts, wkg))
	}
	if zp.H1200Watts != 0 {
		wkg := ""
		if zp.H1200WKg != 0 {
			wkg = fmt.Sprintf(" (%gw/kg)", zp.H1200WKg)
		}
		power = append(power, fmt.Sprintf("20m: %dW%s", zp.H1200Watts, wkg))
	}
	if len(power) > 0 {
		lines = append(lines, "**Power:** "+strings.Join(power, ", "))
	}

	var totals []string
	if zp.DistanceKm != 0 {
		totals = append(totals, fmt.Sprintf("%.0fkm", zp.DistanceKm))
	}
	if zp.ClimbedM != 0 {
		totals = append(totals, fmt.Sprintf("%dm climbed", zp.ClimbedM))
	}
	if zp.TimeHours != 0 {
		totals = append(totals, fmt.Sprintf("%.0fhrs", zp.TimeHours))
	}
	if len(totals) > 0 {
		lines = append(lines, "**Totals:** "+strings.Join(totals, ", "))
	}

	if len(lines) == 0 {
		return nil
	}

	link := fmt.Sprintf("[View on ZwiftPower ↗](https://zwiftpower.com/profile.php?z=%d)", zwid)
	return &discordgo.MessageEmbedField{
		Name:  "ZwiftPower",
		Value: strings.Join(lines, "\n") + "\n" + link,
	}
}

func zwiftRacingField(zr *backend.ZwiftRacingStats, zwid int64) *discordgo.MessageEmbedField {
	var lines []string

	if zr.RaceCurrentCategory != "" {
		rating := ""
		if zr.RaceCurrentRating != 0 {
			rating = fmt.Sprintf(" (%.0f)", zr.RaceCurrentRating)
		}
		lines = append(lines, fmt.Sprintf("**Category:** %s%s", zr.RaceCurrentCategory, rating))
	}
	if zr.PowerCP != 0 {
		lines = append(lines, fmt.Sprintf("**Critical Power:** %.0fW", zr.PowerCP))
	}
	if zr.RaceMax30Rating != 0 {
		lines = append(lines, fmt.Sprintf("**Max 30d:** %.0f (%s)", zr.RaceMax30Rating, zr.RaceMax30Category))
	}
	if zr.RaceMax90Rating != 0 {
		lines = append(lines, fmt.Sprintf("**Max 90d:** %.0f (%s)", zr.RaceMax90Rating, zr.RaceMax90Category))
	}

	var stats []string
	if zr.RaceFinishes != 0 {
		stats = append(stats, fmt.Sprintf("%d races", zr.RaceFinishes))
	}
	if zr.RaceWins != 0 {
		stats = append(stats, fmt.Sprintf("%d wins", zr.RaceWins))
	}
	if zr.RacePodiums != 0 {
		stats = append(stats, fmt.Sprintf("%d podiums", zr.RacePodiums))
	}
	if len(stats) > 0 {
		lines = append(lines, "**Stats:** "+strings.Join(stats, ", "))
	}

	if zr.PhenotypeValue != "" {
		lines = append(lines, "**Phenotype:** "+zr.PhenotypeValue)
	}

	if len(lines) == 0 {
		return nil
	}

	link := fmt.Sprintf("[View on ZwiftRacing ↗](https://www.zwiftracing.app/riders/%d)", zwid)
	return &discordgo.MessageEmbedField{
		Name:  "ZwiftRacing",
		Value: strings.Join(lines, "\n") + "\n" + link,
	}
}

func powerCurveField(zr *backend.ZwiftRacingStats) *discordgo.MessageEmbedField {
	var curve []string
	if zr.PowerWKg5 != 0 {
		curve = append(curve, fmt.Sprintf("5s: %.2f", zr.PowerWKg5))
	}
	if zr.PowerWKg15 != 0 {
		curve = append(curve, fmt.Sprintf("15s: %.2f", zr.PowerWKg15))
	}
	if zr.PowerWKg60 != 0 {
		curve = append(curve, fmt.Sprintf("1m: %.2f", zr.PowerWKg60))
	}
	if zr.PowerWKg300 != 0 {
		curve = append(curve, fmt.Sprintf("5m: %.2f", zr.PowerWKg300))
	}
	if zr.PowerWKg1200 != 0 {
		curve = append(curve, fmt.Sprintf("20m: %.2f", zr.PowerWKg1200))
	}
	if len(curve) == 0 {
		return nil
	}
	return &discordgo.MessageEmbedField{
		Name:  "Power Curve (w/kg)",
		Value: strings.Join(curve, " | "),
	}
}

func verificationField(verification map[string]backend.Verification) *discordgo.MessageEmbedField {
	if len(verification) == 0 {
		return nil
	}

	// Fixed order so the embed is stable between requests.
	labels := []struct{ key, label string }{
		{"weight_full", "Weight (Full)"},
		{"weight_light", "Weight (Light)"},
		{"height", "Height"},
		{"power", "Power"},
	}

	var lines []string
	for _, l := range labels {
		v, ok := verification[l.key]
		switch {
		case !ok || !v.Verified:
			lines = append(lines, fmt.Sprintf("**%s:** No record", l.label))
		case v.IsExpired:
			lines = append(lines, fmt.Sprintf("**%s:** ❌ Expired", l.label))
		case v.DaysRemaining != nil:
			lines = append(lines, fmt.Sprintf("**%s:** ✅ %d days", l.label, *v.DaysRemaining))
		default:
			lines = append(lines, fmt.Sprintf("**%s:** ✅ Never expires", l.label))
		}
	}

	return &discordgo.MessageEmbedField{
		Name:  "Race Ready Status",
		Value: strings.Join(lines, "\n"),
	}
}
