// Package backend is the client for the team-management API. Every request
// carries the API key, the configured guild id, and the Discord user id the
// call is made on behalf of.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout    = 10 * time.Second
	roleSyncTimeout   = 30 * time.Second
	memberSyncTimeout = 60 * time.Second
	searchTimeout     = 5 * time.Second
)

// ErrNotFound is returned when the backend reports 404 for a lookup. Commands
// treat it as "no data" rather than a hard failure.
var ErrNotFound = errors.New("backend: not found")

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: unexpected status %d: %s", e.Code, e.Body)
}

// Client issues authenticated requests to the team-management API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	guildID    string
}

// New creates a Client for the given base URL and credentials.
func New(baseURL, apiKey, guildID string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		apiKey:     apiKey,
		guildID:    guildID,
	}
}

// do issues a single request with the three identifying headers and decodes a
// JSON response into out (which may be nil). 404 maps to ErrNotFound; other
// non-2xx statuses map to StatusError. No retries.
func (c *Client) do(ctx context.Context, method, path, userID string, query url.Values, body, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-Guild-Id", c.guildID)
	req.Header.Set("X-Discord-User-Id", userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// TeamLink requests a single-use magic link for the given user.
func (c *Client) TeamLink(ctx context.Context, userID string) (*TeamLink, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var link TeamLink
	if err := c.do(ctx, http.MethodGet, "/team_links", userID, nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// MyProfile fetches the invoking user's combined racing profile.
func (c *Client) MyProfile(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/my_profile", userID, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// TeammateProfile fetches a rider's profile by Zwift id.
func (c *Client) TeammateProfile(ctx context.Context, userID string, zwid int64) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var profile Profile
	path := fmt.Sprintf("/teammate_profile/%d", zwid)
	if err := c.do(ctx, http.MethodGet, path, userID, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SearchTeammates looks up riders by partial name. An empty result slice is
// not an error.
func (c *Client) SearchTeammates(ctx context.Context, userID, query string) ([]TeammateMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	var result struct {
		Results []TeammateMatch `json:"results"`
	}
	q := url.Values{"q": []string{query}}
	if err := c.do(ctx, http.MethodGet, "/search_teammates", userID, q, nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// SyncGuildRoles pushes the guild's full role list in one call.
func (c *Client) SyncGuildRoles(ctx context.Context, userID string, roles []GuildRole) (*RoleSyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, roleSyncTimeout)
	defer cancel()

	payload := map[string]interface{}{"roles": roles}
	var result RoleSyncResult
	if err := c.do(ctx, http.MethodPost, "/sync_guild_roles", userID, nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SyncUserRoles pushes one member's current role id list.
func (c *Client) SyncUserRoles(ctx context.Context, memberID string, roleIDs []string) (*UserRolesResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	payload := map[string]interface{}{"role_ids": roleIDs}
	var result UserRolesResult
	if err := c.do(ctx, http.MethodPost, "/sync_user_roles/"+memberID, memberID, nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RoleEvent pushes a single incremental role change. Action is one of
// "created", "updated", or "deleted".
func (c *Client) RoleEvent(ctx context.Context, userID, action string, role GuildRole) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	payload := map[string]interface{}{"action": action, "role": role}
	return c.do(ctx, http.MethodPost, "/role_event", userID, nil, payload, nil)
}

// SyncGuildMembers pushes the guild's full member list in one call.
func (c *Client) SyncGuildMembers(ctx context.Context, userID string, members []GuildMember) (*MemberSyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, memberSyncTimeout)
	defer cancel()

	payload := map[string]interface{}{"members": members}
	var result MemberSyncResult
	if err := c.do(ctx, http.MethodPost, "/sync_guild_members", userID, nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateZPTeam triggers the backend's asynchronous team roster refresh. The
// reply is an acknowledgment, not a completion signal.
func (c *Client) UpdateZPTeam(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return c.do(ctx, http.MethodPost, "/update_zp_team", userID, nil, nil, nil)
}

// UpdateZPResults triggers the backend's asynchronous results refresh.
func (c *Client) UpdateZPResults(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return c.do(ctx, http.MethodPost, "/update_zp_results", userID, nil, nil, nil)
}
