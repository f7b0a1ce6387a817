package cogs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceready/dbot/backend"
)

func TestHandleTeamLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/team_links", r.URL.Path)
		assert.Equal(t, "user-1", r.Header.Get("X-Discord-User-Id"))
		w.Write([]byte(`{"magic_link_url": "https://team.example.com/links/tok", "expires_in_seconds": 600}`))
	}))
	defer server.Close()

	cog := NewTeamLinks(backend.New(server.URL, "key", testGuildID))
	resp, err := cog.handleTeamLinks(testContext(nil, "user-1"), teamLinksRequest{})
	require.NoError(t, err)
	// The URL is relayed verbatim.
	assert.Contains(t, resp.Content, "https://team.example.com/links/tok")
	assert.Contains(t, resp.Content, "expires in 10 minutes")
}

func TestHandleTeamLinksNoAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "User not found"}`))
	}))
	defer server.Close()

	cog := NewTeamLinks(backend.New(server.URL, "key", testGuildID))
	resp, err := cog.handleTeamLinks(testContext(nil, "user-1"), teamLinksRequest{})
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "account on the team website")
}

func TestHandleTeamLinksBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cog := NewTeamLinks(backend.New(server.URL, "key", testGuildID))
	_, err := cog.handleTeamLinks(testContext(nil, "user-1"), teamLinksRequest{})
	require.Error(t, err)
}
