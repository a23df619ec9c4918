package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/tslocum/bgrules"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestWebMatches(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.webHandler())
	defer ts.Close()

	var listings []bgrules.GameListing
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/matches.json", &listings))
	require.Empty(t, listings)

	conns := s.ListenLocal()
	alice := loginTestClient(t, conns, "alice")
	alice.send("create public Web")
	alice.expect("joined ")

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/matches.json", &listings))
	require.Equal(t, []bgrules.GameListing{{ID: 1, Players: 1, Name: "Web"}}, listings)

	var info map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/match/1.json", &info))
	require.Equal(t, "Web", info["Name"])
	require.Equal(t, []interface{}{"alice"}, info["Players"])
	require.Nil(t, info["State"])

	bob := loginTestClient(t, conns, "bob")
	bob.send("join 1")
	bob.expect("board ")

	info = nil
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/match/1.json", &info))
	require.Equal(t, []interface{}{"alice", "bob"}, info["Players"])
	state, ok := info["State"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "alice", state["CurrentPlayer"])
	require.Equal(t, false, state["Over"])

	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/match/2.json", &info))
}

func TestWebLeaderboard(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.webHandler())
	defer ts.Close()

	s.ratings.record("alice", "bob")
	s.ratings.record("alice", "carol")

	var entries []leaderboardEntry
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/leaderboard.json", &entries))
	require.Len(t, entries, 3)
	require.Equal(t, "alice", entries[0].Name)
	require.Equal(t, 2, entries[0].Wins)
	require.Greater(t, entries[0].Rating, initialRating)
}

func TestWebSocket(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.webHandler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("login dave")))

	msgType, msg, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, msgType)
	require.True(t, strings.HasPrefix(string(msg), "welcome dave "), string(msg))

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("json on")))
	_, msg, err = conn.Read(ctx)
	require.NoError(t, err)

	ev := &bgrules.EventNotice{}
	require.NoError(t, json.Unmarshal(msg, ev))
	require.Equal(t, bgrules.EventTypeNotice, ev.Type)
	require.Equal(t, "JSON formatted messages enabled.", ev.Message)
}

func TestWebPrivateMatch(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.webHandler())
	defer ts.Close()

	conns := s.ListenLocal()
	alice := loginTestClient(t, conns, "alice")
	alice.send("create private secret Hidden")
	alice.expect("joined ")

	bob := loginTestClient(t, conns, "bob")
	bob.send("join 1 secret")
	bob.expect("board ")

	var listings []bgrules.GameListing
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/matches.json", &listings))
	require.Empty(t, listings)

	var info map[string]interface{}
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/match/1.json", &info))
	require.Nil(t, info)
}
