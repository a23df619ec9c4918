package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/tslocum/bgrules"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type matchInfo struct {
	ID      int
	UUID    string
	Name    string
	Players []string
	State   *bgrules.GameState
}

func (s *server) webHandler() http.Handler {
	m := mux.NewRouter()
	m.HandleFunc("/matches.json", s.handleListMatches)
	m.HandleFunc("/match/{id:[0-9]+}.json", s.handleMatch)
	m.HandleFunc("/leaderboard.json", s.handleLeaderboard)
	m.HandleFunc("/", s.handleWebSocket)
	return m
}

func (s *server) listenWebSocket(address string) {
	log.Printf("Listening for WebSocket connections on %s...", address)

	err := http.ListenAndServe(address, s.webHandler())
	log.Fatalf("failed to listen on %s: %s", address, err)
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	const bufferSize = 8
	commands := make(chan []byte, bufferSize)
	events := make(chan []byte, bufferSize)

	wsClient := newWebSocketClient(r, w, commands, events, hashIP(r.RemoteAddr, s.ipSalt), s.verbose)
	if wsClient == nil {
		return
	}

	now := time.Now().Unix()

	c := &serverClient{
		id:        <-s.newClientIDs,
		language:  defaultLanguage,
		locales:   s.locales,
		connected: now,
		active:    now,
		commands:  commands,
		Client:    wsClient,
	}
	s.handleClient(c)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal %+v: %s", v, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf)
}

// handleListMatches lists public matches. Private matches are only listed to
// logged in clients.
func (s *server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	listings := []bgrules.GameListing{}
	for _, listing := range s.listGames() {
		if listing.Password {
			continue
		}
		listings = append(listings, listing)
	}
	writeJSON(w, listings)
}

func (s *server) handleMatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	g := s.gameByID(id)
	if g == nil {
		http.NotFound(w, r)
		return
	}

	g.Lock()
	if g.password != "" {
		g.Unlock()
		http.NotFound(w, r)
		return
	}
	info := &matchInfo{
		ID:   g.id,
		UUID: g.uuid,
		Name: string(g.name),
	}
	if g.started() {
		info.Players = []string{g.Player1().Name, g.Player2().Name}
		info.State = g.Snapshot()
	} else if g.client1 != nil {
		info.Players = []string{string(g.client1.name)}
	}
	g.Unlock()

	writeJSON(w, info)
}

func (s *server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.ratings.leaderboard())
}
