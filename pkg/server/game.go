package server

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"codeberg.org/tslocum/bgrules"
	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var passwordParams = &argon2id.Params{
	Memory:      16 * 1024,
	Iterations:  2,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// serverGame hosts a single match. The command handler is the only writer.
// Other readers must hold the lock.
type serverGame struct {
	id         int
	uuid       string
	created    int64
	active     int64
	name       []byte
	password   string
	client1    *serverClient
	client2    *serverClient
	spectators []*serverClient
	allowed1   []byte
	allowed2   []byte
	recorded   bool
	replay     [][]byte
	roller     bgrules.Roller
	*bgrules.Game
	sync.Mutex
}

func newServerGame(id int, name []byte, roller bgrules.Roller) *serverGame {
	now := time.Now().Unix()
	return &serverGame{
		id:      id,
		uuid:    uuid.NewString(),
		created: now,
		active:  now,
		name:    name,
		roller:  roller,
	}
}

func (g *serverGame) setPassword(password string) error {
	hash, err := argon2id.CreateHash(password, passwordParams)
	if err != nil {
		return fmt.Errorf("failed to hash match password: %w", err)
	}
	g.password = hash
	return nil
}

func (g *serverGame) checkPassword(password string) bool {
	if g.password == "" {
		return true
	}
	match, err := argon2id.ComparePasswordAndHash(password, g.password)
	if err != nil {
		log.Warnf("failed to compare password of match %d: %s", g.id, err)
		return false
	}
	return match
}

func (g *serverGame) started() bool {
	return g.Game != nil
}

// start begins play once both seats are filled. The first player is white.
func (g *serverGame) start() {
	if g.started() || g.client1 == nil || g.client2 == nil {
		return
	}
	game, err := bgrules.NewGameWithRoller(string(g.client1.name), string(g.client2.name), g.roller)
	if err != nil {
		log.Panicf("failed to start match %d: %s", g.id, err)
	}
	g.Game = game
	g.allowed1 = g.client1.name
	g.allowed2 = g.client2.name
	g.active = time.Now().Unix()

	log.Infof("Match %d (%s) started: %s vs %s", g.id, g.uuid, g.allowed1, g.allowed2)
}

func (g *serverGame) sendBoard(client *serverClient) {
	if !g.started() {
		client.sendNotice(client.tr("Waiting for an opponent to join."))
		return
	}
	client.sendEvent(&bgrules.EventBoard{
		GameID:    g.id,
		GameState: *g.Snapshot(),
	})
}

func (g *serverGame) playerCount() int {
	var c int
	if g.client1 != nil {
		c++
	}
	if g.client2 != nil {
		c++
	}
	return c
}

func (g *serverGame) eachClient(f func(client *serverClient)) {
	if g.client1 != nil {
		f(g.client1)
	}
	if g.client2 != nil {
		f(g.client2)
	}
	for _, spectator := range g.spectators {
		f(spectator)
	}
}

func (g *serverGame) hasClient(client *serverClient) bool {
	if g.client1 == client || g.client2 == client {
		return true
	}
	for _, spectator := range g.spectators {
		if spectator == client {
			return true
		}
	}
	return false
}

// addClient seats a client. Once play has started only the original players
// may take a seat, everyone else spectates.
func (g *serverGame) addClient(client *serverClient) (spectator bool) {
	var playerNumber int
	switch {
	case g.started():
		if g.client1 == nil && bytes.EqualFold(client.name, g.allowed1) {
			playerNumber = 1
		} else if g.client2 == nil && bytes.EqualFold(client.name, g.allowed2) {
			playerNumber = 2
		}
	case g.client1 == nil:
		playerNumber = 1
	case g.client2 == nil:
		playerNumber = 2
	}

	switch playerNumber {
	case 1:
		g.client1 = client
	case 2:
		g.client2 = client
	default:
		spectator = true
		g.spectators = append(g.spectators, client)
	}
	client.playerNumber = playerNumber

	ev := &bgrules.EventJoined{
		GameID:       g.id,
		PlayerNumber: playerNumber,
	}
	ev.Player = string(client.name)
	g.eachClient(func(c *serverClient) {
		c.sendEvent(ev)
	})

	g.start()
	g.eachClient(func(c *serverClient) {
		g.sendBoard(c)
	})
	return spectator
}

func (g *serverGame) removeClient(client *serverClient) bool {
	switch {
	case g.client1 == client:
		g.client1 = nil
	case g.client2 == client:
		g.client2 = nil
	default:
		var found bool
		for i, spectator := range g.spectators {
			if spectator == client {
				g.spectators = append(g.spectators[:i], g.spectators[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	ev := &bgrules.EventLeft{}
	ev.Player = string(client.name)
	client.sendEvent(ev)
	g.eachClient(func(c *serverClient) {
		c.sendEvent(ev)
	})

	client.playerNumber = 0
	return true
}

func (g *serverGame) opponent(client *serverClient) *serverClient {
	if g.client1 == client {
		return g.client2
	} else if g.client2 == client {
		return g.client1
	}
	return nil
}

// currentClient returns the client whose turn it is.
func (g *serverGame) currentClient() *serverClient {
	if !g.started() {
		return nil
	}
	if g.CurrentPlayer() == g.Player1() {
		return g.client1
	}
	return g.client2
}

func (g *serverGame) listing() bgrules.GameListing {
	players := g.playerCount()
	if g.started() {
		players = 2
	}
	return bgrules.GameListing{
		ID:       g.id,
		Password: g.password != "",
		Players:  players,
		Name:     string(g.name),
	}
}

func (g *serverGame) terminated() bool {
	return g.client1 == nil && g.client2 == nil
}

func (g *serverGame) recordEvent(format string, a ...interface{}) {
	g.active = time.Now().Unix()
	g.replay = append(g.replay, []byte(fmt.Sprintf(format, a...)))
}

// handleWin records the result of a finished match and announces the winner.
func (g *serverGame) handleWin(r *ratings) bool {
	if !g.started() || !g.Over() || g.recorded {
		return false
	}
	g.recorded = true

	winner := g.Winner()
	loser := g.Player1()
	if winner == loser {
		loser = g.Player2()
	}
	g.recordEvent("w %s", winner.Name)

	winnerRating, loserRating := r.record(winner.Name, loser.Name)

	err := recordGameResult(g, winner.Name, loser.Name, g.replay)
	if err != nil {
		log.Errorf("failed to record result of match %d: %s", g.id, err)
	}
	for _, name := range []string{winner.Name, loser.Name} {
		err = saveRating(name, r.get(name))
		if err != nil {
			log.Errorf("failed to save rating of %s: %s", name, err)
		}
	}

	log.Infof("Match %d (%s) won by %s (%.0f) against %s (%.0f)", g.id, g.uuid, winner.Name, winnerRating, loser.Name, loserRating)

	ev := &bgrules.EventWin{}
	ev.Player = winner.Name
	g.eachClient(func(client *serverClient) {
		client.sendEvent(ev)
		g.sendBoard(client)
	})
	return true
}
