package server

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"codeberg.org/tslocum/bgrules"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/sha3"
)

const clientTimeout = 40 * time.Second

const pingInterval = 30 * time.Second

const maxUsernameLength = 18

var (
	onlyNumbers            = regexp.MustCompile(`^[0-9]+$`)
	alphaNumericUnderscore = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

type Options struct {
	DataSource string
	IPSalt     string
	Verbose    bool
	Debug      bool

	// Roller rolls the dice of every match. RollDie is used when nil.
	Roller bgrules.Roller
}

type serverCommand struct {
	client       *serverClient
	command      []byte
	ping         bool
	disconnected bool
}

type server struct {
	clients      []*serverClient
	games        []*serverGame
	listeners    []net.Listener
	newGameIDs   chan int
	newClientIDs chan int
	commands     chan serverCommand
	welcome      []byte

	gamesLock   sync.RWMutex
	clientsLock sync.Mutex

	ratings *ratings
	locales *locales

	sortedCommands []string

	roller  bgrules.Roller
	ipSalt  string
	verbose bool
	debug   bool
}

func NewServer(op *Options) *server {
	const bufferSize = 10
	s := &server{
		newGameIDs:   make(chan int),
		newClientIDs: make(chan int),
		commands:     make(chan serverCommand, bufferSize),
		welcome:      []byte("hello Welcome to bgrules! Please log in by sending the 'login' command. You may specify a username, otherwise you will be assigned a random username."),
		ratings:      newRatings(),
		roller:       op.Roller,
		ipSalt:       op.IPSalt,
		verbose:      op.Verbose,
		debug:        op.Debug,
	}
	if s.roller == nil {
		s.roller = bgrules.RollDie
	}

	var err error
	s.locales, err = loadLocales()
	if err != nil {
		log.Fatalf("failed to load locales: %s", err)
	}

	for command := range bgrules.HelpText {
		s.sortedCommands = append(s.sortedCommands, command)
	}
	sort.Strings(s.sortedCommands)

	if op.DataSource != "" {
		err := connectDB(op.DataSource)
		if err != nil {
			log.Fatalf("failed to connect to database: %s", err)
		}

		err = testDBConnection()
		if err != nil {
			log.Fatalf("failed to test database connection: %s", err)
		}

		err = initDB()
		if err != nil {
			log.Fatalf("failed to initialize database: %s", err)
		}

		err = loadRatings(s.ratings)
		if err != nil {
			log.Fatalf("failed to load ratings: %s", err)
		}

		log.Println("Connected to database successfully")
	}

	go s.handleNewGameIDs()
	go s.handleNewClientIDs()
	go s.handleCommands()
	return s
}

func (s *server) Listen(network string, address string) {
	if strings.ToLower(network) == "ws" {
		go s.listenWebSocket(address)
		return
	}

	log.Printf("Listening for %s connections on %s...", strings.ToUpper(network), address)
	listener, err := net.Listen(network, address)
	if err != nil {
		log.Fatalf("failed to listen on %s: %s", address, err)
	}
	go s.handleListener(listener)
	s.listeners = append(s.listeners, listener)
}

func (s *server) handleListener(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Fatalf("failed to accept connection: %s", err)
		}
		go s.handleConnection(conn)
	}
}

// ListenLocal returns a channel of in-process connections to the server.
func (s *server) ListenLocal() chan net.Conn {
	conns := make(chan net.Conn)
	go s.handleLocal(conns)
	return conns
}

func (s *server) handleLocal(conns chan net.Conn) {
	for {
		local, remote := net.Pipe()

		conns <- local
		go s.handleConnection(remote)
	}
}

func (s *server) handleConnection(conn net.Conn) {
	const bufferSize = 8
	commands := make(chan []byte, bufferSize)
	events := make(chan []byte, bufferSize)

	now := time.Now().Unix()

	c := &serverClient{
		id:        <-s.newClientIDs,
		language:  defaultLanguage,
		locales:   s.locales,
		connected: now,
		active:    now,
		commands:  commands,
		Client:    newSocketClient(conn, commands, events, hashIP(conn.RemoteAddr().String(), s.ipSalt), s.verbose),
	}
	s.sendWelcome(c)
	s.handleClient(c)
}

func (s *server) handleClient(c *serverClient) {
	s.addClient(c)

	log.Printf("Client %d connected from %s", c.id, c.Address())

	go s.handlePingClient(c)
	go s.handleClientCommands(c)

	c.HandleReadWrite()

	s.commands <- serverCommand{
		client:       c,
		disconnected: true,
	}
}

func (s *server) handlePingClient(c *serverClient) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		if c.Terminated() {
			return
		}
		s.commands <- serverCommand{
			client: c,
			ping:   true,
		}
	}
}

func (s *server) handleClientCommands(c *serverClient) {
	for command := range c.commands {
		s.commands <- serverCommand{
			client:  c,
			command: command,
		}
	}
}

func (s *server) handleNewGameIDs() {
	gameID := 1
	for {
		s.newGameIDs <- gameID
		gameID++
	}
}

func (s *server) handleNewClientIDs() {
	clientID := 1
	for {
		s.newClientIDs <- clientID
		clientID++
	}
}

func (s *server) addClient(c *serverClient) {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()

	s.clients = append(s.clients, c)
}

// removeClient is only called by the command handler.
func (s *server) removeClient(c *serverClient) {
	g := s.gameByClient(c)
	if g != nil {
		g.Lock()
		s.leaveGame(g, c)
		g.Unlock()
	}
	c.Client.Terminate("")

	close(c.commands)

	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()

	for i, sc := range s.clients {
		if sc == c {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			break
		}
	}

	log.Printf("Client %s disconnected", c.label())
}

func (s *server) clientCount() int {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()

	return len(s.clients)
}

func (s *server) clientByUsername(username []byte) *serverClient {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()

	for _, c := range s.clients {
		if bytes.EqualFold(c.name, username) {
			return c
		}
	}
	return nil
}

func (s *server) randomUsername() []byte {
	for {
		name := []byte(fmt.Sprintf("Guest_%d", 100+bgrules.RandInt(900)))

		if s.clientByUsername(name) == nil {
			return name
		}
	}
}

func (s *server) sendWelcome(c *serverClient) {
	if c.json {
		return
	}
	c.Write(s.welcome)
}

func (s *server) gameByClient(c *serverClient) *serverGame {
	s.gamesLock.RLock()
	defer s.gamesLock.RUnlock()

	for _, g := range s.games {
		if g.hasClient(c) {
			return g
		}
	}
	return nil
}

func (s *server) gameByID(id int) *serverGame {
	s.gamesLock.RLock()
	defer s.gamesLock.RUnlock()

	for _, g := range s.games {
		if g.id == id {
			return g
		}
	}
	return nil
}

func (s *server) addGame(g *serverGame) {
	s.gamesLock.Lock()
	defer s.gamesLock.Unlock()

	s.games = append(s.games, g)
}

func (s *server) removeGame(g *serverGame) {
	s.gamesLock.Lock()
	defer s.gamesLock.Unlock()

	for i, sg := range s.games {
		if sg == g {
			s.games = append(s.games[:i], s.games[i+1:]...)
			return
		}
	}
}

func (s *server) allGames() []*serverGame {
	s.gamesLock.RLock()
	defer s.gamesLock.RUnlock()

	games := make([]*serverGame, len(s.games))
	copy(games, s.games)
	return games
}

// listGames returns a listing of every open match.
func (s *server) listGames() []bgrules.GameListing {
	listings := []bgrules.GameListing{}
	for _, g := range s.allGames() {
		g.Lock()
		listings = append(listings, g.listing())
		g.Unlock()
	}
	return listings
}

// hashIP returns a salted digest of the host portion of an address.
func hashIP(address string, salt string) string {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	sum := sha3.Sum256([]byte(host + salt))
	return hex.EncodeToString(sum[:8])
}
