package server

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"codeberg.org/tslocum/bgrules"
	log "github.com/sirupsen/logrus"
)

func (s *server) handleCommands() {
	for cmd := range s.commands {
		if cmd.client == nil {
			log.Panicf("nil client with command %s", cmd.command)
		}

		switch {
		case cmd.disconnected:
			s.removeClient(cmd.client)
		case cmd.client.terminating || cmd.client.Terminated():
			continue
		case cmd.ping:
			s.handlePing(cmd.client)
		default:
			s.handleCommand(cmd.client, cmd.command)
		}
	}
}

func (s *server) handlePing(c *serverClient) {
	now := time.Now().Unix()
	if len(c.name) == 0 {
		if now-c.connected >= int64(pingInterval/time.Second) {
			c.Terminate(c.tr("User did not send login command within %d seconds.", int(pingInterval/time.Second)))
		}
		return
	}
	c.sendEvent(&bgrules.EventPing{
		Message: strconv.FormatInt(now, 10),
	})
}

func (s *server) handleCommand(c *serverClient, command []byte) {
	command = bytes.TrimSpace(command)

	firstSpace := bytes.IndexByte(command, ' ')
	var keyword string
	var startParameters int
	if firstSpace == -1 {
		keyword = string(command)
		startParameters = len(command)
	} else {
		keyword = string(command[:firstSpace])
		startParameters = firstSpace + 1
	}
	if keyword == "" {
		return
	}
	keyword = strings.ToLower(keyword)
	params := bytes.Fields(command[startParameters:])

	c.active = time.Now().Unix()

	// Require users to send login command first.
	if len(c.name) == 0 {
		if keyword != bgrules.CommandLogin {
			c.Terminate(c.tr("You must login before using other commands."))
			return
		}
		s.handleLogin(c, params)
		return
	}

	clientGame := s.gameByClient(c)
	if clientGame != nil {
		clientGame.Lock()
		defer clientGame.Unlock()
	}

	switch keyword {
	case bgrules.CommandLogin:
		c.sendNotice(c.tr("You are already logged in."))
	case bgrules.CommandHelp, "h":
		s.handleHelp(c, params)
	case bgrules.CommandJSON:
		sendUsage := func() {
			c.sendNotice(c.tr("To enable JSON formatted messages, send 'json on'. To disable JSON formatted messages, send 'json off'."))
		}
		if len(params) != 1 {
			sendUsage()
			return
		}
		switch strings.ToLower(string(params[0])) {
		case "on":
			c.json = true
			c.sendNotice(c.tr("JSON formatted messages enabled."))
		case "off":
			c.json = false
			c.sendNotice(c.tr("JSON formatted messages disabled."))
		default:
			sendUsage()
		}
	case bgrules.CommandSay, "s":
		if len(params) == 0 {
			return
		}
		if clientGame == nil {
			c.sendNotice(c.tr("Message not sent: You are not currently in a match."))
			return
		}
		ev := &bgrules.EventSay{
			Message: string(bytes.Join(params, []byte(" "))),
		}
		ev.Player = string(c.name)
		var sent bool
		clientGame.eachClient(func(client *serverClient) {
			if client == c {
				return
			}
			client.sendEvent(ev)
			sent = true
		})
		if !sent {
			c.sendNotice(c.tr("Message not sent: There is no one else in the match."))
		}
	case bgrules.CommandList, "ls":
		c.sendEvent(&bgrules.EventList{
			Games: s.listGames(),
		})
	case bgrules.CommandCreate, "c":
		s.handleCreate(c, clientGame, params)
	case bgrules.CommandJoin, "j":
		s.handleJoin(c, clientGame, params)
	case bgrules.CommandLeave, "l":
		if clientGame == nil {
			c.sendNotice(c.tr("Failed to leave match: not currently in a match."))
			return
		}
		s.leaveGame(clientGame, c)
	case bgrules.CommandRoll, "r":
		s.handleRoll(c, clientGame)
	case bgrules.CommandMove, "m", "mv":
		s.handleMove(c, clientGame, params)
	case bgrules.CommandPass, "p":
		s.handlePass(c, clientGame)
	case bgrules.CommandBoard, "b":
		if clientGame == nil {
			c.sendNotice(c.tr("You are not currently in a match."))
			return
		}
		clientGame.sendBoard(c)
	case bgrules.CommandLegal:
		if clientGame == nil || !clientGame.started() {
			c.sendNotice(c.tr("You are not currently in a match."))
			return
		}
		c.sendEvent(&bgrules.EventLegal{
			Moves: clientGame.LegalMoves(),
		})
	case bgrules.CommandPong:
		// Activity has already been recorded.
	case bgrules.CommandDisconnect:
		c.Terminate(c.tr("Client disconnected"))
	default:
		log.Debugf("Received unknown command from client %s: %s", c.label(), command)
		c.sendNotice(c.tr("Unknown command: %s", keyword))
	}
}

func (s *server) handleLogin(c *serverClient, params [][]byte) {
	var username []byte
	if len(params) > 0 {
		username = params[0]
	}
	if len(params) > 1 {
		c.language = s.locales.match(string(params[1]))
	}

	if len(username) == 0 {
		username = s.randomUsername()
	} else {
		switch {
		case !alphaNumericUnderscore.Match(username):
			c.Terminate(c.tr("Invalid username: must contain only letters, numbers and underscores."))
			return
		case len(username) > maxUsernameLength:
			c.Terminate(c.tr("Invalid username: must be %d characters or less.", maxUsernameLength))
			return
		case onlyNumbers.Match(username):
			c.Terminate(c.tr("Invalid username: must contain at least one non-numeric character."))
			return
		case s.clientByUsername(username) != nil:
			c.Terminate(c.tr("That username is already in use."))
			return
		}
	}
	c.name = username

	c.sendEvent(&bgrules.EventWelcome{
		PlayerName: string(c.name),
		Clients:    s.clientCount(),
		Games:      len(s.allGames()),
	})

	log.Printf("Client %d logged in as %s", c.id, c.name)
}

func (s *server) handleHelp(c *serverClient, params [][]byte) {
	ev := &bgrules.EventHelp{}
	if len(params) > 0 {
		ev.Topic = strings.ToLower(string(params[0]))
		text, ok := bgrules.HelpText[ev.Topic]
		if !ok {
			c.sendNotice(c.tr("Unknown help topic: %s", ev.Topic))
			return
		}
		ev.Message = ev.Topic + " " + text
	} else {
		lines := make([]string, len(s.sortedCommands))
		for i, command := range s.sortedCommands {
			lines[i] = command + " " + bgrules.HelpText[command]
		}
		ev.Message = strings.Join(lines, "\n")
	}
	c.sendEvent(ev)
}

func (s *server) handleCreate(c *serverClient, clientGame *serverGame, params [][]byte) {
	if clientGame != nil {
		c.sendNotice(c.tr("Please leave the match you are in before creating another."))
		return
	}

	sendUsage := func() {
		c.sendNotice(c.tr("To create a public match please send 'create public [name]'. To create a private match please send 'create private <password> [name]'."))
	}
	if len(params) == 0 {
		sendUsage()
		return
	}

	var password []byte
	var name []byte
	switch strings.ToLower(string(params[0])) {
	case "public":
		name = bytes.Join(params[1:], []byte(" "))
	case "private":
		if len(params) < 2 {
			sendUsage()
			return
		}
		password = params[1]
		name = bytes.Join(params[2:], []byte(" "))
	default:
		sendUsage()
		return
	}
	if len(name) == 0 {
		name = []byte(c.tr("%s's match", c.name))
	}

	g := newServerGame(<-s.newGameIDs, name, s.roller)
	if len(password) > 0 {
		err := g.setPassword(string(password))
		if err != nil {
			log.Errorf("failed to create match: %s", err)
			c.sendNotice(c.tr("Failed to create match."))
			return
		}
	}
	g.Lock()
	s.addGame(g)
	g.addClient(c)
	g.Unlock()

	log.Printf("Client %s created match %d (%s)", c.label(), g.id, g.uuid)
}

func (s *server) handleJoin(c *serverClient, clientGame *serverGame, params [][]byte) {
	sendFailure := func(reason string) {
		c.sendEvent(&bgrules.EventFailedJoin{
			Reason: reason,
		})
	}
	if clientGame != nil {
		sendFailure(c.tr("Please leave the match you are in before joining another."))
		return
	} else if len(params) == 0 {
		sendFailure(c.tr("To join a match please specify its ID."))
		return
	}

	gameID, err := strconv.Atoi(string(params[0]))
	if err != nil || gameID < 1 {
		sendFailure(c.tr("To join a match please specify its ID."))
		return
	}

	g := s.gameByID(gameID)
	if g == nil {
		sendFailure(c.tr("Match not found."))
		return
	}

	g.Lock()
	defer g.Unlock()

	if g.terminated() {
		sendFailure(c.tr("Match not found."))
		return
	}
	var password string
	if len(params) > 1 {
		password = string(params[1])
	}
	if !g.checkPassword(password) {
		sendFailure(c.tr("Invalid password."))
		return
	}
	g.addClient(c)
}

// leaveGame removes a client from a match. The caller must hold the match lock.
func (s *server) leaveGame(g *serverGame, c *serverClient) {
	if !g.removeClient(c) {
		return
	}
	if g.started() && !g.Over() {
		g.eachClient(func(client *serverClient) {
			g.sendBoard(client)
		})
	}
	if g.terminated() {
		s.removeGame(g)
		log.Printf("Match %d (%s) closed", g.id, g.uuid)
	}
}

// turnCheck returns the reason a client may not act on the current turn.
func (s *server) turnCheck(c *serverClient, g *serverGame) string {
	switch {
	case g == nil:
		return c.tr("You are not currently in a match.")
	case c.playerNumber == 0:
		return c.tr("You are spectating this match.")
	case !g.started():
		return c.tr("The match has not started.")
	case g.Over():
		return c.tr("The match is over.")
	case g.opponent(c) == nil:
		return c.tr("You may not play until your opponent rejoins the match.")
	case g.currentClient() != c:
		return c.tr("It is not your turn.")
	}
	return ""
}

func (s *server) handleRoll(c *serverClient, g *serverGame) {
	sendFailure := func(reason string) {
		c.sendEvent(&bgrules.EventFailedRoll{
			Reason: reason,
		})
	}
	if reason := s.turnCheck(c, g); reason != "" {
		sendFailure(reason)
		return
	}

	roll, ok := g.Roll()
	if !ok {
		sendFailure(c.tr("You have already rolled."))
		return
	}
	g.recordEvent("r %s %s", c.name, formatDice(roll))

	ev := &bgrules.EventRolled{
		Roll: roll,
	}
	ev.Player = string(c.name)
	g.eachClient(func(client *serverClient) {
		client.sendEvent(ev)
	})

	s.passIfBlocked(g, c)
	g.eachClient(func(client *serverClient) {
		g.sendBoard(client)
	})
}

func (s *server) handleMove(c *serverClient, g *serverGame, params [][]byte) {
	sendFailure := func(origin int, die int, reason string) {
		c.sendEvent(&bgrules.EventFailedMove{
			From:   origin,
			Die:    die,
			Reason: reason,
		})
	}

	if len(params) != 2 {
		c.sendNotice(c.tr("To move a checker please specify its origin space and the die value to use."))
		return
	}
	origin, err := strconv.Atoi(string(params[0]))
	if err != nil {
		c.sendNotice(c.tr("To move a checker please specify its origin space and the die value to use."))
		return
	}
	die, err := strconv.Atoi(string(params[1]))
	if err != nil {
		c.sendNotice(c.tr("To move a checker please specify its origin space and the die value to use."))
		return
	}

	if reason := s.turnCheck(c, g); reason != "" {
		sendFailure(origin, die, reason)
		return
	} else if g.State() == bgrules.AwaitingRoll {
		sendFailure(origin, die, c.tr("You must roll first."))
		return
	}

	if !g.TryMove(origin, die) {
		sendFailure(origin, die, s.moveFailure(c, g, origin, die))
		return
	}

	if s.debug {
		err := g.Validate()
		if err != nil {
			log.Panicf("match %d: %s", g.id, err)
		}
	}

	moves := g.Moves()
	move := moves[len(moves)-1]
	g.recordEvent("m %s %s", c.name, formatMove(move))

	ev := &bgrules.EventMoved{
		Move: move,
	}
	ev.Player = string(c.name)
	g.eachClient(func(client *serverClient) {
		client.sendEvent(ev)
	})

	if g.handleWin(s.ratings) {
		return
	}

	s.passIfBlocked(g, c)
	g.eachClient(func(client *serverClient) {
		g.sendBoard(client)
	})
}

// moveFailure describes why a move was rejected.
func (s *server) moveFailure(c *serverClient, g *serverGame, origin int, die int) string {
	var haveDie bool
	for _, v := range g.Available() {
		if v == die {
			haveDie = true
			break
		}
	}
	if !haveDie {
		return c.tr("You did not roll a %d.", die)
	}

	color := g.CurrentColor()
	board := g.Board()
	if board.HasCheckerOnBar(color) && origin != bgrules.SpaceBar {
		return c.tr("You must enter your checkers from the bar first.")
	}

	if origin != bgrules.SpaceBar && bgrules.PlayableSpace(origin) && !bgrules.PlayableSpace(origin-die*color.Direction()) && !board.CanBearOff(color) {
		return c.tr("You may not bear off until all of your checkers are in your home board.")
	}
	return c.tr("Illegal move.")
}

// passIfBlocked ends the turn when none of the remaining dice may be used.
func (s *server) passIfBlocked(g *serverGame, c *serverClient) {
	if !g.ForcePassIfNoMoves() {
		return
	}
	g.recordEvent("p %s", c.name)

	ev := &bgrules.EventPassed{}
	ev.Player = string(c.name)
	g.eachClient(func(client *serverClient) {
		client.sendEvent(ev)
	})
	c.sendNotice(c.tr("No moves are possible. Your turn has been passed."))
}

func (s *server) handlePass(c *serverClient, g *serverGame) {
	sendFailure := func(reason string) {
		c.sendEvent(&bgrules.EventFailedPass{
			Reason: reason,
		})
	}
	if reason := s.turnCheck(c, g); reason != "" {
		sendFailure(reason)
		return
	} else if g.State() == bgrules.AwaitingRoll {
		sendFailure(c.tr("You must roll first."))
		return
	} else if g.CanMakeAnyMove() {
		sendFailure(c.tr("You may still make a move."))
		return
	}

	s.passIfBlocked(g, c)
	g.eachClient(func(client *serverClient) {
		g.sendBoard(client)
	})
}
