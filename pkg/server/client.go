package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"codeberg.org/tslocum/bgrules"
	log "github.com/sirupsen/logrus"
)

type serverClient struct {
	id           int
	json         bool
	name         []byte
	language     string
	locales      *locales
	connected    int64
	active       int64
	commands     chan []byte
	playerNumber int
	terminating  bool
	bgrules.Client
}

func (c *serverClient) sendEvent(e interface{}) {
	// JSON formatted messages.
	if c.json {
		switch ev := e.(type) {
		case *bgrules.EventWelcome:
			ev.Type = bgrules.EventTypeWelcome
		case *bgrules.EventHelp:
			ev.Type = bgrules.EventTypeHelp
		case *bgrules.EventPing:
			ev.Type = bgrules.EventTypePing
		case *bgrules.EventNotice:
			ev.Type = bgrules.EventTypeNotice
		case *bgrules.EventSay:
			ev.Type = bgrules.EventTypeSay
		case *bgrules.EventList:
			ev.Type = bgrules.EventTypeList
		case *bgrules.EventJoined:
			ev.Type = bgrules.EventTypeJoined
		case *bgrules.EventFailedJoin:
			ev.Type = bgrules.EventTypeFailedJoin
		case *bgrules.EventLeft:
			ev.Type = bgrules.EventTypeLeft
		case *bgrules.EventBoard:
			ev.Type = bgrules.EventTypeBoard
		case *bgrules.EventRolled:
			ev.Type = bgrules.EventTypeRolled
		case *bgrules.EventFailedRoll:
			ev.Type = bgrules.EventTypeFailedRoll
		case *bgrules.EventMoved:
			ev.Type = bgrules.EventTypeMoved
		case *bgrules.EventFailedMove:
			ev.Type = bgrules.EventTypeFailedMove
		case *bgrules.EventPassed:
			ev.Type = bgrules.EventTypePassed
		case *bgrules.EventFailedPass:
			ev.Type = bgrules.EventTypeFailedPass
		case *bgrules.EventLegal:
			ev.Type = bgrules.EventTypeLegal
		case *bgrules.EventWin:
			ev.Type = bgrules.EventTypeWin
		default:
			log.Panicf("unknown event type %+v", ev)
		}

		buf, err := json.Marshal(e)
		if err != nil {
			panic(err)
		}
		c.Write(buf)
		return
	}

	// Human-readable messages.
	switch ev := e.(type) {
	case *bgrules.EventWelcome:
		c.Write([]byte(fmt.Sprintf("welcome %s there are %d clients playing %d matches.", ev.PlayerName, ev.Clients, ev.Games)))
	case *bgrules.EventHelp:
		c.Write([]byte("helpstart Help text:"))
		for _, line := range strings.Split(ev.Message, "\n") {
			c.Write([]byte(fmt.Sprintf("help %s", line)))
		}
		c.Write([]byte("helpend End of help text."))
	case *bgrules.EventPing:
		c.Write([]byte(fmt.Sprintf("ping %s", ev.Message)))
	case *bgrules.EventNotice:
		c.Write([]byte(fmt.Sprintf("notice %s", ev.Message)))
	case *bgrules.EventSay:
		c.Write([]byte(fmt.Sprintf("say %s %s", ev.Player, ev.Message)))
	case *bgrules.EventList:
		c.Write([]byte("liststart Matches list:"))
		for _, g := range ev.Games {
			password := 0
			if g.Password {
				password = 1
			}
			name := "(No name)"
			if g.Name != "" {
				name = g.Name
			}
			c.Write([]byte(fmt.Sprintf("game %d %d %d %s", g.ID, password, g.Players, name)))
		}
		c.Write([]byte("listend End of matches list."))
	case *bgrules.EventJoined:
		c.Write([]byte(fmt.Sprintf("joined %d %d %s", ev.GameID, ev.PlayerNumber, ev.Player)))
	case *bgrules.EventFailedJoin:
		c.Write([]byte(fmt.Sprintf("failedjoin %s", ev.Reason)))
	case *bgrules.EventLeft:
		c.Write([]byte(fmt.Sprintf("left %s", ev.Player)))
	case *bgrules.EventBoard:
		c.Write([]byte(fmt.Sprintf("board %d %s %s %s %s", ev.GameID, ev.CurrentPlayer, ev.State, formatDice(ev.Available), formatPoints(ev.Points))))
	case *bgrules.EventRolled:
		c.Write([]byte(fmt.Sprintf("rolled %s %s", ev.Player, formatDice(ev.Roll))))
	case *bgrules.EventFailedRoll:
		c.Write([]byte(fmt.Sprintf("failedroll %s", ev.Reason)))
	case *bgrules.EventMoved:
		c.Write([]byte(fmt.Sprintf("moved %s %s", ev.Player, formatMove(ev.Move))))
	case *bgrules.EventFailedMove:
		c.Write([]byte(fmt.Sprintf("failedmove %d %d %s", ev.From, ev.Die, ev.Reason)))
	case *bgrules.EventPassed:
		c.Write([]byte(fmt.Sprintf("passed %s", ev.Player)))
	case *bgrules.EventFailedPass:
		c.Write([]byte(fmt.Sprintf("failedpass %s", ev.Reason)))
	case *bgrules.EventLegal:
		moves := make([]string, len(ev.Moves))
		for i, m := range ev.Moves {
			moves[i] = fmt.Sprintf("%d:%d", m.From, m.Die)
		}
		c.Write([]byte(strings.TrimSpace("legal " + strings.Join(moves, " "))))
	case *bgrules.EventWin:
		c.Write([]byte(fmt.Sprintf("win %s wins!", ev.Player)))
	default:
		log.Warnf("skipped sending unknown event to non-json client: %+v", ev)
	}
}

func (c *serverClient) sendNotice(message string) {
	c.sendEvent(&bgrules.EventNotice{
		Message: message,
	})
}

func (c *serverClient) tr(message string, vars ...interface{}) string {
	if c.locales == nil {
		if len(vars) == 0 {
			return message
		}
		return fmt.Sprintf(message, vars...)
	}
	return c.locales.get(c.language, message, vars...)
}

func (c *serverClient) label() string {
	if len(c.name) > 0 {
		return string(c.name)
	}
	return strconv.Itoa(c.id)
}

func (c *serverClient) Terminate(reason string) {
	if c.Terminated() || c.terminating {
		return
	}
	c.terminating = true

	var extra string
	if reason != "" {
		extra = ": " + reason
	}
	c.sendNotice(c.tr("Connection terminated") + extra)

	go func() {
		time.Sleep(time.Second)
		c.Client.Terminate(reason)
	}()
}

func formatDice(dice []int) string {
	if len(dice) == 0 {
		return "-"
	}
	values := make([]string, len(dice))
	for i, v := range dice {
		values[i] = strconv.Itoa(v)
	}
	return strings.Join(values, ",")
}

func formatSpace(space int) string {
	switch space {
	case bgrules.SpaceBar:
		return "bar"
	case bgrules.SpaceOff:
		return "off"
	default:
		return strconv.Itoa(space)
	}
}

func formatMove(m bgrules.Move) string {
	move := formatSpace(m.From) + "/" + formatSpace(m.To)
	if m.Hit {
		move += "*"
	}
	return move
}

// formatPoints lists each occupied space as space:count followed by w or b.
func formatPoints(points [bgrules.NumSpaces]bgrules.Point) string {
	var parts []string
	for space, p := range points {
		if p.White > 0 {
			parts = append(parts, fmt.Sprintf("%s:%dw", formatSpace(space), p.White))
		}
		if p.Black > 0 {
			parts = append(parts, fmt.Sprintf("%s:%db", formatSpace(space), p.Black))
		}
	}
	return strings.Join(parts, " ")
}

func logClientRead(msg []byte) {
	msgLower := bytes.ToLower(msg)
	if bytes.HasPrefix(msgLower, []byte("pong")) || bytes.HasPrefix(msgLower, []byte("list")) || bytes.HasPrefix(msgLower, []byte("ls")) {
		return
	}
	log.Debugf("<- %s", msg)
}

func logClientWrite(msg []byte) {
	if bytes.HasPrefix(msg, []byte(`{"Type":"ping"`)) || bytes.HasPrefix(msg, []byte(`{"Type":"list"`)) || bytes.HasPrefix(msg, []byte("ping ")) {
		return
	}
	log.Debugf("-> %s", msg)
}
