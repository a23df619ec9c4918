package bgrules

// events are always received FROM the server

type Event struct {
	Type   string
	Player string
}

const (
	EventTypeWelcome    = "welcome"
	EventTypeHelp       = "help"
	EventTypePing       = "ping"
	EventTypeNotice     = "notice"
	EventTypeSay        = "say"
	EventTypeList       = "list"
	EventTypeJoined     = "joined"
	EventTypeFailedJoin = "failedjoin"
	EventTypeLeft       = "left"
	EventTypeBoard      = "board"
	EventTypeRolled     = "rolled"
	EventTypeFailedRoll = "failedroll"
	EventTypeMoved      = "moved"
	EventTypeFailedMove = "failedmove"
	EventTypePassed     = "passed"
	EventTypeFailedPass = "failedpass"
	EventTypeLegal      = "legal"
	EventTypeWin        = "win"
)

type EventWelcome struct {
	Event
	PlayerName string
	Clients    int
	Games      int
}

type EventHelp struct {
	Event
	Topic   string
	Message string
}

type EventPing struct {
	Event
	Message string
}

type EventNotice struct {
	Event
	Message string
}

type EventSay struct {
	Event
	Message string
}

type GameListing struct {
	ID       int
	Password bool
	Players  int
	Name     string
}

type EventList struct {
	Event
	Games []GameListing
}

type EventJoined struct {
	Event
	GameID       int
	PlayerNumber int
}

type EventFailedJoin struct {
	Event
	Reason string
}

type EventLeft struct {
	Event
}

type EventBoard struct {
	Event
	GameID int
	GameState
}

type EventRolled struct {
	Event
	Roll []int
}

type EventFailedRoll struct {
	Event
	Reason string
}

type EventMoved struct {
	Event
	Move
}

type EventFailedMove struct {
	Event
	From   int
	Die    int
	Reason string
}

// EventPassed is sent when a turn ends without every die value being used.
type EventPassed struct {
	Event
}

type EventFailedPass struct {
	Event
	Reason string
}

type EventLegal struct {
	Event
	Moves []Move
}

type EventWin struct {
	Event
}
