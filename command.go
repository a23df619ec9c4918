package bgrules

// commands are always sent TO the server

const (
	CommandLogin      = "login"      // Log in with a username.
	CommandJSON       = "json"       // Enable or disable JSON formatted events.
	CommandHelp       = "help"       // Print help information.
	CommandSay        = "say"        // Send chat message.
	CommandList       = "list"       // List available matches.
	CommandCreate     = "create"     // Create match.
	CommandJoin       = "join"       // Join match.
	CommandLeave      = "leave"      // Leave match.
	CommandRoll       = "roll"       // Roll dice.
	CommandMove       = "move"       // Move a checker using a die value.
	CommandPass       = "pass"       // End turn.
	CommandBoard      = "board"      // Print current board state.
	CommandLegal      = "legal"      // Print legal moves.
	CommandPong       = "pong"       // Response to server ping.
	CommandDisconnect = "disconnect" // Disconnect from server.
)

var HelpText = map[string]string{
	CommandLogin:      "[username] [language] - Log in. A random username is assigned when none is provided.",
	CommandJSON:       "<on/off> - Turn JSON formatted messages on or off.",
	CommandHelp:       "[command] - Request help for all commands, or optionally a specific command.",
	CommandSay:        "<message> - Send a chat message. This command can only be used after creating or joining a match.",
	CommandList:       "- List all matches.",
	CommandCreate:     "<public>/<private [password]> [name] - Create a match.",
	CommandJoin:       "<id> [password] - Join match by match ID.",
	CommandLeave:      "- Leave match.",
	CommandRoll:       "- Roll dice.",
	CommandMove:       "<origin> <die> - Move a checker from origin using a die value. Use origin 0 to enter from the bar.",
	CommandPass:       "- End turn. Only allowed when no die value may be used.",
	CommandBoard:      "- Print current board state in human-readable form.",
	CommandLegal:      "- Print the moves which may currently be made.",
	CommandPong:       "<message> - Sent in response to server ping event to prevent the connection from timing out.",
	CommandDisconnect: "- Disconnect from the server.",
}
