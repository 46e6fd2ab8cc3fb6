package ws

// Server -> client events.
const (
	TeamMessage    = "team_message"
	ClientActivity = "client_activity"
	ErrorEvent     = "error"

	// RoomEvicted tells a connection it was removed from RoomID. Between
	// nodes it carries the evicted identity id as Data.
	RoomEvicted = "room_evicted"
)

// Client -> server control messages.
const (
	JoinClient  = "join-client"
	LeaveClient = "leave-client"
	JoinTeam    = "join-team"
	LeaveTeam   = "leave-team"
)
