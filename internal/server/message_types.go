package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeListTables MessageType = "list_tables"
	MessageTypeJoinTable  MessageType = "join_table"
	MessageTypeLeaveTable MessageType = "leave_table"
	MessageTypeAction     MessageType = "action"

	// Server to client messages
	MessageTypeAuthResponse  MessageType = "auth_response"
	MessageTypeTableList     MessageType = "table_list"
	MessageTypeTableJoined   MessageType = "table_joined"
	MessageTypeTableLeft     MessageType = "table_left"
	MessageTypeGameState     MessageType = "game_state"
	MessageTypeHandEnd       MessageType = "hand_end"
	MessageTypePlayerTimeout MessageType = "player_timeout"
	MessageTypeError         MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
