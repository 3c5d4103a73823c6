package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdem-table/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type ActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableInfo struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	MinPlayers  int    `json:"minPlayers"`
	Stakes      string `json:"stakes"`
	Status      string `json:"status"`
	HandsPlayed int    `json:"handsPlayed"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type TableJoinedData struct {
	TableID string        `json:"tableId"`
	Seat    int           `json:"seat"`
	Chips   int           `json:"chips"`
	State   game.Snapshot `json:"state"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
	Chips   int    `json:"chips"`
}

type GameStateData struct {
	TableID string        `json:"tableId"`
	State   game.Snapshot `json:"state"`
}

type HandEndData struct {
	TableID string           `json:"tableId"`
	Result  *game.HandResult `json:"result"`
}

type PlayerTimeoutData struct {
	TableID    string `json:"tableId"`
	PlayerName string `json:"playerName"`
	Action     string `json:"action"` // The action taken on the player's behalf
}
