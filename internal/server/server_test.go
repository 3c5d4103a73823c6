package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-table/internal/statistics"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := NewRegistry(testLogger())
	srv := NewServer(reg, testLogger())
	table := NewTable(TableOptions{
		Config:   TableConfig{Name: "main", MaxPlayers: 6, MinPlayers: 2, SmallBlind: 5, BigBlind: 10},
		Notifier: srv,
		Clock:    quartz.NewMock(t),
		Logger:   testLogger(),
	})
	require.NoError(t, reg.Register(table))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, mt MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(mt, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil discards messages until one of type mt arrives and decodes its
// payload into out.
func readUntil(t *testing.T, conn *websocket.Conn, mt MessageType, out any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", mt)
		if msg.Type == mt {
			require.NoError(t, json.Unmarshal(msg.Data, out))
			return
		}
	}
}

func login(t *testing.T, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	conn := dial(t, ts)
	send(t, conn, MessageTypeAuth, AuthData{PlayerName: name})
	var resp AuthResponseData
	readUntil(t, conn, MessageTypeAuthResponse, &resp)
	require.True(t, resp.Success)
	return conn
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestServerTableRoutes(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/tables")
	require.NoError(t, err)
	var list TableListData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	_ = resp.Body.Close()
	require.Len(t, list.Tables, 1)
	assert.Equal(t, "main", list.Tables[0].ID)
	assert.Equal(t, "waiting", list.Tables[0].Status)

	resp, err = http.Get(ts.URL + "/tables/main")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var state GameStateData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	_ = resp.Body.Close()
	assert.Equal(t, "main", state.TableID)
	assert.True(t, state.State.HandOver)

	resp, err = http.Get(ts.URL + "/tables/nowhere")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errData ErrorData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errData))
	_ = resp.Body.Close()
	assert.Equal(t, "table_not_found", errData.Code)

	resp, err = http.Get(ts.URL + "/tables/main/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats statistics.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	_ = resp.Body.Close()
	assert.Zero(t, stats.Hands)
	assert.Empty(t, stats.Players)
}

func TestServerRequiresAuth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, MessageTypeJoinTable, JoinTableData{TableID: "main"})
	var errData ErrorData
	readUntil(t, conn, MessageTypeError, &errData)
	assert.Equal(t, "not_authenticated", errData.Code)

	send(t, conn, MessageType("shuffle"), nil)
	readUntil(t, conn, MessageTypeError, &errData)
	assert.Equal(t, "unknown_message_type", errData.Code)
}

func TestServerPlaysHandOverWebSocket(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	alice := login(t, ts, "alice")
	send(t, alice, MessageTypeJoinTable, JoinTableData{TableID: "main"})
	var joined TableJoinedData
	readUntil(t, alice, MessageTypeTableJoined, &joined)
	assert.Equal(t, 0, joined.Seat)
	assert.Equal(t, 1000, joined.Chips)

	bob := login(t, ts, "bob")
	send(t, bob, MessageTypeJoinTable, JoinTableData{TableID: "main"})
	readUntil(t, bob, MessageTypeTableJoined, &joined)
	assert.Equal(t, 1, joined.Seat)
	require.False(t, joined.State.HandOver, "the second player starts the hand")

	// Alice sees her own cards but not bob's.
	var state GameStateData
	readUntil(t, alice, MessageTypeGameState, &state)
	require.Len(t, state.State.Seats, 2)
	assert.Len(t, state.State.Seats[0].Hole, 2)
	assert.Empty(t, state.State.Seats[1].Hole)
	assert.Equal(t, "alice", state.State.CurrentActor)

	// Rejections go to the caller only.
	send(t, bob, MessageTypeAction, ActionData{TableID: "main", Action: "check"})
	var errData ErrorData
	readUntil(t, bob, MessageTypeError, &errData)
	assert.Equal(t, "out_of_turn", errData.Code)

	send(t, alice, MessageTypeAction, ActionData{TableID: "main", Action: "shove"})
	readUntil(t, alice, MessageTypeError, &errData)
	assert.Equal(t, "invalid_action", errData.Code)

	// Disconnecting folds alice's hand and bob collects the blinds.
	require.NoError(t, alice.Close())
	var end HandEndData
	readUntil(t, bob, MessageTypeHandEnd, &end)
	assert.Equal(t, []string{"bob"}, end.Result.Winners)
	assert.Equal(t, map[string]int{"bob": 15}, end.Result.Payouts)
	assert.Empty(t, end.Result.Board)
}
