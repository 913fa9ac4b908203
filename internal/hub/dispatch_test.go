package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/padloom/padloom/internal/protocol"
)

func frame(t *testing.T, event, id string, payload any) protocol.ClientFrame {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return protocol.ClientFrame{Event: event, ID: id, Payload: raw}
}

func TestHandleFrameRoutesJoin(t *testing.T) {
	env := startHub(t)
	c := connect(t, env.hub, "conn-a")

	env.hub.HandleFrame(c, frame(t, protocol.EventJoinRoom, "req1", protocol.JoinRequest{
		RoomID: "r1", Pseudonym: "alice", FirstRoom: true,
	}))

	ack := recvEvent(t, c, protocol.EventAck)
	require.Equal(t, "req1", ack.ID)
	require.True(t, ack.Payload.(protocol.JoinResponse).Success)
	recvEvent(t, c, protocol.EventUpdateUserList)
}

func TestHandleFrameIgnoresMalformedPayload(t *testing.T) {
	env := startHub(t)
	c := connect(t, env.hub, "conn-a")

	env.hub.HandleFrame(c, protocol.ClientFrame{
		Event:   protocol.EventJoinRoom,
		ID:      "req1",
		Payload: json.RawMessage(`{"roomId": 42}`),
	})
	requireNoFrame(t, c)
}

func TestHandleFrameIgnoresUnknownEvent(t *testing.T) {
	env := startHub(t)
	c := connect(t, env.hub, "conn-a")

	env.hub.HandleFrame(c, protocol.ClientFrame{Event: "make-coffee", ID: "req1"})
	requireNoFrame(t, c)
}

func TestHandleFrameRoomCode(t *testing.T) {
	env := startHub(t)
	c := connect(t, env.hub, "conn-a")

	env.hub.HandleFrame(c, protocol.ClientFrame{Event: protocol.EventNewRoomCode, ID: "rc1"})
	ack := recvEvent(t, c, protocol.EventAck)
	require.Equal(t, "rc1", ack.ID)
	require.True(t, ack.Payload.(protocol.RoomCodeResponse).Success)
}
