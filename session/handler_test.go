package session

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AltairaLabs/CallKit/store"
)

func dialStream(t *testing.T, f *sessionFixture) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(f.manager.Handler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) OutboundFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame OutboundFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHandler_StreamLifecycle(t *testing.T) {
	f := newSessionFixture(t)
	conn := dialStream(t, f)

	require.NoError(t, conn.WriteJSON(Event{Event: EventConnected}))
	require.NoError(t, conn.WriteJSON(startEvent()))

	// Greeting arrives as a media frame followed by its mark.
	greeting := readFrame(t, conn)
	assert.Equal(t, EventMedia, greeting.Event)
	assert.Equal(t, testStream, greeting.StreamSID)
	require.NotNil(t, greeting.Media)
	assert.NotEmpty(t, greeting.Media.Payload)

	mark := readFrame(t, conn)
	assert.Equal(t, EventMark, mark.Event)
	require.NotNil(t, mark.Mark)
	assert.NotEmpty(t, mark.Mark.Name)

	// Enough audio for one pipeline run.
	require.NoError(t, conn.WriteJSON(mediaEvent()))
	require.NoError(t, conn.WriteJSON(mediaEvent()))

	response := readFrame(t, conn)
	assert.Equal(t, EventMedia, response.Event)
	responseMark := readFrame(t, conn)
	assert.Equal(t, EventMark, responseMark.Event)

	// Stop ends the session and the server closes the connection.
	require.NoError(t, conn.WriteJSON(Event{Event: EventStop}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame OutboundFrame
	assert.Error(t, conn.ReadJSON(&frame))

	waitForStatus(t, f, store.StatusCompleted)
}

func TestHandler_AbruptDisconnectFinalizesCall(t *testing.T) {
	f := newSessionFixture(t)
	conn := dialStream(t, f)

	require.NoError(t, conn.WriteJSON(startEvent()))
	readFrame(t, conn) // greeting media
	readFrame(t, conn) // greeting mark

	// Drop the connection without a stop event.
	require.NoError(t, conn.Close())

	waitForStatus(t, f, store.StatusCompleted)
}

func TestHandler_MalformedJSONClosesConnection(t *testing.T) {
	f := newSessionFixture(t)
	conn := dialStream(t, f)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame OutboundFrame
	assert.Error(t, conn.ReadJSON(&frame))
}

// waitForStatus polls the call record until the server goroutine has
// finished its cleanup.
func waitForStatus(t *testing.T, f *sessionFixture, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := f.calls.FindByCallID(context.Background(), testCallID)
		require.NoError(t, err)
		if record.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("call never reached status %q", want)
}

func TestHandler_BackToBackSegments(t *testing.T) {
	f := newSessionFixture(t)
	conn := dialStream(t, f)

	require.NoError(t, conn.WriteJSON(startEvent()))
	readFrame(t, conn)
	readFrame(t, conn)

	for i := 0; i < 4; i++ {
		require.NoError(t, conn.WriteJSON(mediaEvent()))
	}

	// Two pipeline runs, each producing media plus mark, frames whole
	// and in order.
	var media, marks int
	for i := 0; i < 4; i++ {
		frame := readFrame(t, conn)
		switch frame.Event {
		case EventMedia:
			media++
		case EventMark:
			marks++
		}
	}
	assert.Equal(t, 2, media)
	assert.Equal(t, 2, marks)
}
