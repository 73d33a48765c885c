package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/classpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
	"github.com/vncsmyrnk/classpoll/internal/core/services"
)

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

// manualClock never fires on its own; tests close polls explicitly.
type manualClock struct{}

func (manualClock) Now() time.Time { return time.Now() }

func (manualClock) AfterFunc(time.Duration, func()) ports.Timer { return manualTimer{} }

type testServer struct {
	server  *httptest.Server
	hub     *Hub
	results ports.PollResultRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	results := memory.NewPollResultRepository()
	engine := services.NewSessionEngine(
		memory.NewPollRegistry(time.Now, 1),
		memory.NewSessionRegistry(time.Now),
		hub,
		results,
		manualClock{},
		logger,
		services.EngineConfig{PollDuration: time.Minute},
	)
	server := httptest.NewServer(NewHandler(hub, engine, logger, []string{"*"}))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return &testServer{server: server, hub: hub, results: results}
}

type testConn struct {
	t    *testing.T
	conn *websocket.Conn
}

func (s *testServer) dial(t *testing.T) *testConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testConn{t: t, conn: conn}
}

func (c *testConn) emit(event string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(Envelope{Event: event, Data: raw}))
}

// expect reads frames until one carries event, skipping any others.
func (c *testConn) expect(event string, out any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var env Envelope
		require.NoError(c.t, c.conn.ReadJSON(&env), "waiting for %s", event)
		if env.Event != event {
			continue
		}
		if out != nil {
			require.NoError(c.t, json.Unmarshal(env.Data, out))
		}
		return
	}
}

func TestPollOverWebSocket(t *testing.T) {
	s := newTestServer(t)

	teacher := s.dial(t)
	teacher.emit(EventPresenterJoin, struct{}{})
	var created services.SessionCreatedPayload
	teacher.expect(ports.EventSessionCreated, &created)
	require.NotEmpty(t, created.SessionID)

	students := make([]*testConn, 3)
	for i := range students {
		students[i] = s.dial(t)
		students[i].emit(EventParticipantJoin, joinRequest{SessionID: created.SessionID, Name: "student"})
		students[i].expect(ports.EventJoinSuccess, nil)
	}

	teacher.emit(EventCreateQuestion, ports.CreateQuestionRequest{Question: "A or B?", Options: []string{"A", "B"}})
	for _, st := range students {
		var q services.QuestionPayload
		st.expect(ports.EventNewQuestion, &q)
		assert.Equal(t, []string{"A", "B"}, q.Options)
	}

	for i, choice := range []int{0, 0, 1} {
		students[i].emit(EventSubmitAnswer, ports.SubmitAnswerRequest{SessionID: created.SessionID, Name: "student", OptionIndex: &choice})
		// student i has seen one update per vote cast so far
		var update services.ResultsPayload
		for n := 0; n <= i; n++ {
			students[i].expect(ports.EventPollUpdate, &update)
		}
		assert.Equal(t, i+1, update.TotalVotes)
	}

	var live services.ResultsPayload
	for i := 0; i < 3; i++ {
		teacher.expect(ports.EventPollUpdate, &live)
	}
	assert.Equal(t, 3, live.TotalVotes)
	assert.Equal(t, 66.67, live.Options[0].Percentage)
	assert.Equal(t, 33.33, live.Options[1].Percentage)

	second := 1
	students[0].emit(EventSubmitAnswer, ports.SubmitAnswerRequest{SessionID: created.SessionID, OptionIndex: &second})
	var rejected services.MessagePayload
	students[0].expect(ports.EventError, &rejected)
	assert.Equal(t, "you have already submitted an answer", rejected.Message)

	teacher.emit(EventCloseQuestion, struct{}{})
	var final services.ResultsPayload
	students[2].expect(ports.EventPollResults, &final)
	assert.Equal(t, "closed", string(final.Status))
	assert.Equal(t, 3, final.TotalVotes)

	require.Eventually(t, func() bool {
		list, err := s.results.ListBySession(context.Background(), created.SessionID)
		return err == nil && len(list) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestLegacyJoinEventsAndSessionEnd(t *testing.T) {
	s := newTestServer(t)

	teacher := s.dial(t)
	teacher.emit(eventJoinTeacher, nil)
	var created services.SessionCreatedPayload
	teacher.expect(ports.EventSessionCreated, &created)

	student := s.dial(t)
	student.emit(eventJoinStudent, joinRequest{SessionID: created.SessionID, Name: "Ann"})
	student.expect(ports.EventJoinSuccess, nil)

	teacher.emit(EventGetStudents, sessionRequest{SessionID: created.SessionID})
	var list services.StudentsPayload
	teacher.expect(ports.EventStudentsList, &list)
	require.Len(t, list.Students, 1)
	assert.Equal(t, "Ann", list.Students[0].Name)

	require.NoError(t, teacher.conn.Close())

	var ended services.MessagePayload
	student.expect(ports.EventSessionEnded, &ended)
	assert.Equal(t, "Teacher disconnected", ended.Message)

	first := 0
	student.emit(EventSubmitAnswer, ports.SubmitAnswerRequest{SessionID: created.SessionID, OptionIndex: &first})
	var rejected services.MessagePayload
	student.expect(ports.EventError, &rejected)
	assert.Equal(t, "session not found", rejected.Message)
}

func TestSubmitAnswerWithoutOptionIndex(t *testing.T) {
	s := newTestServer(t)

	teacher := s.dial(t)
	teacher.emit(EventPresenterJoin, struct{}{})
	var created services.SessionCreatedPayload
	teacher.expect(ports.EventSessionCreated, &created)

	student := s.dial(t)
	student.emit(EventParticipantJoin, joinRequest{SessionID: created.SessionID, Name: "Ann"})
	student.expect(ports.EventJoinSuccess, nil)

	teacher.emit(EventCreateQuestion, ports.CreateQuestionRequest{Question: "A or B?", Options: []string{"A", "B"}})
	student.expect(ports.EventNewQuestion, nil)

	var msg services.MessagePayload
	student.emit(EventSubmitAnswer, map[string]any{"sessionId": created.SessionID})
	student.expect(ports.EventError, &msg)
	assert.Contains(t, msg.Message, "optionIndex is required")

	student.emit(EventSubmitAnswer, map[string]any{"sessionId": created.SessionID, "optionIndex": nil})
	student.expect(ports.EventError, &msg)
	assert.Contains(t, msg.Message, "optionIndex is required")

	teacher.emit(EventCloseQuestion, struct{}{})
	var final services.ResultsPayload
	student.expect(ports.EventPollResults, &final)
	assert.Equal(t, 0, final.TotalVotes)
	assert.Equal(t, 0, final.Options[0].Count)
}

func TestInvalidFrames(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t)

	require.NoError(t, conn.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var msg services.MessagePayload
	conn.expect(ports.EventError, &msg)
	assert.Equal(t, "malformed message", msg.Message)

	conn.emit("dance", struct{}{})
	conn.expect(ports.EventError, &msg)
	assert.Contains(t, msg.Message, "unknown event")

	require.NoError(t, conn.conn.WriteJSON(Envelope{Event: EventSubmitAnswer}))
	conn.expect(ports.EventError, &msg)
	assert.Equal(t, "invalid submit-answer payload", msg.Message)

	conn.emit(EventParticipantJoin, joinRequest{SessionID: "nope", Name: "Ann"})
	conn.expect(ports.EventJoinError, &msg)
	assert.Contains(t, msg.Message, "invalid session ID")
}

func TestHubDropsEventsForUnknownConnections(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Send("ghost", ports.EventError, services.MessagePayload{Message: "x"})
	assert.Zero(t, hub.Count())
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	s := newTestServer(t)
	conns := []*testConn{s.dial(t), s.dial(t)}
	require.Eventually(t, func() bool { return s.hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	s.hub.Close()

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *testConn) {
			defer wg.Done()
			_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			for {
				if _, _, err := c.conn.ReadMessage(); err != nil {
					return
				}
			}
		}(c)
	}
	wg.Wait()
	require.Eventually(t, func() bool { return s.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"https://class.example.com", "localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "requests without Origin are allowed")

	req.Header.Set("Origin", "https://class.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, checkOrigin([]string{"*"})(req))
}
