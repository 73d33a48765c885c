package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
	"github.com/vncsmyrnk/classpoll/internal/core/services"
)

var errUnknownEvent = errors.New("unknown event")

// Handler upgrades HTTP requests to WebSocket connections and feeds their
// frames to the session engine.
type Handler struct {
	hub      *Hub
	engine   ports.SessionEngine
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, engine ports.SessionEngine, logger *slog.Logger, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    hub,
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(allowed, origin) || slices.Contains(allowed, u.Host)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newClient(uuid.NewString(), conn)
	h.hub.register(c)
	h.logger.Info("user connected", slog.String("conn_id", c.id), slog.String("remote_addr", r.RemoteAddr))

	go c.writePump()

	err = c.readPump(func(msg []byte) {
		h.handleMessage(c.id, msg)
	})
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		h.logger.Debug("connection closed unexpectedly", slog.String("conn_id", c.id), slog.String("error", err.Error()))
	}

	h.hub.unregister(c)
	h.engine.Disconnect(c.id)
	h.logger.Info("user disconnected", slog.String("conn_id", c.id))
}

func (h *Handler) handleMessage(connID string, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.hub.Send(connID, ports.EventError, services.MessagePayload{Message: "malformed message"})
		return
	}

	if err := h.dispatch(connID, env); err != nil {
		var decodeErr *decodeError
		if errors.As(err, &decodeErr) || errors.Is(err, errUnknownEvent) {
			h.hub.Send(connID, ports.EventError, services.MessagePayload{Message: err.Error()})
		}
		h.logger.Debug("event not applied",
			slog.String("conn_id", connID),
			slog.String("event", env.Event),
			slog.String("error", err.Error()),
		)
	}
}

type decodeError struct {
	event string
	err   error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("invalid %s payload", e.event)
}

func (e *decodeError) Unwrap() error {
	return e.err
}

func decode(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return &decodeError{event: env.Event, err: errors.New("missing data")}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &decodeError{event: env.Event, err: err}
	}
	return nil
}

// dispatch routes one inbound event. Errors returned by the engine have already
// been reported to the connection.
func (h *Handler) dispatch(connID string, env Envelope) error {
	switch env.Event {
	case EventPresenterJoin, eventJoinTeacher:
		return h.engine.PresenterJoin(connID)

	case EventParticipantJoin, eventJoinStudent:
		var req joinRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		return h.engine.ParticipantJoin(connID, req.SessionID, req.Name)

	case EventCreateQuestion:
		var req ports.CreateQuestionRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		return h.engine.CreateQuestion(connID, req)

	case EventCloseQuestion:
		return h.engine.CloseQuestion(connID)

	case EventSubmitAnswer:
		var req ports.SubmitAnswerRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		return h.engine.SubmitAnswer(connID, req)

	case EventGetActiveQuestion, EventGetFinalResult, EventGetStudents:
		var req sessionRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		switch env.Event {
		case EventGetActiveQuestion:
			return h.engine.GetActiveQuestion(connID, req.SessionID)
		case EventGetFinalResult:
			return h.engine.GetFinalResult(connID, req.SessionID)
		default:
			return h.engine.GetStudents(connID, req.SessionID)
		}

	default:
		return fmt.Errorf("%w %q", errUnknownEvent, env.Event)
	}
}
