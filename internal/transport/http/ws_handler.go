package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/engine"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option int `json:"option"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type startedPayload struct {
	SessionID string          `json:"sessionId"`
	Player    string          `json:"player"`
	Snapshot  engine.Snapshot `json:"snapshot"`
}

type endedPayload struct {
	Tally    *domain.Tally    `json:"tally"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a session for the player and relays
// commands and state updates until either side goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	category := domain.DefaultCategoryID
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid category", http.StatusBadRequest)
			return
		}
		category = c
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	runner, err := h.service.Start(ctx, name, category)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := runner.ID()
	log := h.logger.With(zap.String("session", sessionID))

	updates, cancel := runner.Subscribe()
	defer cancel()
	// A dropped connection abandons the session; finished sessions ignore it.
	defer h.service.Quit(context.Background(), sessionID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
		SessionID: sessionID,
		Player:    runner.Player(),
		Snapshot:  runner.Snapshot(),
	}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- toOutbound(ev):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.dispatch(ctx, sessionID, inbound); ok {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one inbound command. State changes reach the client through the
// subscription; only answer feedback and errors are returned here.
func (h *WSHandler) dispatch(ctx context.Context, sessionID string, inbound inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid answer payload"), true
		}
		var fb engine.Feedback
		fb, err = h.service.Answer(ctx, sessionID, payload.Option)
		if err == nil {
			return outboundMessage[any]{Type: "feedback", Payload: fb}, true
		}
	case "jump":
		var payload jumpPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid jump payload"), true
		}
		err = h.service.Jump(ctx, sessionID, payload.Index)
	case "review":
		err = h.service.OpenReview(ctx, sessionID)
	case "submit":
		err = h.service.Submit(ctx, sessionID)
	case "quit":
		h.service.Quit(ctx, sessionID)
	default:
		return errorMessage("unsupported message type"), true
	}
	if err != nil {
		return errorMessage(err.Error()), true
	}
	return outboundMessage[any]{}, false
}

func toOutbound(ev app.Event) outboundMessage[any] {
	switch ev.Type {
	case app.EventEnded:
		return outboundMessage[any]{Type: "ended", Payload: endedPayload{Tally: ev.Tally, Snapshot: ev.Snapshot}}
	case app.EventWarning:
		return outboundMessage[any]{Type: "warning", Payload: errorPayload{Message: ev.Warning}}
	default:
		return outboundMessage[any]{Type: "state", Payload: ev.Snapshot}
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
