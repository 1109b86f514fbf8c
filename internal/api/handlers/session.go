package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
)

const (
	sessionReadLimit  = 64 * 1024
	sessionWriteWait  = 10 * time.Second
	sessionIdleWindow = 10 * time.Minute
)

// Outbound message types
const (
	MessageResult = "result"
	MessageError  = "error"
)

// SessionRequest is one inbound parameter set. Omitted numbers use the configured defaults.
type SessionRequest struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Symbols  []string `json:"symbols"`
	TopN     *int     `json:"top_n,omitempty"`
	Order    *int     `json:"order,omitempty"`
	StopLoss *int     `json:"stop_loss,omitempty"`
	Mover    string   `json:"mover,omitempty"`
	Side     string   `json:"side,omitempty"`
}

// SessionMessage is one outbound message
type SessionMessage struct {
	Type  string        `json:"type"`
	Data  *AnalysisData `json:"data,omitempty"`
	Error string        `json:"error,omitempty"`
}

func (req SessionRequest) values() url.Values {
	q := url.Values{}
	q.Set(ParamStart, req.Start)
	q.Set(ParamEnd, req.End)
	for _, s := range req.Symbols {
		q.Add(ParamSymbols, s)
	}
	setInt := func(name string, v *int) {
		if v != nil {
			q.Set(name, strconv.Itoa(*v))
		}
	}
	setInt(ParamTopN, req.TopN)
	setInt(ParamOrder, req.Order)
	setInt(ParamStopLoss, req.StopLoss)
	q.Set(ParamMover, req.Mover)
	q.Set(ParamSide, req.Side)
	return q
}

// SessionHandler serves the interactive websocket session.
// Every inbound message triggers an independent pipeline run.
type SessionHandler struct {
	pipeline *pipeline.Pipeline
	defaults config.PipelineConfig
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(p *pipeline.Pipeline, defaults config.PipelineConfig, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		pipeline: p,
		defaults: defaults,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Serve upgrades the connection and answers until the client disconnects
// GET /ws
func (h *SessionHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithField("remote", r.RemoteAddr)
	log.Debug("Session opened")

	conn.SetReadLimit(sessionReadLimit)
	for {
		conn.SetReadDeadline(time.Now().Add(sessionIdleWindow))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Session closed unexpectedly")
			}
			log.Debug("Session closed")
			return
		}

		msg := h.handle(r, payload)

		conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.WithError(err).Warn("Failed to write session message")
			return
		}
	}
}

func (h *SessionHandler) handle(r *http.Request, payload []byte) SessionMessage {
	var req SessionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return SessionMessage{Type: MessageError, Error: fmt.Sprintf("invalid message: %v", err)}
	}

	params, err := ParseParams(req.values(), h.defaults)
	if err != nil {
		return SessionMessage{Type: MessageError, Error: err.Error()}
	}

	result, err := h.pipeline.Run(r.Context(), params)
	if err != nil {
		if !isBadRequest(err) {
			h.logger.WithError(err).Error("Session analysis failed")
		}
		return SessionMessage{Type: MessageError, Error: err.Error()}
	}

	data := NewAnalysisData(result)
	return SessionMessage{Type: MessageResult, Data: &data}
}
