package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const analyticsMessageType = "analytics"

type analyticsPayload struct {
	Event     string       `json:"event"`
	Source    string       `json:"source,omitempty"`
	Turn      int          `json:"turn,omitempty"`
	Report    *DepthReport `json:"report,omitempty"`
	Decision  *decisionDTO `json:"decision,omitempty"`
	UpdatedAt int64        `json:"updated_at_ms"`
}

// AnalyticsPublisher streams search progress to websocket viewers.
type AnalyticsPublisher struct {
	hub *Hub
}

func NewAnalyticsPublisher(hub *Hub) *AnalyticsPublisher {
	return &AnalyticsPublisher{hub: hub}
}

// DepthHook returns an engine callback tagging reports with source.
func (p *AnalyticsPublisher) DepthHook(source string, turn func() int) func(DepthReport) {
	if p == nil {
		return nil
	}
	return func(report DepthReport) {
		if !p.hub.HasClients() {
			return
		}
		p.publish(analyticsPayload{Event: "depth", Source: source, Turn: turn(), Report: &report})
	}
}

func (p *AnalyticsPublisher) Decision(source string, turn int, decision Decision) {
	if p == nil || !p.hub.HasClients() {
		return
	}
	dto := decisionToDTO(decision)
	p.publish(analyticsPayload{Event: "decision", Source: source, Turn: turn, Decision: &dto})
}

func (p *AnalyticsPublisher) publish(payload analyticsPayload) {
	payload.UpdatedAt = time.Now().UnixMilli()
	p.hub.Publish(wsMessage{Type: analyticsMessageType, Payload: mustMarshal(payload)})
}

func serveAnalyticsWS(hub *Hub, logger zerolog.Logger, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("analytics upgrade failed")
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: analyticsMessageType, Payload: mustMarshal(analyticsPayload{
		Event:     "hello",
		UpdatedAt: time.Now().UnixMilli(),
	})})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			logger.Debug().Err(err).Msg("analytics writer stopped")
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}
