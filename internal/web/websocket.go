package web

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/zjregee/scout/internal/logging"
)

type frameType string

const (
	frameStatus frameType = "status"
	frameAnswer frameType = "answer"
	frameError  frameType = "error"
)

type frame struct {
	Type     frameType `json:"type"`
	Content  string    `json:"content"`
	HTML     string    `json:"html,omitempty"`
	ThreadID string    `json:"thread_id,omitempty"`
}

// handleWebSocket runs one turn per inbound {"input": ...} message, streaming
// a status frame per finished step and then an answer or error frame.
func (s *Server) handleWebSocket(c echo.Context) error {
	sess, cookie := s.sessions.resolve(c)

	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), header)
	if err != nil {
		return err
	}
	defer conn.Close()

	log := logging.WithThread(sess.ThreadID())
	ctx := c.Request().Context()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("websocket read ended")
			}
			return nil
		}

		var writeErr error
		send := func(f frame) {
			if writeErr != nil {
				return
			}
			writeErr = conn.WriteJSON(f)
		}

		reply, err := sess.Ask(ctx, s.chatter, req.Input, func(label string) {
			send(frame{Type: frameStatus, Content: label})
		})
		if err != nil {
			send(frame{Type: frameError, Content: err.Error()})
		} else {
			send(frame{Type: frameAnswer, Content: reply.Answer, HTML: reply.HTML, ThreadID: reply.ThreadID})
		}

		if writeErr != nil {
			log.WithError(writeErr).Warn("websocket write failed")
			return nil
		}
	}
}
