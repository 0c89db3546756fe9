// Package web serves the browser chat session over echo and WebSocket.
package web

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/zjregee/scout/internal/logging"
	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service"
	"github.com/zjregee/scout/internal/session"
)

//go:embed static/index.html
var indexHTML []byte

type Server struct {
	echo     *echo.Echo
	chatter  session.Chatter
	sessions *sessionStore
	upgrader websocket.Upgrader
}

type chatRequest struct {
	Input string `json:"input"`
}

type sessionResponse struct {
	ThreadID   string                   `json:"thread_id"`
	Transcript []models.TranscriptEntry `json:"transcript"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(chatter session.Chatter) *Server {
	s := &Server{
		echo:     echo.New(),
		chatter:  chatter,
		sessions: newSessionStore(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(requestLogger(logging.Logger()))

	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/api/session", s.handleSession)
	s.echo.POST("/api/chat", s.handleChat)
	s.echo.GET("/api/ws", s.handleWebSocket)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	logging.Logger().WithField("addr", addr).Info("web session listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

func (s *Server) handleSession(c echo.Context) error {
	sess, cookie := s.sessions.resolve(c)
	if cookie != nil {
		c.SetCookie(cookie)
	}
	return c.JSON(http.StatusOK, sessionResponse{
		ThreadID:   sess.ThreadID(),
		Transcript: sess.Transcript(),
	})
}

func (s *Server) handleChat(c echo.Context) error {
	sess, cookie := s.sessions.resolve(c)
	if cookie != nil {
		c.SetCookie(cookie)
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	reply, err := sess.Ask(c.Request().Context(), s.chatter, req.Input, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrEmptyInput) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, reply)
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			logger.WithFields(logrus.Fields{
				"method":   req.Method,
				"path":     req.URL.Path,
				"status":   c.Response().Status,
				"duration": time.Since(start).Milliseconds(),
			}).Debug("request served")
			return nil
		}
	}
}
