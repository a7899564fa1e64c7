package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/middleware"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/service"
	ws "github.com/Kolass2004/PrepmyExam-sub000/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler drives a live exam session over a WebSocket connection.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/exams/:exam_id/session
// Upgrades to WebSocket and relays session intents: select, advance,
// skip, prev, pause, submit. Each intent answers with a fresh snapshot.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	userID := claims.UserID

	// The REST start endpoint owns session creation; the socket only
	// drives an already-live session.
	if _, err := h.sessionService.State(userID, examID); err != nil {
		ws.WriteError(conn, "no active session for this exam")
		return
	}

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("exam_id", examID.String()).
		Logger()

	wsLog.Info().Msg("User connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, "malformed message")
			continue
		}

		done := h.dispatch(c, conn, wsLog, raw, envelope.Action, userID, examID)
		if done {
			break
		}
	}
}

// dispatch routes one action. Returns true when the session reached a
// terminal phase and the loop should end.
func (h *WSHandler) dispatch(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, raw []byte, action ws.Action, userID int, examID uuid.UUID) bool {
	switch action {
	case ws.ActionPing:
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		return false

	case ws.ActionSelect:
		var req ws.SelectRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.Key == "" {
			ws.WriteError(conn, "key is required")
			return false
		}
		st, err := h.sessionService.SelectOption(userID, examID, req.Key)
		if err != nil {
			ws.WriteError(conn, err.Error())
			return false
		}
		correct := false
		if st.Correct != nil {
			correct = *st.Correct
		}
		ws.WriteTyped(conn, ws.FeedbackResponse{Event: ws.EventFeedback, Correct: correct, State: st})
		return false

	case ws.ActionAdvance:
		st, err := h.sessionService.Advance(userID, examID)
		if err != nil {
			ws.WriteError(conn, err.Error())
			return false
		}
		ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: st})
		return false

	case ws.ActionSkip:
		st, err := h.sessionService.Skip(userID, examID)
		if err != nil {
			ws.WriteError(conn, err.Error())
			return false
		}
		ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: st})
		return false

	case ws.ActionPrev:
		st, err := h.sessionService.Prev(userID, examID)
		if err != nil {
			ws.WriteError(conn, err.Error())
			return false
		}
		ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: st})
		return false

	case ws.ActionPause:
		st, err := h.sessionService.Pause(c.Request.Context(), userID, examID)
		if err != nil {
			ws.WriteError(conn, err.Error())
			// A write failure still retired the session locally.
			return st.Warning != ""
		}
		wsLog.Info().Msg("Session paused")
		ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: st})
		return true

	case ws.ActionSubmit:
		st, err := h.sessionService.Submit(c.Request.Context(), userID, examID)
		if err != nil {
			ws.WriteError(conn, err.Error())
			return false
		}
		wsLog.Info().Float64("score", st.Result.Score).Msg("Attempt submitted and scored")
		ws.WriteTyped(conn, ws.GradedResponse{
			Event:     ws.EventGraded,
			Score:     st.Result.Score,
			AttemptID: st.AttemptID.String(),
			State:     st,
		})
		return true

	default:
		wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
		ws.WriteError(conn, "unknown action: "+string(action))
		return false
	}
}
