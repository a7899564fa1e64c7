package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect  Action = "select"
	ActionAdvance Action = "advance"
	ActionSkip    Action = "skip"
	ActionPrev    Action = "prev"
	ActionPause   Action = "pause"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SelectRequest is sent by the client to lock an answer on the current
// question.
type SelectRequest struct {
	Action Action `json:"action"`
	Key    string `json:"key"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventState    Event = "state"
	EventFeedback Event = "feedback"
	EventGraded   Event = "graded"
	EventPong     Event = "pong"
)

// StateResponse carries a session snapshot after a navigation or
// lifecycle action.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}

// FeedbackResponse is sent right after an answer locks, before the
// reveal window elapses.
type FeedbackResponse struct {
	Event   Event       `json:"event"`
	Correct bool        `json:"correct"`
	State   interface{} `json:"state"`
}

// GradedResponse is sent once the attempt has been scored and ledgered.
type GradedResponse struct {
	Event     Event       `json:"event"`
	Score     float64     `json:"score"`
	AttemptID string      `json:"attempt_id"`
	State     interface{} `json:"state"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
