package websocket

import "github.com/cetlabs/cetexam-backend/internal/model"

// Event labels server → client messages on the monitor stream.
type Event string

const (
	EventError  Event = "error"
	EventGraded Event = "result_graded"
)

// GradedNotice is pushed to admin monitor sockets whenever a submission
// finishes grading.
type GradedNotice struct {
	Event  Event                   `json:"event"`
	Result model.ResultGradedEvent `json:"result"`
}

// ErrorResponse is sent when the stream cannot continue.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
