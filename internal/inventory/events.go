package inventory

import "time"

// Event types published after a transaction commits
const (
	EventBoxCreated     = "box.created"
	EventBoxFilled      = "box.filled"
	EventBoxMoved       = "box.moved"
	EventBoxConsumed    = "box.consumed"
	EventPalletFinished = "pallet.finished"
)

// Event describes a committed change
type Event struct {
	Type      string    `json:"type"`
	BoxNumber string    `json:"box_number,omitempty"`
	Location  string    `json:"location,omitempty"`
	PalletID  uint      `json:"pallet_id,omitempty"`
	At        time.Time `json:"at"`
}

// EventPublisher receives committed events
type EventPublisher interface {
	Publish(Event)
}

// Recorder receives operation metrics
type Recorder interface {
	RecordOperation(op string, kind string, duration time.Duration)
	RecordInternalError(op string)
	RecordPalletFinished(status string, boxes int)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string, time.Duration) {}
func (nopRecorder) RecordInternalError(string)                    {}
func (nopRecorder) RecordPalletFinished(string, int)              {}
