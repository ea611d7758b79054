package enroll

import (
	"context"
	"errors"
	"image"
)

// State is the enrollment session state. Sessions move Idle -> SingleCapture
// -> Idle or Idle -> MultiCapture -> Idle; the frame passed to Capture is
// frozen at that moment and is the only source of face positions for the
// session.
type State int

const (
	StateIdle State = iota
	StateSingleCapture
	StateMultiCapture
)

// ErrSessionBusy is returned when a mode is selected while a capture is
// already pending.
var ErrSessionBusy = errors.New("enrollment session already in progress")

// ErrNoModeSelected is returned when Capture is signalled without a prior
// mode selection.
var ErrNoModeSelected = errors.New("no enrollment mode selected")

// Session is the finite-state controller around the workflow. It consumes
// decoded intents (mode selection, capture signal) independently of any
// input mechanism.
type Session struct {
	workflow *Workflow
	state    State
}

// NewSession creates an idle session over the given workflow.
func NewSession(workflow *Workflow) *Session {
	return &Session{workflow: workflow}
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// BeginSingleEnroll selects single-face mode.
func (s *Session) BeginSingleEnroll() error {
	if s.state != StateIdle {
		return ErrSessionBusy
	}
	s.state = StateSingleCapture
	return nil
}

// BeginMultiEnroll selects multi-face mode.
func (s *Session) BeginMultiEnroll() error {
	if s.state != StateIdle {
		return ErrSessionBusy
	}
	s.state = StateMultiCapture
	return nil
}

// Cancel returns the session to idle without mutation.
func (s *Session) Cancel() {
	s.state = StateIdle
}

// Capture runs the selected enrollment mode against the frozen frame. The
// session returns to idle regardless of outcome; the summary reports what
// happened.
func (s *Session) Capture(ctx context.Context, frame image.Image) (*Summary, error) {
	state := s.state
	s.state = StateIdle

	switch state {
	case StateSingleCapture:
		return s.workflow.EnrollSingle(ctx, frame)
	case StateMultiCapture:
		return s.workflow.EnrollAll(ctx, frame)
	default:
		return nil, ErrNoModeSelected
	}
}
