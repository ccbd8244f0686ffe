// Package recording manages screen-recording capture sessions. A session
// holds live media tracks and enforces a hard wall-clock cap; every track
// is released exactly once no matter which exit path fires first.
package recording

import (
	"errors"
	"sync"
	"time"
)

// DefaultMaxDuration is the hard cap on a single recording.
const DefaultMaxDuration = 3 * time.Minute

// StopReason says which exit path ended a session.
type StopReason string

const (
	ReasonManual      StopReason = "manual"
	ReasonCapReached  StopReason = "cap_reached"
	ReasonStreamEnded StopReason = "stream_ended"
	ReasonTeardown    StopReason = "teardown"
)

var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("recording session already started")
	// ErrNotStarted is returned when stopping a session that never started.
	ErrNotStarted = errors.New("recording session not started")
)

// Track is one live media track of an acquired stream.
type Track interface {
	Kind() string
	Stop()
}

// CompleteFunc receives the final duration (clamped to the cap) and the
// exit path that ended the session.
type CompleteFunc func(duration time.Duration, reason StopReason)

// Session is a single capture session. Zero value is not usable; build
// with NewSession.
type Session struct {
	mu      sync.Mutex
	tracks  []Track
	started time.Time
	timer   *time.Timer
	running bool

	release sync.Once

	maxDuration time.Duration
	onComplete  CompleteFunc
	now         func() time.Time
}

// NewSession builds a session with the given cap. A non-positive cap uses
// DefaultMaxDuration. onComplete may be nil.
func NewSession(maxDuration time.Duration, onComplete CompleteFunc) *Session {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &Session{
		maxDuration: maxDuration,
		onComplete:  onComplete,
		now:         time.Now,
	}
}

// Start acquires the given tracks and arms the cap timer. Calling Start on
// a running or finished session fails.
func (s *Session) Start(tracks ...Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.started != (time.Time{}) {
		return ErrAlreadyStarted
	}

	s.tracks = append(s.tracks, tracks...)
	s.started = s.now()
	s.running = true
	s.timer = time.AfterFunc(s.maxDuration, func() {
		s.finish(ReasonCapReached)
	})
	return nil
}

// Stop ends the session from the user's stop control.
func (s *Session) Stop() error { return s.stopWith(ReasonManual) }

// StreamEnded ends the session when the browser tears the stream down
// (e.g. the user stops sharing from browser chrome).
func (s *Session) StreamEnded() error { return s.stopWith(ReasonStreamEnded) }

// Close ends the session on component teardown. Safe to call on an
// already-finished session.
func (s *Session) Close() error {
	s.mu.Lock()
	started := s.running || s.started != (time.Time{})
	s.mu.Unlock()
	if !started {
		return nil
	}
	s.finish(ReasonTeardown)
	return nil
}

// Running reports whether the session is capturing.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) stopWith(reason StopReason) error {
	s.mu.Lock()
	started := s.running || s.started != (time.Time{})
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	s.finish(reason)
	return nil
}

// finish is the single convergence point for every exit path. The
// sync.Once guarantees each track's Stop fires exactly once even when the
// cap timer races a manual stop.
func (s *Session) finish(reason StopReason) {
	s.release.Do(func() {
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
		}
		tracks := s.tracks
		s.tracks = nil
		s.running = false
		duration := s.now().Sub(s.started)
		s.mu.Unlock()

		for _, track := range tracks {
			track.Stop()
		}

		if duration > s.maxDuration {
			duration = s.maxDuration
		}
		if duration < 0 {
			duration = 0
		}
		if s.onComplete != nil {
			s.onComplete(duration, reason)
		}
	})
}

// Container mime types in preference order for recorder negotiation.
var preferredMimeTypes = []string{
	"video/webm;codecs=vp9",
	"video/webm;codecs=vp8",
	"video/webm",
	"video/mp4",
}

// PickMimeType returns the first recorder container the environment
// supports, preferring VP9, then VP8, then generic WebM, then MP4.
// Returns "" when nothing is supported.
func PickMimeType(supported func(mimeType string) bool) string {
	for _, mt := range preferredMimeTypes {
		if supported(mt) {
			return mt
		}
	}
	return ""
}
