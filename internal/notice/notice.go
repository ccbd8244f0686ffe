// Package notice models transient user-facing notices (toasts).
package notice

// Level classifies a notice for presentation.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a single transient message surfaced to the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives notices emitted by view-state controllers.
type Notifier interface {
	Notify(n Notice)
}

// Recorder is a Notifier that keeps every notice it receives, for tests and
// for response payloads that carry notices back to the caller.
type Recorder struct {
	Notices []Notice
}

// Notify appends the notice.
func (r *Recorder) Notify(n Notice) {
	r.Notices = append(r.Notices, n)
}

// Last returns the most recent notice, or a zero Notice if none were emitted.
func (r *Recorder) Last() Notice {
	if len(r.Notices) == 0 {
		return Notice{}
	}
	return r.Notices[len(r.Notices)-1]
}

// Reset drops all recorded notices.
func (r *Recorder) Reset() {
	r.Notices = nil
}
