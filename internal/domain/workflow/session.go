package workflow

import (
	"context"
	"sync"
	"time"

	"dcreceiving/internal/domain/progress"
	"dcreceiving/internal/domain/upload"
)

type State string

const (
	StateIdle        State = "idle"
	StatePhotoStaged State = "photo_staged"
	StateSubmitting  State = "submitting"
)

// Session is one operator validating one delivery note. A staged photo is
// attached to the next successful scan only; rejected scans keep it so the
// operator can retry without recapturing.
type Session struct {
	operatorID     int64
	deliveryNoteID int64
	attempter      Attempter
	now            func() time.Time

	mu         sync.Mutex
	photo      *upload.Photo
	submitting bool
	lastNotice *Notice
	lastActive time.Time
}

func NewSession(operatorID, deliveryNoteID int64, attempter Attempter) *Session {
	s := &Session{
		operatorID:     operatorID,
		deliveryNoteID: deliveryNoteID,
		attempter:      attempter,
		now:            time.Now,
	}
	s.lastActive = s.now()
	return s
}

// StagePhoto holds photo for the next scan, replacing any earlier one.
func (s *Session) StagePhoto(photo *upload.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInProgress
	}
	s.photo = photo
	s.touch()
	return nil
}

func (s *Session) DiscardPhoto() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInProgress
	}
	s.photo = nil
	s.touch()
	return nil
}

// Submit runs one scan with the staged photo, if any. Only one submit runs at
// a time per session.
func (s *Session) Submit(ctx context.Context, serial string) (*Outcome, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	s.submitting = true
	photo := s.photo
	s.touch()
	s.mu.Unlock()

	out, err := s.attempter.Attempt(ctx, s.operatorID, s.deliveryNoteID, serial, photo)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.touch()
	if err != nil {
		n := NoticeFor(err)
		n.At = s.now()
		s.lastNotice = &n
		return nil, err
	}
	// only clear the photo that was actually attached
	if s.photo == photo {
		s.photo = nil
	}
	n := out.Notice
	s.lastNotice = &n
	return out, nil
}

// Snapshot is the session state as the scanning screen renders it.
type Snapshot struct {
	OperatorID     int64             `json:"operator_id"`
	DeliveryNoteID int64             `json:"delivery_note_id"`
	State          State             `json:"state"`
	PhotoStaged    bool              `json:"photo_staged"`
	PhotoName      string            `json:"photo_name,omitempty"`
	LastNotice     *Notice           `json:"last_notice,omitempty"`
	Progress       progress.Progress `json:"progress"`
	Complete       bool              `json:"complete"`
}

// Snapshot reports the session state with freshly computed progress.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	snap := Snapshot{
		OperatorID:     s.operatorID,
		DeliveryNoteID: s.deliveryNoteID,
		State:          s.stateLocked(),
		PhotoStaged:    s.photo != nil,
	}
	if s.photo != nil {
		snap.PhotoName = s.photo.Filename
	}
	if s.lastNotice != nil {
		n := *s.lastNotice
		snap.LastNotice = &n
	}
	s.mu.Unlock()

	p, err := s.attempter.Progress(ctx, s.deliveryNoteID)
	if err != nil {
		return snap, err
	}
	snap.Progress = p
	snap.Complete = p.Complete()
	return snap, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.submitting:
		return StateSubmitting
	case s.photo != nil:
		return StatePhotoStaged
	}
	return StateIdle
}

func (s *Session) touch() { s.lastActive = s.now() }

// idleSince reports when the session was last used, and false while a submit
// is running.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, !s.submitting
}
