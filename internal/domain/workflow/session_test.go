package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dcreceiving/internal/domain/progress"
	"dcreceiving/internal/domain/upload"
	"dcreceiving/internal/domain/verification"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSession_PhotoLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := NewSession(5, e.note, e.controller)
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.StagePhoto(testPhoto))
	assert.Equal(t, StatePhotoStaged, s.State())

	// rejected scan keeps the photo for the retry
	stored := &upload.Upload{ID: "u-1", FileURL: "/static/uploads/u-1.jpg"}
	e.evidence.On("Save", mock.Anything, int64(5), testPhoto).Return(stored, nil).Twice()
	e.evidence.On("Discard", mock.Anything, "u-1").Return(nil).Once()

	_, err := s.Submit(ctx, "SN-7")
	assert.ErrorIs(t, err, verification.ErrSerialNotFound)
	assert.Equal(t, StatePhotoStaged, s.State())

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.LastNotice)
	assert.Equal(t, KindSerialNotFound, snap.LastNotice.Kind)
	assert.True(t, snap.PhotoStaged)
	assert.Equal(t, "label.jpg", snap.PhotoName)

	// corrected serial consumes it
	out, err := s.Submit(ctx, "SN-1")
	require.NoError(t, err)
	require.NotNil(t, out.Item.VerificationPhotoPath)
	assert.Equal(t, StateIdle, s.State())

	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap.PhotoStaged)
	assert.Equal(t, progress.Progress{Verified: 1, Total: 2, Percentage: 50}, snap.Progress)
	assert.Equal(t, KindVerified, snap.LastNotice.Kind)
	e.evidence.AssertExpectations(t)
}

func TestSession_AlreadyVerifiedKeepsPhoto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := NewSession(5, e.note, e.controller)

	_, err := s.Submit(ctx, "SN-1")
	require.NoError(t, err)

	require.NoError(t, s.StagePhoto(testPhoto))
	stored := &upload.Upload{ID: "u-9"}
	e.evidence.On("Save", mock.Anything, int64(5), testPhoto).Return(stored, nil).Once()
	e.evidence.On("Discard", mock.Anything, "u-9").Return(nil).Once()

	_, err = s.Submit(ctx, "sn-1")
	assert.ErrorIs(t, err, verification.ErrAlreadyVerified)
	assert.Equal(t, StatePhotoStaged, s.State())
}

func TestSession_UploadFailureKeepsPhoto(t *testing.T) {
	e := newEnv(t)
	s := NewSession(5, e.note, e.controller)
	require.NoError(t, s.StagePhoto(testPhoto))
	e.evidence.On("Save", mock.Anything, int64(5), testPhoto).Return(nil, errors.New("timeout")).Once()

	_, err := s.Submit(context.Background(), "SN-1")
	assert.ErrorIs(t, err, ErrEvidenceUploadFailed)
	assert.Equal(t, StatePhotoStaged, s.State())
}

func TestSession_DiscardPhoto(t *testing.T) {
	e := newEnv(t)
	s := NewSession(5, e.note, e.controller)

	require.NoError(t, s.StagePhoto(testPhoto))
	require.NoError(t, s.DiscardPhoto())
	assert.Equal(t, StateIdle, s.State())

	out, err := s.Submit(context.Background(), "SN-2")
	require.NoError(t, err)
	assert.Nil(t, out.Item.VerificationPhotoPath)
	e.evidence.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// blockingAttempter holds Attempt open until release is closed.
type blockingAttempter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAttempter) Attempt(ctx context.Context, _, _ int64, _ string, _ *upload.Photo) (*Outcome, error) {
	close(b.started)
	<-b.release
	return &Outcome{Notice: Notice{Kind: KindVerified}}, nil
}

func (b *blockingAttempter) Progress(context.Context, int64) (progress.Progress, error) {
	return progress.New(0, 1), nil
}

func TestSession_RejectsConcurrentSubmit(t *testing.T) {
	a := &blockingAttempter{started: make(chan struct{}), release: make(chan struct{})}
	s := NewSession(1, 1, a)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Submit(context.Background(), "SN-1")
		assert.NoError(t, err)
	}()
	<-a.started

	assert.Equal(t, StateSubmitting, s.State())
	_, err := s.Submit(context.Background(), "SN-2")
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, s.StagePhoto(testPhoto), ErrSubmitInProgress)

	close(a.release)
	wg.Wait()
	assert.Equal(t, StateIdle, s.State())
}

func TestSessionManager_GetAndSweep(t *testing.T) {
	e := newEnv(t)
	m := NewSessionManager(e.controller, 10*time.Minute, nil)
	clock := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	a := m.Get(1, e.note)
	assert.Same(t, a, m.Get(1, e.note))
	b := m.Get(2, e.note)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, m.Len())

	clock = clock.Add(5 * time.Minute)
	require.NoError(t, b.StagePhoto(testPhoto))

	clock = clock.Add(6 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	_, ok := m.Lookup(1, e.note)
	assert.False(t, ok)
	_, ok = m.Lookup(2, e.note)
	assert.True(t, ok)
}

func TestSessionManager_StartStop(t *testing.T) {
	m := NewSessionManager(nil, time.Minute, nil)
	m.Start()
	m.Start()
	m.Stop()
	m.Stop()

	NewSessionManager(nil, time.Minute, nil).Stop()
}
