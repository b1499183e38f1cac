package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dcreceiving/internal/domain/audit"
	"dcreceiving/internal/domain/inventory"
	"dcreceiving/internal/domain/live"
	"dcreceiving/internal/domain/progress"
	"dcreceiving/internal/domain/upload"
	"dcreceiving/internal/domain/verification"
)

type mockEvidence struct {
	mock.Mock
}

func (m *mockEvidence) Save(ctx context.Context, operatorID int64, photo *upload.Photo) (*upload.Upload, error) {
	args := m.Called(ctx, operatorID, photo)
	u, _ := args.Get(0).(*upload.Upload)
	return u, args.Error(1)
}

func (m *mockEvidence) Discard(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(topic string, _ *live.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return 0
}

type recordingAudit struct {
	mu      sync.Mutex
	actions []audit.Action
}

func (a *recordingAudit) Record(_ context.Context, _ int64, action audit.Action, _, _ *inventory.EquipmentItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

type env struct {
	store      *inventory.MemoryStore
	controller *Controller
	evidence   *mockEvidence
	notifier   *recordingNotifier
	publisher  *recordingPublisher
	audit      *recordingAudit
	project    int64
	order      int64
	note       int64
	items      map[string]int64
}

// newEnv seeds one delivery note holding SN-1 and SN-2.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := inventory.NewMemoryStore()
	svc := inventory.NewService(store)

	p, err := svc.CreateProject(ctx, inventory.CreateProjectRequest{RITM: "RITM0001", Name: "Hall A"})
	require.NoError(t, err)
	o, err := svc.CreateOrder(ctx, p.ID, inventory.CreateOrderRequest{Code: "PO-1"})
	require.NoError(t, err)
	n, err := svc.CreateDeliveryNote(ctx, o.ID, inventory.CreateDeliveryNoteRequest{DeliveryCode: "DN-1"})
	require.NoError(t, err)

	items := map[string]int64{}
	for _, sn := range []string{"SN-1", "SN-2"} {
		e, err := svc.CreateEquipment(ctx, n.ID, inventory.CreateEquipmentRequest{SerialNumber: sn})
		require.NoError(t, err)
		items[sn] = e.ID
	}

	e := &env{
		store:     store,
		evidence:  &mockEvidence{},
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
		audit:     &recordingAudit{},
		project:   p.ID,
		order:     o.ID,
		note:      n.ID,
		items:     items,
	}
	e.controller = NewController(Deps{
		Engine:     verification.NewEngine(store),
		Aggregator: progress.NewAggregator(store),
		Store:      store,
		Evidence:   e.evidence,
		Audit:      e.audit,
		Publisher:  e.publisher,
		Notifier:   e.notifier,
	})
	return e
}

var testPhoto = &upload.Photo{Filename: "label.jpg", Data: []byte("\xff\xd8\xff\xe0jpeg")}
