package inventory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used for local runs from fixtures and
// for tests. All methods return copies; callers never alias stored records.
type MemoryStore struct {
	mu sync.RWMutex

	projects map[int64]Project
	orders   map[int64]Order
	notes    map[int64]DeliveryNote
	items    map[int64]EquipmentItem

	lastID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[int64]Project),
		orders:   make(map[int64]Order),
		notes:    make(map[int64]DeliveryNote),
		items:    make(map[int64]EquipmentItem),
	}
}

func (s *MemoryStore) nextID(requested int64) int64 {
	if requested > s.lastID {
		s.lastID = requested
		return requested
	}
	if requested > 0 {
		return requested
	}
	s.lastID++
	return s.lastID
}

func (s *MemoryStore) GetProject(ctx context.Context, id int64) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id int64) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *MemoryStore) GetDeliveryNote(ctx context.Context, id int64) (*DeliveryNote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (s *MemoryStore) GetEquipment(ctx context.Context, id int64) (*EquipmentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyItem(e), nil
}

func (s *MemoryStore) ListProjects(ctx context.Context) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListOrdersByProject(ctx context.Context, projectID int64) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.ProjectID == projectID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListDeliveryNotesByOrder(ctx context.Context, orderID int64) ([]DeliveryNote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DeliveryNote, 0)
	for _, n := range s.notes {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListEquipmentByDeliveryNote(ctx context.Context, deliveryNoteID int64) ([]EquipmentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]EquipmentItem, 0)
	for _, e := range s.items {
		if e.DeliveryNoteID == deliveryNoteID {
			out = append(out, *copyItem(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateProject(ctx context.Context, p *Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.projects {
		if existing.RITM == p.RITM {
			return ErrDuplicateRITM
		}
	}
	now := time.Now().UTC()
	p.ID = s.nextID(p.ID)
	p.CreatedAt, p.UpdatedAt = now, now
	s.projects[p.ID] = *p
	return nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, o *Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	o.ID = s.nextID(o.ID)
	o.CreatedAt, o.UpdatedAt = now, now
	s.orders[o.ID] = *o
	return nil
}

func (s *MemoryStore) CreateDeliveryNote(ctx context.Context, n *DeliveryNote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	n.ID = s.nextID(n.ID)
	n.CreatedAt, n.UpdatedAt = now, now
	s.notes[n.ID] = *n
	return nil
}

func (s *MemoryStore) CreateEquipment(ctx context.Context, e *EquipmentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.BeforeCreate(nil); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.DeliveryNoteID == e.DeliveryNoteID && existing.SerialKey == e.SerialKey {
			return ErrDuplicateSerial
		}
	}
	now := time.Now().UTC()
	e.ID = s.nextID(e.ID)
	e.CreatedAt, e.UpdatedAt = now, now
	s.items[e.ID] = *copyItem(*e)
	return nil
}

func (s *MemoryStore) UpdateEquipmentVerification(ctx context.Context, id int64, isVerified bool, photoPath *string) (*EquipmentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if isVerified && e.IsVerified {
		return copyItem(e), ErrVerificationConflict
	}

	now := time.Now().UTC()
	e.IsVerified = isVerified
	e.VerificationPhotoPath = nil
	if photoPath != nil {
		p := *photoPath
		e.VerificationPhotoPath = &p
	}
	e.VerifiedAt = nil
	if isVerified {
		e.VerifiedAt = &now
	}
	e.UpdatedAt = now
	s.items[id] = e
	return copyItem(e), nil
}

func copyItem(e EquipmentItem) *EquipmentItem {
	out := e
	if e.VerificationPhotoPath != nil {
		p := *e.VerificationPhotoPath
		out.VerificationPhotoPath = &p
	}
	if e.VerifiedAt != nil {
		t := *e.VerifiedAt
		out.VerifiedAt = &t
	}
	return &out
}
