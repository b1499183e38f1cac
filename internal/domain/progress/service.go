package progress

import (
	"context"
	"errors"

	"dcreceiving/internal/domain/inventory"
)

// Aggregator derives progress from the current store contents. Higher levels
// sum their children's counts; percentages are never averaged.
type Aggregator struct {
	store inventory.Reader
}

func NewAggregator(store inventory.Reader) *Aggregator {
	return &Aggregator{store: store}
}

func (a *Aggregator) ForDeliveryNote(ctx context.Context, id int64) (Progress, error) {
	if _, err := a.store.GetDeliveryNote(ctx, id); err != nil {
		return Progress{}, notFound(err)
	}
	return a.countNote(ctx, id)
}

func (a *Aggregator) ForOrder(ctx context.Context, id int64) (Progress, error) {
	r, err := a.OrderReport(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	return r.Progress, nil
}

func (a *Aggregator) ForProject(ctx context.Context, id int64) (Progress, error) {
	r, err := a.ProjectReport(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	return r.Progress, nil
}

// Report dispatches on level.
func (a *Aggregator) Report(ctx context.Context, level Level, id int64) (*Report, error) {
	switch level {
	case LevelDeliveryNote:
		p, err := a.ForDeliveryNote(ctx, id)
		if err != nil {
			return nil, err
		}
		return newReport(level, id, p, nil), nil
	case LevelOrder:
		return a.OrderReport(ctx, id)
	case LevelProject:
		return a.ProjectReport(ctx, id)
	}
	return nil, ErrInvalidLevel
}

func (a *Aggregator) OrderReport(ctx context.Context, id int64) (*Report, error) {
	if _, err := a.store.GetOrder(ctx, id); err != nil {
		return nil, notFound(err)
	}
	notes, err := a.store.ListDeliveryNotesByOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	var total Progress
	children := make([]ChildProgress, 0, len(notes))
	for _, n := range notes {
		p, err := a.countNote(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		total = total.Add(p)
		children = append(children, ChildProgress{ID: n.ID, Label: n.DeliveryCode, Progress: p})
	}
	return newReport(LevelOrder, id, New(total.Verified, total.Total), children), nil
}

func (a *Aggregator) ProjectReport(ctx context.Context, id int64) (*Report, error) {
	if _, err := a.store.GetProject(ctx, id); err != nil {
		return nil, notFound(err)
	}
	orders, err := a.store.ListOrdersByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	var total Progress
	children := make([]ChildProgress, 0, len(orders))
	for _, o := range orders {
		r, err := a.OrderReport(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		total = total.Add(r.Progress)
		children = append(children, ChildProgress{ID: o.ID, Label: o.Code, Progress: r.Progress})
	}
	return newReport(LevelProject, id, New(total.Verified, total.Total), children), nil
}

func (a *Aggregator) countNote(ctx context.Context, id int64) (Progress, error) {
	items, err := a.store.ListEquipmentByDeliveryNote(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	verified := 0
	for _, it := range items {
		if it.IsVerified {
			verified++
		}
	}
	return New(verified, len(items)), nil
}

func newReport(level Level, id int64, p Progress, children []ChildProgress) *Report {
	return &Report{Level: level, ID: id, Progress: p, Complete: p.Complete(), Children: children}
}

func notFound(err error) error {
	if errors.Is(err, inventory.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
