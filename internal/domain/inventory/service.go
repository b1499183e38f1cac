package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dcreceiving/internal/pkg/validator"
)

// ValidationError carries per-field validator tags. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return fmt.Sprintf("validation error: %s", strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validate(req interface{}) error {
	if fields := validator.Validate(req); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Service implements the create/read flows for the receiving hierarchy.
// Verification state is never changed here.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	req.RITM = strings.TrimSpace(req.RITM)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(&req); err != nil {
		return nil, err
	}

	p := &Project{
		RITM:       req.RITM,
		Name:       req.Name,
		Client:     strings.TrimSpace(req.Client),
		Datacenter: strings.TrimSpace(req.Datacenter),
		Status:     ProjectStatus(req.Status),
	}
	if p.Status == "" {
		p.Status = ProjectActive
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id int64) (*Project, error) {
	return s.store.GetProject(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.store.ListProjects(ctx)
}

func (s *Service) CreateOrder(ctx context.Context, projectID int64, req CreateOrderRequest) (*Order, error) {
	req.Code = strings.TrimSpace(req.Code)
	if err := validate(&req); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, parentErr(err)
	}

	o := &Order{
		ProjectID:              projectID,
		Code:                   req.Code,
		Vendor:                 strings.TrimSpace(req.Vendor),
		ExpectedEquipmentCount: req.ExpectedEquipmentCount,
		Status:                 OrderStatus(req.Status),
	}
	if o.Status == "" {
		o.Status = OrderPendingReceive
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, projectID int64) ([]Order, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListOrdersByProject(ctx, projectID)
}

func (s *Service) CreateDeliveryNote(ctx context.Context, orderID int64, req CreateDeliveryNoteRequest) (*DeliveryNote, error) {
	req.DeliveryCode = strings.TrimSpace(req.DeliveryCode)
	if err := validate(&req); err != nil {
		return nil, err
	}
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, parentErr(err)
	}

	n := &DeliveryNote{
		OrderID:                 orderID,
		DeliveryCode:            req.DeliveryCode,
		Carrier:                 strings.TrimSpace(req.Carrier),
		TrackingNumber:          strings.TrimSpace(req.TrackingNumber),
		EstimatedEquipmentCount: req.EstimatedEquipmentCount,
		Status:                  DeliveryNoteStatus(req.Status),
	}
	if n.Status == "" {
		n.Status = NoteReceived
	}
	if err := s.store.CreateDeliveryNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) GetDeliveryNote(ctx context.Context, id int64) (*DeliveryNote, error) {
	return s.store.GetDeliveryNote(ctx, id)
}

func (s *Service) ListDeliveryNotes(ctx context.Context, orderID int64) ([]DeliveryNote, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.ListDeliveryNotesByOrder(ctx, orderID)
}

// CreateEquipment registers a new, unverified item on a delivery note.
func (s *Service) CreateEquipment(ctx context.Context, deliveryNoteID int64, req CreateEquipmentRequest) (*EquipmentItem, error) {
	req.SerialNumber = strings.TrimSpace(req.SerialNumber)
	if err := validate(&req); err != nil {
		return nil, err
	}
	if _, err := s.store.GetDeliveryNote(ctx, deliveryNoteID); err != nil {
		return nil, parentErr(err)
	}

	e := &EquipmentItem{
		DeliveryNoteID: deliveryNoteID,
		SerialNumber:   req.SerialNumber,
		AssetTag:       strings.TrimSpace(req.AssetTag),
		Manufacturer:   strings.TrimSpace(req.Manufacturer),
		Model:          strings.TrimSpace(req.Model),
		Category:       strings.TrimSpace(req.Category),
		Condition:      Condition(req.Condition),
		Status:         EquipmentStatus(req.Status),
	}
	if e.Condition == "" {
		e.Condition = ConditionNew
	}
	if e.Status == "" {
		e.Status = EquipmentReceived
	}
	if err := s.store.CreateEquipment(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) GetEquipment(ctx context.Context, id int64) (*EquipmentItem, error) {
	return s.store.GetEquipment(ctx, id)
}

func (s *Service) ListEquipment(ctx context.Context, deliveryNoteID int64) ([]EquipmentItem, error) {
	if _, err := s.store.GetDeliveryNote(ctx, deliveryNoteID); err != nil {
		return nil, err
	}
	return s.store.ListEquipmentByDeliveryNote(ctx, deliveryNoteID)
}

func parentErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrParentNotFound
	}
	return err
}
