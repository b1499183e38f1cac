package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateProjectDefaultsAndTrims(t *testing.T) {
	svc := NewService(NewMemoryStore())

	p, err := svc.CreateProject(context.Background(), CreateProjectRequest{
		RITM: "  RITM12345 ", Name: "  Hall B expansion ", Client: " Acme ",
	})
	require.NoError(t, err)
	assert.Equal(t, "RITM12345", p.RITM)
	assert.Equal(t, "Hall B expansion", p.Name)
	assert.Equal(t, "Acme", p.Client)
	assert.Equal(t, ProjectActive, p.Status)
	assert.NotZero(t, p.ID)
}

func TestService_CreateProjectValidation(t *testing.T) {
	svc := NewService(NewMemoryStore())

	tests := []struct {
		name  string
		req   CreateProjectRequest
		field string
	}{
		{"bad ritm", CreateProjectRequest{RITM: "REQ0001", Name: "x"}, "RITM"},
		{"short ritm", CreateProjectRequest{RITM: "RITM12", Name: "x"}, "RITM"},
		{"blank name", CreateProjectRequest{RITM: "RITM0001", Name: "   "}, "Name"},
		{"bad status", CreateProjectRequest{RITM: "RITM0001", Name: "x", Status: "archived"}, "Status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProject(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestService_CreateChildDefaults(t *testing.T) {
	svc := NewService(NewMemoryStore())
	s := seedHierarchy(t, svc)

	assert.Equal(t, OrderPendingReceive, s.order.Status)
	assert.Equal(t, NoteReceived, s.note.Status)

	e, err := svc.CreateEquipment(context.Background(), s.note.ID, CreateEquipmentRequest{SerialNumber: " SN-9 "})
	require.NoError(t, err)
	assert.Equal(t, "SN-9", e.SerialNumber)
	assert.Equal(t, ConditionNew, e.Condition)
	assert.Equal(t, EquipmentReceived, e.Status)
	assert.False(t, e.IsVerified)
}

func TestService_MissingParent(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, 77, CreateOrderRequest{Code: "PO-1"})
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = svc.CreateDeliveryNote(ctx, 77, CreateDeliveryNoteRequest{DeliveryCode: "DN-1"})
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = svc.CreateEquipment(ctx, 77, CreateEquipmentRequest{SerialNumber: "SN-1"})
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = svc.ListEquipment(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_NegativeCountsRejected(t *testing.T) {
	svc := NewService(NewMemoryStore())
	s := seedHierarchy(t, svc)

	_, err := svc.CreateOrder(context.Background(), s.project.ID, CreateOrderRequest{Code: "PO-2", ExpectedEquipmentCount: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEquipmentItem_MatchesSerial(t *testing.T) {
	e := EquipmentItem{SerialNumber: "SN-2"}

	assert.True(t, e.MatchesSerial("SN-2"))
	assert.True(t, e.MatchesSerial("sn-2"))
	assert.True(t, e.MatchesSerial(" sn-2 "))
	assert.False(t, e.MatchesSerial("SN-20"))
	assert.False(t, e.MatchesSerial("SN"))
}
