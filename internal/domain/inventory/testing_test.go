package inventory

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dcreceiving/internal/database"
)

func newGormTestStore(t *testing.T) *GormStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", name)
	db, err := database.Connect(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormStore(db)
}

// storeFactories lets every contract test run against both implementations.
func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"gorm":   func(t *testing.T) Store { return newGormTestStore(t) },
	}
}

type seeded struct {
	project *Project
	order   *Order
	note    *DeliveryNote
	other   *DeliveryNote
}

// seedHierarchy builds one project/order with two delivery notes. note has
// SN-1 and SN-2; other has SN-3.
func seedHierarchy(t *testing.T, svc *Service) seeded {
	t.Helper()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, CreateProjectRequest{RITM: "RITM0001", Name: "Rack build"})
	require.NoError(t, err)
	o, err := svc.CreateOrder(ctx, p.ID, CreateOrderRequest{Code: "PO-1", ExpectedEquipmentCount: 3})
	require.NoError(t, err)
	n1, err := svc.CreateDeliveryNote(ctx, o.ID, CreateDeliveryNoteRequest{DeliveryCode: "DN-1"})
	require.NoError(t, err)
	n2, err := svc.CreateDeliveryNote(ctx, o.ID, CreateDeliveryNoteRequest{DeliveryCode: "DN-2"})
	require.NoError(t, err)

	for _, sn := range []string{"SN-1", "SN-2"} {
		_, err := svc.CreateEquipment(ctx, n1.ID, CreateEquipmentRequest{SerialNumber: sn})
		require.NoError(t, err)
	}
	_, err = svc.CreateEquipment(ctx, n2.ID, CreateEquipmentRequest{SerialNumber: "SN-3"})
	require.NoError(t, err)

	return seeded{project: p, order: o, note: n1, other: n2}
}
