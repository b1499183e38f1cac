package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcreceiving/internal/database"
	"dcreceiving/internal/domain/inventory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:audit_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Entry{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewService(NewRepository(db))
}

func TestService_RecordAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	photo := "/static/uploads/a.png"
	before := &inventory.EquipmentItem{ID: 5, DeliveryNoteID: 2, SerialNumber: "SN-1"}
	after := &inventory.EquipmentItem{ID: 5, DeliveryNoteID: 2, SerialNumber: "SN-1", IsVerified: true, VerificationPhotoPath: &photo}

	require.NoError(t, svc.Record(ctx, 9, ActionVerify, before, after))
	require.NoError(t, svc.Record(ctx, 9, ActionUnverify, after, before))
	require.NoError(t, svc.Record(ctx, 9, ActionVerify, nil, &inventory.EquipmentItem{ID: 6, SerialNumber: "SN-2"}))

	entries, err := svc.ListByEquipment(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, ActionVerify, entries[0].Action)
	assert.Equal(t, int64(2), entries[0].DeliveryNoteID)
	assert.Equal(t, "verify SN-1", entries[0].Description)

	var snap inventory.EquipmentItem
	require.NoError(t, json.Unmarshal(entries[0].After, &snap))
	assert.True(t, snap.IsVerified)
	require.NotNil(t, snap.VerificationPhotoPath)
	assert.Equal(t, photo, *snap.VerificationPhotoPath)

	assert.Equal(t, ActionUnverify, entries[1].Action)

	others, err := svc.ListByEquipment(ctx, 6)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.JSONEq(t, "null", string(others[0].Before))
}

func TestService_RecordWithoutSnapshot(t *testing.T) {
	svc := newTestService(t)
	assert.Error(t, svc.Record(context.Background(), 1, ActionVerify, nil, nil))
}

func TestHandler_ListByEquipment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	require.NoError(t, svc.Record(context.Background(), 1, ActionVerify, nil, &inventory.EquipmentItem{ID: 3, SerialNumber: "SN-3"}))

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/equipment/3/audit", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"action":"verify"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/equipment/x/audit", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
