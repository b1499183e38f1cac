package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcreceiving/internal/domain/inventory"
)

type tree struct {
	store   *inventory.MemoryStore
	project int64
	orderA  int64
	orderB  int64
	noteA1  int64
	noteA2  int64
	noteB1  int64
	empty   int64
}

// buildTree creates:
//
//	project
//	  order A: note A1 (SN-1 verified, SN-2, SN-3), note A2 (SN-4 verified)
//	  order B: note B1 (SN-5, SN-6), empty note
func buildTree(t *testing.T) tree {
	t.Helper()
	ctx := context.Background()
	store := inventory.NewMemoryStore()
	svc := inventory.NewService(store)

	p, err := svc.CreateProject(ctx, inventory.CreateProjectRequest{RITM: "RITM0001", Name: "Hall A"})
	require.NoError(t, err)
	oa, err := svc.CreateOrder(ctx, p.ID, inventory.CreateOrderRequest{Code: "PO-A"})
	require.NoError(t, err)
	ob, err := svc.CreateOrder(ctx, p.ID, inventory.CreateOrderRequest{Code: "PO-B"})
	require.NoError(t, err)

	note := func(orderID int64, code string, serials map[string]bool) int64 {
		n, err := svc.CreateDeliveryNote(ctx, orderID, inventory.CreateDeliveryNoteRequest{DeliveryCode: code})
		require.NoError(t, err)
		for sn, verified := range serials {
			e, err := svc.CreateEquipment(ctx, n.ID, inventory.CreateEquipmentRequest{SerialNumber: sn})
			require.NoError(t, err)
			if verified {
				_, err = store.UpdateEquipmentVerification(ctx, e.ID, true, nil)
				require.NoError(t, err)
			}
		}
		return n.ID
	}

	return tree{
		store:   store,
		project: p.ID,
		orderA:  oa.ID,
		orderB:  ob.ID,
		noteA1:  note(oa.ID, "DN-A1", map[string]bool{"SN-1": true, "SN-2": false, "SN-3": false}),
		noteA2:  note(oa.ID, "DN-A2", map[string]bool{"SN-4": true}),
		noteB1:  note(ob.ID, "DN-B1", map[string]bool{"SN-5": false, "SN-6": false}),
		empty:   note(ob.ID, "DN-B2", nil),
	}
}

func TestAggregator_Levels(t *testing.T) {
	tr := buildTree(t)
	agg := NewAggregator(tr.store)
	ctx := context.Background()

	p, err := agg.ForDeliveryNote(ctx, tr.noteA1)
	require.NoError(t, err)
	assert.Equal(t, Progress{Verified: 1, Total: 3, Percentage: 33}, p)

	p, err = agg.ForDeliveryNote(ctx, tr.empty)
	require.NoError(t, err)
	assert.Equal(t, Progress{IsEmpty: true}, p)

	p, err = agg.ForOrder(ctx, tr.orderA)
	require.NoError(t, err)
	assert.Equal(t, Progress{Verified: 2, Total: 4, Percentage: 50}, p)

	p, err = agg.ForOrder(ctx, tr.orderB)
	require.NoError(t, err)
	assert.Equal(t, Progress{Verified: 0, Total: 2, Percentage: 0}, p)

	p, err = agg.ForProject(ctx, tr.project)
	require.NoError(t, err)
	assert.Equal(t, Progress{Verified: 2, Total: 6, Percentage: 33}, p)
}

func TestAggregator_ProjectEqualsSumOfNotes(t *testing.T) {
	tr := buildTree(t)
	agg := NewAggregator(tr.store)
	ctx := context.Background()

	var sum Progress
	for _, id := range []int64{tr.noteA1, tr.noteA2, tr.noteB1, tr.empty} {
		p, err := agg.ForDeliveryNote(ctx, id)
		require.NoError(t, err)
		sum = sum.Add(p)
	}
	project, err := agg.ForProject(ctx, tr.project)
	require.NoError(t, err)

	if diff := cmp.Diff(sum, project); diff != "" {
		t.Fatalf("project progress mismatch (-notes +project):\n%s", diff)
	}
}

func TestAggregator_ReportChildren(t *testing.T) {
	tr := buildTree(t)
	agg := NewAggregator(tr.store)

	got, err := agg.Report(context.Background(), LevelOrder, tr.orderB)
	require.NoError(t, err)

	want := &Report{
		Level:    LevelOrder,
		ID:       tr.orderB,
		Progress: Progress{Verified: 0, Total: 2, Percentage: 0},
		Children: []ChildProgress{
			{ID: tr.noteB1, Label: "DN-B1", Progress: Progress{Total: 2}},
			{ID: tr.empty, Label: "DN-B2", Progress: Progress{IsEmpty: true}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order report mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregator_ReflectsUpdates(t *testing.T) {
	tr := buildTree(t)
	agg := NewAggregator(tr.store)
	ctx := context.Background()

	items, err := tr.store.ListEquipmentByDeliveryNote(ctx, tr.noteA1)
	require.NoError(t, err)
	for _, it := range items {
		if !it.IsVerified {
			_, err := tr.store.UpdateEquipmentVerification(ctx, it.ID, true, nil)
			require.NoError(t, err)
		}
	}

	r, err := agg.Report(ctx, LevelDeliveryNote, tr.noteA1)
	require.NoError(t, err)
	assert.Equal(t, 100, r.Percentage)
	assert.True(t, r.Complete)

	r, err = agg.Report(ctx, LevelOrder, tr.orderA)
	require.NoError(t, err)
	assert.True(t, r.Complete)
}

func TestAggregator_MissingNode(t *testing.T) {
	agg := NewAggregator(inventory.NewMemoryStore())
	ctx := context.Background()

	_, err := agg.ForDeliveryNote(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = agg.ForOrder(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = agg.ForProject(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = agg.Report(ctx, Level("rack"), 1)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tr := buildTree(t)
	r := gin.New()
	NewHandler(NewAggregator(tr.store)).RegisterRoutes(r.Group("/api/v1"))

	get := func(path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		return rr
	}

	rr := get("/api/v1/progress/project/" + itoa(tr.project))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body struct {
		Data struct {
			Verified   int             `json:"verified"`
			Total      int             `json:"total"`
			Percentage int             `json:"percentage"`
			IsEmpty    bool            `json:"is_empty"`
			Children   []ChildProgress `json:"children"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Verified)
	assert.Equal(t, 6, body.Data.Total)
	assert.Equal(t, 33, body.Data.Percentage)
	assert.Len(t, body.Data.Children, 2)

	assert.Equal(t, http.StatusBadRequest, get("/api/v1/progress/rack/1").Code)
	assert.Equal(t, http.StatusNotFound, get("/api/v1/progress/order/999").Code)
	assert.Equal(t, http.StatusBadRequest, get("/api/v1/progress/order/x").Code)
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
