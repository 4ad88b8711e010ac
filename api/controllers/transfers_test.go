package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane-backend/api/middleware"
	"github.com/stocklane/stocklane-backend/internal/transfers"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
	"github.com/stocklane/stocklane-backend/pkg/pagination"
)

type fakeService struct {
	view *transfers.TransferView
	err  error

	lastOp       string
	lastTenantID uuid.UUID
	lastID       uuid.UUID
	lastLineID   uuid.UUID
}

func (f *fakeService) result(op string, tenantID, id uuid.UUID) (*transfers.TransferView, error) {
	f.lastOp = op
	f.lastTenantID = tenantID
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeService) Create(ctx context.Context, tenantID, userID uuid.UUID, input transfers.CreateTransferInput) (*transfers.TransferView, error) {
	return f.result("create", tenantID, uuid.Nil)
}

func (f *fakeService) Get(ctx context.Context, tenantID, id uuid.UUID) (*transfers.TransferView, error) {
	return f.result("get", tenantID, id)
}

func (f *fakeService) List(ctx context.Context, tenantID uuid.UUID, filter transfers.ListFilter, params pagination.Params) (*transfers.TransferPage, error) {
	f.lastOp = "list"
	f.lastTenantID = tenantID
	if f.err != nil {
		return nil, f.err
	}
	page := &transfers.TransferPage{}
	if f.view != nil {
		page.Items = []transfers.TransferView{*f.view}
	}
	return page, nil
}

func (f *fakeService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := f.result("delete", tenantID, id)
	return err
}

func (f *fakeService) AddLine(ctx context.Context, tenantID, id uuid.UUID, input transfers.LineInput) (*transfers.TransferView, error) {
	return f.result("add_line", tenantID, id)
}

func (f *fakeService) UpdateLine(ctx context.Context, tenantID, id, lineID uuid.UUID, input transfers.UpdateLineInput) (*transfers.TransferView, error) {
	f.lastLineID = lineID
	return f.result("update_line", tenantID, id)
}

func (f *fakeService) RemoveLine(ctx context.Context, tenantID, id, lineID uuid.UUID) (*transfers.TransferView, error) {
	f.lastLineID = lineID
	return f.result("remove_line", tenantID, id)
}

func (f *fakeService) Submit(ctx context.Context, tenantID, userID, id uuid.UUID) (*transfers.TransferView, error) {
	return f.result("submit", tenantID, id)
}

func (f *fakeService) Release(ctx context.Context, tenantID, userID, id uuid.UUID) (*transfers.TransferView, error) {
	return f.result("release", tenantID, id)
}

func (f *fakeService) Assign(ctx context.Context, tenantID, id uuid.UUID, input transfers.AssignInput) (*transfers.TransferView, error) {
	return f.result("assign", tenantID, id)
}

func (f *fakeService) StartPicking(ctx context.Context, tenantID, userID, id uuid.UUID) (*transfers.TransferView, error) {
	return f.result("start_picking", tenantID, id)
}

func (f *fakeService) PickLine(ctx context.Context, tenantID, userID, id, lineID uuid.UUID, input transfers.PickLineInput) (*transfers.TransferView, error) {
	f.lastLineID = lineID
	return f.result("pick_line", tenantID, id)
}

func (f *fakeService) CompletePicking(ctx context.Context, tenantID, userID, id uuid.UUID) (*transfers.TransferView, error) {
	return f.result("complete_picking", tenantID, id)
}

func (f *fakeService) MarkInTransit(ctx context.Context, tenantID, userID, id uuid.UUID) (*transfers.TransferView, error) {
	return f.result("mark_in_transit", tenantID, id)
}

func (f *fakeService) ReceiveLine(ctx context.Context, tenantID, userID, id, lineID uuid.UUID, input transfers.ReceiveLineInput) (*transfers.TransferView, error) {
	f.lastLineID = lineID
	return f.result("receive_line", tenantID, id)
}

func (f *fakeService) CompleteReceiving(ctx context.Context, tenantID, userID, id uuid.UUID) (*transfers.TransferView, error) {
	return f.result("complete_receiving", tenantID, id)
}

func (f *fakeService) Cancel(ctx context.Context, tenantID, userID, id uuid.UUID, input transfers.CancelInput) (*transfers.TransferView, error) {
	return f.result("cancel", tenantID, id)
}

func (f *fakeService) ListMovements(ctx context.Context, tenantID, id uuid.UUID) ([]transfers.MovementView, error) {
	_, err := f.result("movements", tenantID, id)
	return nil, err
}

func testRouter(svc transfers.Service) http.Handler {
	controller := NewTransfersController(svc, nil)
	router := chi.NewRouter()
	router.Route("/v1/transfers", func(r chi.Router) {
		r.Post("/", controller.Create)
		r.Get("/", controller.List)
		r.Route("/{transferID}", func(r chi.Router) {
			r.Get("/", controller.Get)
			r.Post("/release", controller.Release)
			r.Post("/lines/{lineID}/pick", controller.PickLine)
		})
	})
	return router
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, tenantID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(middleware.HeaderTenantID, tenantID.String())
	rec := httptest.NewRecorder()
	middleware.TenantContext(handler).ServeHTTP(rec, req)
	return rec
}

func sampleView() *transfers.TransferView {
	return &transfers.TransferView{
		ID:            uuid.New(),
		Number:        "TRF-20260828-0001",
		Type:          "inter_warehouse",
		Status:        "draft",
		TotalQuantity: decimal.RequireFromString("10"),
	}
}

func TestCreateReturnsEnvelope(t *testing.T) {
	svc := &fakeService{view: sampleView()}
	tenantID := uuid.New()
	body := `{
		"type": "inter_warehouse",
		"source_warehouse_id": "` + uuid.NewString() + `",
		"dest_warehouse_id": "` + uuid.NewString() + `"
	}`

	rec := doRequest(t, testRouter(svc), http.MethodPost, "/v1/transfers", body, tenantID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.lastTenantID != tenantID {
		t.Fatalf("tenant = %s, want %s", svc.lastTenantID, tenantID)
	}

	var envelope struct {
		Data transfers.TransferView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Number != "TRF-20260828-0001" {
		t.Fatalf("number = %q", envelope.Data.Number)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := &fakeService{view: sampleView()}
	rec := doRequest(t, testRouter(svc), http.MethodPost, "/v1/transfers", `{"type": "internal"}`, uuid.New())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.lastOp == "create" {
		t.Fatal("service must not be called on validation failure")
	}
}

func TestStateConflictMapsTo422(t *testing.T) {
	svc := &fakeService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "transfer cannot be released from status complete")}
	id := uuid.New()

	rec := doRequest(t, testRouter(svc), http.MethodPost, "/v1/transfers/"+id.String()+"/release", "", uuid.New())
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "STATE_CONFLICT") {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if svc.lastID != id {
		t.Fatalf("id = %s, want %s", svc.lastID, id)
	}
}

func TestPickLineParsesPathAndBody(t *testing.T) {
	svc := &fakeService{view: sampleView()}
	id := uuid.New()
	lineID := uuid.New()

	rec := doRequest(t, testRouter(svc),
		http.MethodPost,
		"/v1/transfers/"+id.String()+"/lines/"+lineID.String()+"/pick",
		`{"qty_picked": "4"}`,
		uuid.New(),
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.lastOp != "pick_line" || svc.lastID != id || svc.lastLineID != lineID {
		t.Fatalf("op = %s, id = %s, line = %s", svc.lastOp, svc.lastID, svc.lastLineID)
	}
}

func TestMissingTenantHeaderRejected(t *testing.T) {
	svc := &fakeService{view: sampleView()}
	req := httptest.NewRequest(http.MethodGet, "/v1/transfers", nil)
	rec := httptest.NewRecorder()
	middleware.TenantContext(testRouter(svc)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if svc.lastOp != "" {
		t.Fatal("handler must not run without a tenant")
	}
}

func TestNotFoundMapsTo404(t *testing.T) {
	svc := &fakeService{err: pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")}
	rec := doRequest(t, testRouter(svc), http.MethodGet, "/v1/transfers/"+uuid.NewString(), "", uuid.New())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
