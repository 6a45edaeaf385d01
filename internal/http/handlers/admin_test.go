package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bizportal/internal/domain"
	"bizportal/internal/middleware"
	"bizportal/internal/sqlinline"
)

// %PDF magic so the sniffer classifies it as a pdf.
var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type fakeStore struct {
	keys         []string
	contentTypes []string
	uploaded     [][]byte
}

func (s *fakeStore) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.keys = append(s.keys, key)
	s.contentTypes = append(s.contentTypes, contentType)
	s.uploaded = append(s.uploaded, data)
	return "https://cdn.test/" + key, nil
}

func adminRequest(method, target string, body *bytes.Buffer, contentType string) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	ctx := middleware.ContextWithUser(req.Context(), middleware.AuthUser{
		ID:    "admin-1",
		Email: "admin@bizportal.test",
		Role:  domain.UserRoleAdmin,
	})
	return req.WithContext(ctx)
}

func uploadForm(t *testing.T, serviceName, access string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if serviceName != "" {
		if err := mw.WriteField("serviceName", serviceName); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if access != "" {
		if err := mw.WriteField("access", access); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadServiceContentCreatesService(t *testing.T) {
	var savedContents []byte
	f := &fakeSQL{
		onQueryRow: func(query string, args []any) ([]any, error) {
			switch query {
			case sqlinline.QSelectServiceByName:
				return nil, pgx.ErrNoRows
			case sqlinline.QInsertService:
				return []any{"svc-new", time.Now()}, nil
			case sqlinline.QUpdateServiceContents:
				savedContents = args[1].([]byte)
				return []any{"svc-new"}, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	app := newTestApp(f)
	store := &fakeStore{}
	app.Store = store

	body, contentType := uploadForm(t, "GST Filing", `{"startup":true,"growth":true}`, map[string][]byte{
		"intro.pdf": pdfBytes,
	})
	req := adminRequest("POST", "/api/v1.0/admin/upload-service-content", body, contentType)
	rr := httptest.NewRecorder()
	app.UploadServiceContent(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if len(store.keys) != 1 {
		t.Fatalf("uploads = %d, want 1", len(store.keys))
	}
	if !strings.HasPrefix(store.keys[0], "service_contents/") || !strings.HasSuffix(store.keys[0], ".pdf") {
		t.Fatalf("key = %q, want service_contents/<uuid>.pdf", store.keys[0])
	}
	if store.contentTypes[0] != "application/pdf" {
		t.Fatalf("content type = %q, want application/pdf", store.contentTypes[0])
	}

	var pc domain.PlanContents
	if err := json.Unmarshal(savedContents, &pc); err != nil {
		t.Fatalf("decode saved contents: %v", err)
	}
	if len(pc.Startup) != 1 || len(pc.GrowthStage) != 1 || len(pc.MatureStage) != 0 {
		t.Fatalf("tier lists = %d/%d/%d, want 1/1/0", len(pc.Startup), len(pc.GrowthStage), len(pc.MatureStage))
	}
	item := pc.Startup[0]
	if item.Type != domain.ContentPDF || item.Title != "intro.pdf" {
		t.Fatalf("item = %+v, want pdf titled intro.pdf", item)
	}
	if item.URL != "https://cdn.test/"+store.keys[0] {
		t.Fatalf("url = %q, want store URL", item.URL)
	}
	if f.called(sqlinline.QInsertService) != 1 {
		t.Fatal("expected the service to be created once")
	}
}

func TestUploadServiceContentAppendsToExisting(t *testing.T) {
	existing := startupContents("old-item")
	var savedContents []byte
	f := &fakeSQL{
		onQueryRow: func(query string, args []any) ([]any, error) {
			switch query {
			case sqlinline.QSelectServiceByName:
				return serviceRow("svc-x", "GST Filing", existing), nil
			case sqlinline.QUpdateServiceContents:
				savedContents = args[1].([]byte)
				return []any{"svc-x"}, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	app := newTestApp(f)
	app.Store = &fakeStore{}

	body, contentType := uploadForm(t, "GST Filing", `{"startup":true}`, map[string][]byte{
		"advanced.pdf": pdfBytes,
	})
	req := adminRequest("POST", "/api/v1.0/admin/upload-service-content", body, contentType)
	rr := httptest.NewRecorder()
	app.UploadServiceContent(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var pc domain.PlanContents
	if err := json.Unmarshal(savedContents, &pc); err != nil {
		t.Fatalf("decode saved contents: %v", err)
	}
	if len(pc.Startup) != 2 {
		t.Fatalf("startup list = %d, want existing item kept plus new one", len(pc.Startup))
	}
	if f.called(sqlinline.QInsertService) != 0 {
		t.Fatal("existing service must not be recreated")
	}
}

func TestUploadServiceContentRejectsUnknownType(t *testing.T) {
	f := &fakeSQL{
		onQueryRow: func(query string, _ []any) ([]any, error) {
			if query == sqlinline.QSelectServiceByName {
				return serviceRow("svc-x", "GST Filing", domain.PlanContents{}), nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	app := newTestApp(f)
	app.Store = &fakeStore{}

	body, contentType := uploadForm(t, "GST Filing", `{"startup":true}`, map[string][]byte{
		"notes.txt": []byte("plain text, not study material"),
	})
	req := adminRequest("POST", "/api/v1.0/admin/upload-service-content", body, contentType)
	rr := httptest.NewRecorder()
	app.UploadServiceContent(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400 for unsupported file type", rr.Code)
	}
}

func TestUploadServiceContentRequiresTier(t *testing.T) {
	app := newTestApp(&fakeSQL{})
	app.Store = &fakeStore{}

	body, contentType := uploadForm(t, "GST Filing", `{}`, map[string][]byte{
		"intro.pdf": pdfBytes,
	})
	req := adminRequest("POST", "/api/v1.0/admin/upload-service-content", body, contentType)
	rr := httptest.NewRecorder()
	app.UploadServiceContent(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400 when no tier is selected", rr.Code)
	}
}

func TestUploadServiceContentRefreshesUserTotals(t *testing.T) {
	// One completed item, then a second is uploaded: the stored total should
	// be bumped to 2 and the percentage recomputed down to 50.
	stored, _ := json.Marshal(domain.ProgressLedger{{
		ServiceID:         "svc-x",
		CompletedContents: []string{"old-item"},
		TotalContents:     1,
		ProgressPercent:   100,
	}})
	var savedProgress []byte
	f := &fakeSQL{
		onQueryRow: func(query string, args []any) ([]any, error) {
			switch query {
			case sqlinline.QSelectServiceByName:
				return serviceRow("svc-x", "GST Filing", startupContents("old-item")), nil
			case sqlinline.QUpdateServiceContents:
				return []any{"svc-x"}, nil
			case sqlinline.QSelectUserByID:
				return userRow("mem-1", stored), nil
			case sqlinline.QSelectMembershipByID:
				return membershipRow("svc-x"), nil
			case sqlinline.QUpdateUserProgress:
				savedProgress = args[1].([]byte)
				return []any{"user-1"}, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	app := newTestApp(f)
	app.Store = &fakeStore{}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("serviceName", "GST Filing")
	_ = mw.WriteField("access", `{"startup":true}`)
	_ = mw.WriteField("userId", "user-1")
	part, _ := mw.CreateFormFile("files", "extra.pdf")
	_, _ = part.Write(pdfBytes)
	_ = mw.Close()

	req := adminRequest("POST", "/api/v1.0/admin/upload-service-content", &buf, mw.FormDataContentType())
	rr := httptest.NewRecorder()
	app.UploadServiceContent(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var ledger domain.ProgressLedger
	if err := json.Unmarshal(savedProgress, &ledger); err != nil {
		t.Fatalf("decode saved ledger: %v", err)
	}
	entry, ok := ledger.Entry("svc-x")
	if !ok {
		t.Fatal("ledger entry missing after refresh")
	}
	if entry.TotalContents != 2 || entry.ProgressPercent != 50 {
		t.Fatalf("entry = %+v, want total 2 and percent 50", entry)
	}
	if len(entry.CompletedContents) != 1 {
		t.Fatalf("completed set = %v, must be untouched", entry.CompletedContents)
	}
}

func TestUpdateReferralStatusInvalid(t *testing.T) {
	app := newTestApp(&fakeSQL{})

	body := bytes.NewBufferString(`{"status":"Maybe"}`)
	req := adminRequest("PUT", "/api/v1.0/admin/update-status/ref-1", body, "application/json")
	req = withURLParam(req, "id", "ref-1")
	rr := httptest.NewRecorder()
	app.UpdateReferralStatus(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400 for unknown status", rr.Code)
	}
}

func TestUpdateReferralStatusNotFound(t *testing.T) {
	f := &fakeSQL{
		onQueryRow: func(string, []any) ([]any, error) { return nil, pgx.ErrNoRows },
	}
	app := newTestApp(f)

	body := bytes.NewBufferString(`{"status":"Approved"}`)
	req := adminRequest("PUT", "/api/v1.0/admin/update-status/ghost", body, "application/json")
	req = withURLParam(req, "id", "ghost")
	rr := httptest.NewRecorder()
	app.UpdateReferralStatus(rr, req)

	if rr.Code != 404 {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestSaveBenefitMatrixRejectsShortRow(t *testing.T) {
	app := newTestApp(&fakeSQL{})

	body := bytes.NewBufferString(`{"plans":[],"benefits":[{"name":"Support","values":["yes","yes"]}]}`)
	req := adminRequest("POST", "/api/v1.0/admin/membership-data", body, "application/json")
	rr := httptest.NewRecorder()
	app.SaveBenefitMatrix(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400 for a two-value row", rr.Code)
	}
}

func TestDeleteEnquiry(t *testing.T) {
	f := &fakeSQL{
		onExec: func(string, []any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}
	app := newTestApp(f)

	req := adminRequest("DELETE", "/api/v1.0/admin/enquiries/enq-1", nil, "")
	req = withURLParam(req, "id", "enq-1")
	rr := httptest.NewRecorder()
	app.DeleteEnquiry(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestDeleteEnquiryNotFound(t *testing.T) {
	f := &fakeSQL{
		onExec: func(string, []any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	app := newTestApp(f)

	req := adminRequest("DELETE", "/api/v1.0/admin/enquiries/ghost", nil, "")
	req = withURLParam(req, "id", "ghost")
	rr := httptest.NewRecorder()
	app.DeleteEnquiry(rr, req)
	if rr.Code != 404 {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCreateMembershipRejectsUnknownTier(t *testing.T) {
	app := newTestApp(&fakeSQL{})

	body := bytes.NewBufferString(`{"planName":"Platinum","validityDays":30}`)
	req := adminRequest("POST", "/api/v1.0/admin/createMembership", body, "application/json")
	rr := httptest.NewRecorder()
	app.CreateMembership(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400 for unknown tier", rr.Code)
	}
}
