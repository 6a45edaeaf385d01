package httpapi

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"bizportal/internal/captcha"
	"bizportal/internal/http/handlers"
	"bizportal/internal/infra"
	"bizportal/internal/storage"
)

type noDB struct{}

func (noDB) QueryRow(context.Context, string, ...any) pgx.Row { return errRow{} }
func (noDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}
func (noDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

type errRow struct{}

func (errRow) Scan(...any) error { return pgx.ErrNoRows }

func newRouterForTest(cfg *infra.Config) *httptest.Server {
	app := &handlers.App{
		SQL:      noDB{},
		Logger:   zerolog.Nop(),
		Captcha:  captcha.New("", ""),
		Validate: validator.New(),
	}
	return httptest.NewServer(NewRouter(app, cfg, noDB{}))
}

func routerConfig(storageDir, staticDir string) *infra.Config {
	return &infra.Config{
		JWTSecret:       "router-test-secret",
		StorageBasePath: storageDir,
		StaticDir:       staticDir,
		AuthRatePerMin:  20,
	}
}

func TestRouterServesFilesystemUploads(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir, "http://localhost:8000/static")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	url, err := store.Upload(context.Background(), "service_contents/a.pdf", []byte("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "http://localhost:8000/static/service_contents/a.pdf" {
		t.Fatalf("url = %q", url)
	}

	srv := newRouterForTest(routerConfig(dir, t.TempDir()))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/static/service_contents/a.pdf")
	if err != nil {
		t.Fatalf("get uploaded file: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "%PDF-1.4" {
		t.Fatalf("body = %q, want the stored bytes", body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/pdf") {
		t.Fatalf("content type = %q, want application/pdf", ct)
	}
}

func TestRouterStaticMissingKeyIs404(t *testing.T) {
	srv := newRouterForTest(routerConfig(t.TempDir(), t.TempDir()))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/static/service_contents/missing.pdf")
	if err != nil {
		t.Fatalf("get missing file: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRouterUnknownAPIPathIs404(t *testing.T) {
	srv := newRouterForTest(routerConfig(t.TempDir(), t.TempDir()))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/v1.0/nope")
	if err != nil {
		t.Fatalf("get unknown api path: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
