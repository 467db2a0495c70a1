package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"echolearn-client/internal/credstore"
	"echolearn-client/internal/pkg/logger"
	"echolearn-client/internal/pkg/validation"
	"echolearn-client/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	notifications INotificationService
	admin         IAdminService
}

func newAdminFixture(t *testing.T, handler http.Handler) *adminFixture {
	t.Helper()
	store, err := credstore.Open(filepath.Join(t.TempDir(), "state.bin"))
	require.NoError(t, err)

	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)

	log := logger.NewNopLogger()
	api := transport.New(backend.URL, 5*time.Second, store, log)
	notifications := NewNotificationService(store, log)
	admin := NewAdminService(api, notifications, log)
	return &adminFixture{notifications: notifications, admin: admin}
}

func dashboardHandler(t *testing.T, inflight *int32, maxInflight *int32) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(inflight, 1)
		defer atomic.AddInt32(inflight, -1)
		for {
			seen := atomic.LoadInt32(maxInflight)
			if n <= seen || atomic.CompareAndSwapInt32(maxInflight, seen, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)

		switch r.URL.Path {
		case "/admin/metrics":
			respondJSON(w, http.StatusOK, map[string]interface{}{"totalUsers": 12, "totalQueries": 340, "totalPDFs": 7})
		case "/admin/pdfs":
			respondJSON(w, http.StatusOK, []map[string]interface{}{{"filename": "signals.pdf", "pages": 88}})
		case "/admin/queries/time":
			respondJSON(w, http.StatusOK, []map[string]interface{}{{"name": "Mon", "value": 40}, {"name": "Tue", "value": 61}})
		default:
			http.NotFound(w, r)
		}
	})
}

func TestLoadDashboardFansOutConcurrently(t *testing.T) {
	var inflight, maxInflight int32
	f := newAdminFixture(t, dashboardHandler(t, &inflight, &maxInflight))

	data := f.admin.LoadDashboard(context.Background())

	require.NotNil(t, data.Metrics)
	assert.Equal(t, 12, data.Metrics.TotalUsers)
	assert.Equal(t, 340, data.Metrics.TotalQueries)
	require.Len(t, data.PDFs, 1)
	assert.Equal(t, "signals.pdf", data.PDFs[0].Filename)
	require.Len(t, data.QueriesOverTime, 2)
	assert.Equal(t, 61, data.QueriesOverTime[1].Value)

	assert.NoError(t, data.MetricsErr)
	assert.NoError(t, data.PDFsErr)
	assert.NoError(t, data.QueriesErr)

	// All three requests were in flight at once.
	assert.Equal(t, int32(3), atomic.LoadInt32(&maxInflight))
	assert.Empty(t, f.notifications.Notifications())
}

func TestLoadDashboardPartialFailure(t *testing.T) {
	f := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/metrics":
			respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": "stats job down"})
		case "/admin/pdfs":
			respondJSON(w, http.StatusOK, []map[string]interface{}{{"filename": "ok.pdf"}})
		case "/admin/queries/time":
			respondJSON(w, http.StatusOK, []map[string]interface{}{})
		}
	}))

	data := f.admin.LoadDashboard(context.Background())

	// One part failed, the other two still rendered.
	assert.Error(t, data.MetricsErr)
	assert.Nil(t, data.Metrics)
	assert.NoError(t, data.PDFsErr)
	require.Len(t, data.PDFs, 1)
	assert.NoError(t, data.QueriesErr)

	notifs := f.notifications.Notifications()
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Message, "dashboard metrics")
}

func TestUploadPDF(t *testing.T) {
	var gotSubject, gotFilename string
	f := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/pdfs/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotSubject = r.FormValue("subject")
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		gotFilename = header.Filename
		respondJSON(w, http.StatusOK, nil)
	}))

	pdfPath := filepath.Join(t.TempDir(), "signals.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o600))

	require.NoError(t, f.admin.UploadPDF(context.Background(), pdfPath, "2", "1", "Signal Processing"))
	assert.Equal(t, "Signal Processing", gotSubject)
	assert.Equal(t, "signals.pdf", gotFilename)

	notifs := f.notifications.Notifications()
	require.NotEmpty(t, notifs)
	assert.Equal(t, "Document uploaded successfully", notifs[0].Message)
}

func TestUploadPDFRequiresTags(t *testing.T) {
	var calls int
	f := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	err := f.admin.UploadPDF(context.Background(), "ignored.pdf", "", "1", "Signal Processing")
	require.Error(t, err)

	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Zero(t, calls)
}

func TestDeletePDFEscapesFilename(t *testing.T) {
	var gotPath string
	f := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		respondJSON(w, http.StatusOK, nil)
	}))

	require.NoError(t, f.admin.DeletePDF(context.Background(), "week 1/intro.pdf"))
	assert.Equal(t, "/admin/pdfs/week%201%2Fintro.pdf", gotPath)
}

func TestForbiddenMapsToPermissionDenied(t *testing.T) {
	f := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusForbidden, map[string]string{"detail": "admin role required"})
	}))

	_, err := f.admin.GetAllUsers(context.Background())
	require.Error(t, err)

	notifs := f.notifications.Notifications()
	require.NotEmpty(t, notifs)
	assert.Equal(t, "Permission denied: admin access required", notifs[0].Message)
}
