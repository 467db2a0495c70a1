package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"echolearn-client/internal/dto"
	"echolearn-client/internal/entity"
	"echolearn-client/internal/pkg/logger"
	"echolearn-client/internal/pkg/validation"
	"echolearn-client/internal/transport"
)

// DashboardData is the result of the concurrent dashboard load. The three
// read-only endpoints have no ordering dependency and fail independently.
type DashboardData struct {
	Metrics    *dto.DashboardMetrics
	MetricsErr error

	PDFs    []dto.PDFDocument
	PDFsErr error

	QueriesOverTime []dto.TimePoint
	QueriesErr      error
}

type IAdminService interface {
	LoadDashboard(ctx context.Context) *DashboardData
	GetDashboardMetrics(ctx context.Context) (*dto.DashboardMetrics, error)
	GetPDFs(ctx context.Context) ([]dto.PDFDocument, error)
	UploadPDF(ctx context.Context, filePath, year, semester, subject string) error
	DeletePDF(ctx context.Context, filename string) error
	ReprocessPDF(ctx context.Context, filename string) error
	GetQueriesOverTime(ctx context.Context) ([]dto.TimePoint, error)
	GetAllUsers(ctx context.Context) ([]dto.AdminUser, error)
}

type adminService struct {
	api           *transport.Client
	notifications INotificationService
	logger        logger.ILogger
}

func NewAdminService(api *transport.Client, notifications INotificationService, log logger.ILogger) IAdminService {
	return &adminService{
		api:           api,
		notifications: notifications,
		logger:        log,
	}
}

// LoadDashboard fans out to metrics, document list and the time series
// concurrently. Each failure is reported individually; a partial dashboard
// still renders.
func (s *adminService) LoadDashboard(ctx context.Context) *DashboardData {
	data := &DashboardData{}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		data.Metrics, data.MetricsErr = s.GetDashboardMetrics(ctx)
	}()
	go func() {
		defer wg.Done()
		data.PDFs, data.PDFsErr = s.GetPDFs(ctx)
	}()
	go func() {
		defer wg.Done()
		data.QueriesOverTime, data.QueriesErr = s.GetQueriesOverTime(ctx)
	}()

	wg.Wait()

	for _, part := range []struct {
		name string
		err  error
	}{
		{"dashboard metrics", data.MetricsErr},
		{"document list", data.PDFsErr},
		{"query statistics", data.QueriesErr},
	} {
		if part.err != nil {
			s.logger.Error("AdminService", "Dashboard load failed", map[string]interface{}{"part": part.name, "error": part.err.Error()})
			s.notifications.Add(entity.NotificationError, fmt.Sprintf("Failed to load %s", part.name))
		}
	}

	return data
}

func (s *adminService) GetDashboardMetrics(ctx context.Context) (*dto.DashboardMetrics, error) {
	var res dto.DashboardMetrics
	if err := s.api.DoJSON(ctx, http.MethodGet, "/admin/metrics", nil, &res); err != nil {
		return nil, fmt.Errorf("get dashboard metrics: %w", err)
	}
	return &res, nil
}

func (s *adminService) GetPDFs(ctx context.Context) ([]dto.PDFDocument, error) {
	var res []dto.PDFDocument
	if err := s.api.DoJSON(ctx, http.MethodGet, "/admin/pdfs", nil, &res); err != nil {
		return nil, fmt.Errorf("get pdfs: %w", err)
	}
	return res, nil
}

// UploadPDF sends the document with its year/semester/subject tags as a
// multipart form. All three tags are required before anything is read or
// sent.
func (s *adminService) UploadPDF(ctx context.Context, filePath, year, semester, subject string) error {
	req := dto.UploadPDFRequest{Year: year, Semester: semester, Subject: subject}
	if err := validation.Struct(req); err != nil {
		return err
	}

	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read pdf %q: %w", filePath, err)
	}

	fields := map[string]string{
		"year":     year,
		"semester": semester,
		"subject":  subject,
	}
	if err := s.api.DoMultipart(ctx, "/admin/pdfs/upload", fields, "file", filepath.Base(filePath), fileContent, nil); err != nil {
		s.notifyAdminFailure("upload document", err)
		return fmt.Errorf("upload pdf: %w", err)
	}

	s.notifications.Add(entity.NotificationSuccess, "Document uploaded successfully")
	return nil
}

func (s *adminService) DeletePDF(ctx context.Context, filename string) error {
	path := "/admin/pdfs/" + url.PathEscape(filename)
	if err := s.api.DoJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		s.notifyAdminFailure("delete document", err)
		return fmt.Errorf("delete pdf: %w", err)
	}
	return nil
}

func (s *adminService) ReprocessPDF(ctx context.Context, filename string) error {
	path := "/admin/pdfs/" + url.PathEscape(filename) + "/reprocess"
	if err := s.api.DoJSON(ctx, http.MethodPost, path, nil, nil); err != nil {
		s.notifyAdminFailure("reprocess document", err)
		return fmt.Errorf("reprocess pdf: %w", err)
	}
	return nil
}

func (s *adminService) GetQueriesOverTime(ctx context.Context) ([]dto.TimePoint, error) {
	var res []dto.TimePoint
	if err := s.api.DoJSON(ctx, http.MethodGet, "/admin/queries/time", nil, &res); err != nil {
		return nil, fmt.Errorf("get queries over time: %w", err)
	}
	return res, nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]dto.AdminUser, error) {
	var res []dto.AdminUser
	if err := s.api.DoJSON(ctx, http.MethodGet, "/admin/users", nil, &res); err != nil {
		s.notifyAdminFailure("load users", err)
		return nil, fmt.Errorf("get all users: %w", err)
	}
	return res, nil
}

// notifyAdminFailure distinguishes permission problems from plain failures;
// a 403 means the account lacks the admin role, not that the call is broken.
func (s *adminService) notifyAdminFailure(action string, err error) {
	if transport.IsStatus(err, http.StatusForbidden) {
		s.notifications.Add(entity.NotificationError, "Permission denied: admin access required")
		return
	}
	s.notifications.Add(entity.NotificationError, fmt.Sprintf("Failed to %s", action))
}
