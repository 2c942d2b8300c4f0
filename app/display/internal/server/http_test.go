package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/reconftw_ai/app/display/internal/domain"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/usecase"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

type stubRepo struct {
	reports map[string]*model.Report
}

func (s *stubRepo) ListReports(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error) {
	var out []*domain.ReportSummary
	for id, r := range s.reports {
		out = append(out, &domain.ReportSummary{ID: id, Model: r.Model, Sections: len(r.Sections), Failures: r.Failures()})
	}
	return out, len(out), nil
}

func (s *stubRepo) GetReport(ctx context.Context, id string) (*model.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, kerrors.NotFound("REPORT_NOT_FOUND", "report not found")
	}
	return r, nil
}

func newTestServer(reports map[string]*model.Report) http.Handler {
	uc := usecase.NewReportUseCase(&stubRepo{reports: reports}, log.DefaultLogger)
	return NewHTTPServer(config.DisplayConfig{Timeout: "1s"}, uc, log.DefaultLogger)
}

func sample() *model.Report {
	return &model.Report{
		Model:       "gemini-2.0-flash",
		ReportType:  model.ReportExecutive,
		GeneratedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.Local),
		Categories:  []model.Category{model.CategoryWebs},
		Sections: map[model.Category]model.Result{
			model.CategoryWebs:    model.OK("xss on /search"),
			model.SectionOverview: model.Failed("Failed to process overview with Gemini: quota"),
		},
	}
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListReports(t *testing.T) {
	rec := serve(newTestServer(map[string]*model.Report{"1": sample()}), "/api/reports?page=1&page_size=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var reply listReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, 1, reply.Total)
	require.Len(t, reply.Reports, 1)
	assert.Equal(t, "1", reply.Reports[0].ID)
	assert.Equal(t, 1, reply.Reports[0].Failures)
}

func TestListReportsEmpty(t *testing.T) {
	rec := serve(newTestServer(nil), "/api/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports":[],"total":0}`, rec.Body.String())
}

func TestGetReport(t *testing.T) {
	h := newTestServer(map[string]*model.Report{"1": sample()})

	rec := serve(h, "/api/reports/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep domain.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Len(t, rep.Sections, 2)
	assert.Equal(t, "webs", rep.Sections[0].Name)
	assert.True(t, rep.Sections[1].Failed)

	rec = serve(h, "/api/reports/2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderReport(t *testing.T) {
	h := newTestServer(map[string]*model.Report{"1": sample()})

	rec := serve(h, "/api/reports/1/render")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "# ReconFTW-AI Analysis (gemini-2.0-flash)")
	assert.Contains(t, rec.Body.String(), "## OVERVIEW\n\n[Error] Failed to process overview with Gemini: quota")

	rec = serve(h, "/api/reports/1/render?format=txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "=== WEBS ===\nxss on /search")

	rec = serve(h, "/api/reports/1/render?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
