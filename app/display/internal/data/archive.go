package data

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/reconftw_ai/app/display/internal/domain"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/repo"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

type archiveRepo struct {
	data *Data
	log  *log.Helper
}

// NewArchiveRepo 基于数据库归档的报告仓库
func NewArchiveRepo(data *Data, logger log.Logger) repo.ReportRepo {
	return &archiveRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *archiveRepo) ListReports(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error) {
	offset := (page - 1) * pageSize

	runs, total, err := r.data.store.ListReports(ctx, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*domain.ReportSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, &domain.ReportSummary{
			ID:          strconv.Itoa(run.ID),
			Model:       run.Model,
			ReportType:  run.ReportType,
			GeneratedAt: run.GeneratedAt,
			Sections:    run.Sections,
			Failures:    run.Failures,
		})
	}
	return summaries, total, nil
}

func (r *archiveRepo) GetReport(ctx context.Context, id string) (*model.Report, error) {
	runID, err := strconv.Atoi(id)
	if err != nil {
		return nil, kerrors.BadRequest("INVALID_REPORT_ID", "report id must be numeric")
	}

	report, err := r.data.store.GetReport(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kerrors.NotFound("REPORT_NOT_FOUND", "report not found")
		}
		return nil, err
	}
	return report, nil
}
