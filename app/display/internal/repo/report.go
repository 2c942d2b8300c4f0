package repo

import (
	"context"

	"github.com/iWorld-y/reconftw_ai/app/display/internal/domain"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

// ReportRepo 报告仓库接口
type ReportRepo interface {
	// ListReports 分页获取报告摘要列表，按生成时间倒序
	ListReports(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error)
	// GetReport 根据ID获取完整报告
	GetReport(ctx context.Context, id string) (*model.Report, error)
}
