package usecase

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/reconftw_ai/app/display/internal/domain"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/repo"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/report"
)

// ReportUseCase 报告业务逻辑
type ReportUseCase struct {
	repo repo.ReportRepo
	log  *log.Helper
}

// NewReportUseCase 创建报告业务逻辑实例
func NewReportUseCase(repo repo.ReportRepo, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{repo: repo, log: log.NewHelper(logger)}
}

// List 分页列出报告摘要
func (uc *ReportUseCase) List(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return uc.repo.ListReports(ctx, page, pageSize)
}

// Get 获取报告详情，小节按固定顺序排列
func (uc *ReportUseCase) Get(ctx context.Context, id string) (*domain.Report, error) {
	rep, err := uc.repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &domain.Report{
		ID:          id,
		Model:       rep.Model,
		ReportType:  string(rep.ReportType),
		GeneratedAt: rep.GeneratedAt,
	}
	for _, s := range rep.Ordered() {
		out.Sections = append(out.Sections, domain.Section{
			Name:   string(s.Name),
			Failed: s.Result.Failed(),
			Text:   s.Result.Text,
		})
	}
	return out, nil
}

// Render 以 txt 或 md 重新渲染报告
func (uc *ReportUseCase) Render(ctx context.Context, id string, format model.OutputFormat) (string, error) {
	rep, err := uc.repo.GetReport(ctx, id)
	if err != nil {
		return "", err
	}
	return report.Render(rep, format), nil
}
