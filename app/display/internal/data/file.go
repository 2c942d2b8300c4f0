package data

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/reconftw_ai/app/display/internal/domain"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/repo"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/report"
)

const reportFilePrefix = "reconftw_analysis_"

type fileRepo struct {
	dir string
	log *log.Helper
}

// NewFileRepo 基于输出目录中报告文件的仓库
func NewFileRepo(dir string, logger log.Logger) repo.ReportRepo {
	return &fileRepo{
		dir: dir,
		log: log.NewHelper(logger),
	}
}

func (r *fileRepo) ListReports(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var summaries []*domain.ReportSummary
	for _, e := range entries {
		if e.IsDir() || !isReportFile(e.Name()) {
			continue
		}
		rep, err := r.load(e.Name())
		if err != nil {
			r.log.Warnf("skip unreadable report %s: %v", e.Name(), err)
			continue
		}
		summaries = append(summaries, &domain.ReportSummary{
			ID:          e.Name(),
			Model:       rep.Model,
			ReportType:  string(rep.ReportType),
			GeneratedAt: rep.GeneratedAt,
			Sections:    len(rep.Sections),
			Failures:    rep.Failures(),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].GeneratedAt.Equal(summaries[j].GeneratedAt) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].GeneratedAt.After(summaries[j].GeneratedAt)
	})

	total := len(summaries)
	start := (page - 1) * pageSize
	if start >= total {
		return []*domain.ReportSummary{}, total, nil
	}
	end := min(start+pageSize, total)
	return summaries[start:end], total, nil
}

func (r *fileRepo) GetReport(ctx context.Context, id string) (*model.Report, error) {
	// 只接受输出目录下的报告文件名
	if filepath.Base(id) != id || !isReportFile(id) {
		return nil, kerrors.BadRequest("INVALID_REPORT_ID", "invalid report id")
	}

	rep, err := r.load(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, kerrors.NotFound("REPORT_NOT_FOUND", "report not found")
		}
		return nil, err
	}
	return rep, nil
}

func (r *fileRepo) load(name string) (*model.Report, error) {
	content, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return nil, err
	}
	format := model.FormatText
	if strings.HasSuffix(name, ".md") {
		format = model.FormatMarkdown
	}
	return report.Parse(string(content), format)
}

func isReportFile(name string) bool {
	return strings.HasPrefix(name, reportFilePrefix) &&
		(strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".txt"))
}
