package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

// TimestampLayout 文件名与报告头使用的时间格式，精确到秒的 14 位数字
const TimestampLayout = "20060102150405"

const (
	filePrefix   = "reconftw_analysis_"
	txtTitle     = "ReconFTW-AI Analysis"
	txtSeparator = "============================================================"
)

// Filename 报告文件名：reconftw_analysis_<类型>_<时间戳>.<扩展名>
func Filename(r *model.Report, format model.OutputFormat) string {
	return fmt.Sprintf("%s%s_%s.%s", filePrefix, r.ReportType, r.GeneratedAt.Format(TimestampLayout), format.Extension())
}

// Render 渲染报告正文
func Render(r *model.Report, format model.OutputFormat) string {
	var sb strings.Builder
	timestamp := r.GeneratedAt.Format(TimestampLayout)

	if format == model.FormatMarkdown {
		fmt.Fprintf(&sb, "# %s (%s)\n\n", txtTitle, r.Model)
		fmt.Fprintf(&sb, "- **Model Used**: `%s`\n", r.Model)
		fmt.Fprintf(&sb, "- **Report Type**: `%s`\n", r.ReportType)
		fmt.Fprintf(&sb, "- **Date**: `%s`\n\n", timestamp)
		for _, s := range r.Ordered() {
			fmt.Fprintf(&sb, "## %s\n\n%s\n\n", s.Name.Title(), s.Result.Render())
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "%s\nModel: %s\nReport Type: %s\nDate: %s\n", txtTitle, r.Model, r.ReportType, timestamp)
	sb.WriteString(txtSeparator + "\n\n")
	for _, s := range r.Ordered() {
		fmt.Fprintf(&sb, "=== %s ===\n%s\n\n", s.Name.Title(), s.Result.Render())
	}
	return sb.String()
}

// Save 把报告写入 outputDir，返回文件路径
//
// 同名文件已存在时追加序号，不覆盖历史报告。
func Save(r *model.Report, outputDir string, format model.OutputFormat) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := Filename(r, format)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	content := []byte(Render(r, format))

	for i := 0; ; i++ {
		path := filepath.Join(outputDir, name)
		if i > 0 {
			path = filepath.Join(outputDir, fmt.Sprintf("%s_%d.%s", base, i, format.Extension()))
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create report file: %w", err)
		}

		if _, err := f.Write(content); err != nil {
			f.Close()
			return "", fmt.Errorf("write report file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close report file: %w", err)
		}
		return path, nil
	}
}
