package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/ingest"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/logger"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

// Analyzer 分析单个小节，失败以 Result 表示
type Analyzer interface {
	Analyze(ctx context.Context, section model.Category, data string) model.Result
	Model() string
	ReportType() model.ReportType
}

// ReadFunc 读取一个类别的原始数据
type ReadFunc func(category model.Category, rootDir string) string

// Engine 核心处理引擎：并行读取 -> 并行分析 -> 综合分析
type Engine struct {
	analyzer Analyzer
	read     ReadFunc
	workers  int
	now      func() time.Time
}

// Option Engine 可选项
type Option func(*Engine)

// WithWorkers 每个阶段的最大并发数
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithReader 替换读取函数
func WithReader(read ReadFunc) Option {
	return func(e *Engine) {
		e.read = read
	}
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine 创建引擎实例
func NewEngine(analyzer Analyzer, opts ...Option) *Engine {
	e := &Engine{
		analyzer: analyzer,
		read:     ingest.Read,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions 运行选项
type RunOptions struct {
	ResultsDir       string
	Categories       []model.Category // 为空时使用 model.Categories，重复项只保留第一个
	ProgressCallback func(status string, progress int)
}

// Run 执行一次完整分析，总是返回包含 len(categories)+1 个小节的报告
func (e *Engine) Run(ctx context.Context, opts RunOptions) *model.Report {
	categories := uniqueCategories(opts.Categories)
	if len(categories) == 0 {
		categories = model.Categories
	}
	// 模型调用一旦开始就跑完，不随上层取消而中断
	ctx = context.WithoutCancel(ctx)

	progress := func(status string, p int) {
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(status, p)
		}
	}

	logger.Log.Infof("开始分析 %s，共 %d 个类别，模型 %s，报告类型 %s",
		opts.ResultsDir, len(categories), e.analyzer.Model(), e.analyzer.ReportType())
	progress("starting", 0)

	// 1. 并行读取
	raw := make([]string, len(categories))
	e.fanOut(len(categories), func(i int) {
		raw[i] = e.read(categories[i], opts.ResultsDir)
		logger.Log.Debugf("类别 [%s] 读取完成，长度 %d", categories[i], len(raw[i]))
	})
	progress("ingested", 30)

	// 2. 并行分析
	results := make([]model.Result, len(categories))
	e.fanOut(len(categories), func(i int) {
		results[i] = e.analyzer.Analyze(ctx, categories[i], raw[i])
		if results[i].Failed() {
			logger.Log.Warnf("类别 [%s] 分析失败: %s", categories[i], results[i].Text)
		} else {
			logger.Log.Infof("类别 [%s] 分析完成", categories[i])
		}
	})
	progress("analyzed categories", 80)

	// 3. 综合分析：基于原始数据，而不是各类别的分析结果
	logger.Log.Info("正在生成全局综合分析...")
	overview := e.analyzer.Analyze(ctx, model.SectionOverview, CombineRaw(categories, raw))
	if overview.Failed() {
		logger.Log.Warnf("综合分析失败: %s", overview.Text)
	}

	report := &model.Report{
		Model:       e.analyzer.Model(),
		ReportType:  e.analyzer.ReportType(),
		GeneratedAt: e.now(),
		Categories:  append([]model.Category(nil), categories...),
		Raw:         make(map[model.Category]string, len(categories)),
		Sections:    make(map[model.Category]model.Result, len(categories)+1),
	}
	for i, c := range categories {
		report.Raw[c] = raw[i]
		report.Sections[c] = results[i]
	}
	report.Sections[model.SectionOverview] = overview

	logger.Log.Infof("分析完成，%d 个小节，其中 %d 个失败", len(report.Sections), report.Failures())
	progress("completed", 100)
	return report
}

// fanOut 以 e.workers 为上限并发执行 n 个任务，全部完成后返回
func (e *Engine) fanOut(n int, task func(i int)) {
	var g errgroup.Group
	limit := e.workers
	if limit <= 0 {
		limit = n
	}
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			task(i)
			return nil
		})
	}
	_ = g.Wait()
}

// uniqueCategories 去重并保持原有顺序，重复的类别只分析一次
func uniqueCategories(categories []model.Category) []model.Category {
	seen := make(map[model.Category]bool, len(categories))
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// CombineRaw 拼接所有类别的原始数据，作为综合分析的输入
func CombineRaw(categories []model.Category, raw []string) string {
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = fmt.Sprintf("%s:\n%s", c.Title(), raw[i])
	}
	return strings.Join(parts, "\n\n")
}
