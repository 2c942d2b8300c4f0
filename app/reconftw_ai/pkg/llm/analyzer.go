package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/logger"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/prompt"
)

// Analyzer 把类别数据交给 Generator 分析，失败一律以 Result 返回
//
// 一次运行内只读共享，可被多个 goroutine 同时调用。
type Analyzer struct {
	gen        Generator
	catalog    *prompt.Catalog
	model      string
	reportType model.ReportType
	limiter    *rate.Limiter
}

// AnalyzerOption Analyzer 可选项
type AnalyzerOption func(*Analyzer)

// WithLimiter 为每次调用加上限流
func WithLimiter(limiter *rate.Limiter) AnalyzerOption {
	return func(a *Analyzer) {
		a.limiter = limiter
	}
}

// NewAnalyzer 创建分析器
func NewAnalyzer(gen Generator, catalog *prompt.Catalog, modelID string, reportType model.ReportType, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		gen:        gen,
		catalog:    catalog,
		model:      modelID,
		reportType: reportType,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewLimiter 按 RPM/QPS 构造限流器，rpm <= 0 时不限流
func NewLimiter(rpm, qps int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := qps
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// Model 当前使用的模型
func (a *Analyzer) Model() string { return a.model }

// ReportType 当前使用的报告类型
func (a *Analyzer) ReportType() model.ReportType { return a.reportType }

// Analyze 分析一个小节的数据
//
// 数据为空或本身就是错误标记时直接返回失败，不调用模型。
func (a *Analyzer) Analyze(ctx context.Context, section model.Category, data string) (res model.Result) {
	if strings.TrimSpace(data) == "" || model.IsErrorSentinel(data) {
		return model.Failed("No valid data available for %s.", section)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("分析 [%s] 时发生 panic: %v", section, r)
			res = a.failure(section, fmt.Errorf("panic: %v", r))
		}
	}()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return a.failure(section, err)
		}
	}

	text, err := a.gen.Generate(ctx, a.model, a.catalog.Render(a.reportType, section, data))
	if err != nil {
		logger.Log.Errorf("分析 [%s] 失败: %v", section, err)
		return a.failure(section, err)
	}
	if strings.TrimSpace(text) == "" {
		return a.failure(section, fmt.Errorf("empty response"))
	}

	logger.Log.Debugf("分析 [%s] 完成，响应长度 %d", section, len(text))
	return model.OK(text)
}

func (a *Analyzer) failure(section model.Category, err error) model.Result {
	return model.Failed("Failed to process %s with %s: %v", section, a.gen.Name(), err)
}
