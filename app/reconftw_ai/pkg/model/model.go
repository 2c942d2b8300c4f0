package model

import (
	"fmt"
	"strings"
	"time"
)

// Category reconFTW 输出目录对应的结果类别
type Category string

const (
	CategoryOSINT      Category = "osint"
	CategorySubdomains Category = "subdomains"
	CategoryHosts      Category = "hosts"
	CategoryWebs       Category = "webs"

	// SectionOverview 跨类别综合分析，不是真正的类别
	SectionOverview Category = "overview"
)

// Categories 固定的类别顺序，报告渲染也按此顺序
var Categories = []Category{
	CategoryOSINT,
	CategorySubdomains,
	CategoryHosts,
	CategoryWebs,
}

// Title 报告中的小节标题
func (c Category) Title() string {
	return strings.ToUpper(string(c))
}

// ReportType 报告类型，决定选用哪一组 Prompt
type ReportType string

const (
	ReportExecutive ReportType = "executive"
	ReportBrief     ReportType = "brief"
	ReportBugHunter ReportType = "bughunter"
)

// ReportTypes 所有合法的报告类型
var ReportTypes = []ReportType{ReportExecutive, ReportBrief, ReportBugHunter}

// ParseReportType 校验并转换报告类型
func ParseReportType(s string) (ReportType, error) {
	for _, rt := range ReportTypes {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("invalid report type %q (choose from %s)", s, joinChoices(ReportTypes))
}

// OutputFormat 报告文件格式
type OutputFormat string

const (
	FormatText     OutputFormat = "txt"
	FormatMarkdown OutputFormat = "md"
)

// OutputFormats 所有合法的输出格式
var OutputFormats = []OutputFormat{FormatText, FormatMarkdown}

// ParseOutputFormat 校验并转换输出格式
func ParseOutputFormat(s string) (OutputFormat, error) {
	for _, f := range OutputFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q (choose from %s)", s, joinChoices(OutputFormats))
}

// Extension 文件扩展名
func (f OutputFormat) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return "txt"
}

func joinChoices[T ~string](choices []T) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// Report 一次运行的完整分析报告
type Report struct {
	Model       string
	ReportType  ReportType
	GeneratedAt time.Time
	Categories  []Category
	Raw         map[Category]string // 各类别原始数据
	Sections    map[Category]Result // 各类别分析结果，外加 overview
}

// Section 有序输出时的单个小节
type Section struct {
	Name   Category
	Result Result
}

// Ordered 按声明的类别顺序返回小节，overview 固定在最后
func (r *Report) Ordered() []Section {
	sections := make([]Section, 0, len(r.Categories)+1)
	for _, c := range r.Categories {
		if res, ok := r.Sections[c]; ok {
			sections = append(sections, Section{Name: c, Result: res})
		}
	}
	if res, ok := r.Sections[SectionOverview]; ok {
		sections = append(sections, Section{Name: SectionOverview, Result: res})
	}
	return sections
}

// Failures 失败的小节数量
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.Sections {
		if res.Failed() {
			n++
		}
	}
	return n
}
