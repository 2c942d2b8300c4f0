package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

var (
	mdModelRe      = regexp.MustCompile("(?m)^- \\*\\*Model Used\\*\\*: `(.*)`$")
	mdReportTypeRe = regexp.MustCompile("(?m)^- \\*\\*Report Type\\*\\*: `(.*)`$")
	mdDateRe       = regexp.MustCompile("(?m)^- \\*\\*Date\\*\\*: `(.*)`$")
	txtModelRe     = regexp.MustCompile(`(?m)^Model: (.*)$`)
	txtReportRe    = regexp.MustCompile(`(?m)^Report Type: (.*)$`)
	txtDateRe      = regexp.MustCompile(`(?m)^Date: (.*)$`)

	// 只认已知的小节标题，避免模型输出里的同级标题被误切
	mdSectionRe  = regexp.MustCompile(`(?m)^## (` + sectionTitles() + `)$`)
	txtSectionRe = regexp.MustCompile(`(?m)^=== (` + sectionTitles() + `) ===$`)
)

func sectionTitles() string {
	titles := make([]string, 0, len(model.Categories)+1)
	for _, c := range model.Categories {
		titles = append(titles, regexp.QuoteMeta(c.Title()))
	}
	titles = append(titles, regexp.QuoteMeta(model.SectionOverview.Title()))
	return strings.Join(titles, "|")
}

// Parse 把 Render 的输出还原为报告
func Parse(content string, format model.OutputFormat) (*model.Report, error) {
	modelRe, reportRe, dateRe, sectionRe := txtModelRe, txtReportRe, txtDateRe, txtSectionRe
	headingSep := "\n"
	if format == model.FormatMarkdown {
		modelRe, reportRe, dateRe, sectionRe = mdModelRe, mdReportTypeRe, mdDateRe, mdSectionRe
		headingSep = "\n\n"
	}

	r := &model.Report{
		Model:      firstGroup(modelRe, content),
		ReportType: model.ReportType(firstGroup(reportRe, content)),
		Raw:        map[model.Category]string{},
		Sections:   map[model.Category]model.Result{},
	}
	if r.Model == "" {
		return nil, fmt.Errorf("not a reconftw_ai report: missing model header")
	}

	if date := firstGroup(dateRe, content); date != "" {
		t, err := time.ParseInLocation(TimestampLayout, date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse report date %q: %w", date, err)
		}
		r.GeneratedAt = t
	}

	matches := sectionRe.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		name := model.Category(strings.ToLower(content[m[2]:m[3]]))
		// 只去掉 Render 写入的分隔，正文自带的空行保留
		body := strings.TrimPrefix(content[m[1]:end], headingSep)
		body = strings.TrimSuffix(body, "\n\n")

		r.Sections[name] = model.ParseRendered(body)
		if name != model.SectionOverview {
			r.Categories = append(r.Categories, name)
		}
	}

	return r, nil
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
