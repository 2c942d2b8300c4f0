package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS report_runs (
	id SERIAL PRIMARY KEY,
	model TEXT NOT NULL,
	report_type TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS report_sections (
	id SERIAL PRIMARY KEY,
	run_id INTEGER NOT NULL REFERENCES report_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	failed BOOLEAN NOT NULL,
	content TEXT NOT NULL,
	raw_data TEXT NOT NULL DEFAULT ''
);
`

// Storage 报告归档
type Storage struct {
	db *sql.DB
}

// RunSummary 归档中一次运行的摘要
type RunSummary struct {
	ID          int
	Model       string
	ReportType  string
	GeneratedAt time.Time
	Sections    int
	Failures    int
}

// ConnString 由配置拼出 lib/pq 连接串
func ConnString(cfg config.DBConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// NewStorage 连接数据库并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	db, err := sql.Open("postgres", ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveReport 在一个事务里保存报告及全部小节
func (s *Storage) SaveReport(ctx context.Context, report *model.Report) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var runID int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO report_runs (model, report_type, generated_at) VALUES ($1, $2, $3) RETURNING id`,
		report.Model, string(report.ReportType), report.GeneratedAt,
	).Scan(&runID)
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, rerr)
		}
		return 0, err
	}

	for i, section := range report.Ordered() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_sections (run_id, position, name, failed, content, raw_data) VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, i, string(section.Name), section.Result.Failed(),
			sanitize(section.Result.Text), sanitize(report.Raw[section.Name]),
		)
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w: %v", err, rerr)
			}
			return 0, err
		}
	}

	return runID, tx.Commit()
}

// ListReports 按时间倒序分页列出归档
func (s *Storage) ListReports(ctx context.Context, limit, offset int) ([]RunSummary, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.model, r.report_type, r.generated_at,
			COUNT(s.id), COUNT(s.id) FILTER (WHERE s.failed)
		FROM report_runs r
		LEFT JOIN report_sections s ON s.run_id = r.id
		GROUP BY r.id
		ORDER BY r.generated_at DESC, r.id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.ID, &rs.Model, &rs.ReportType, &rs.GeneratedAt, &rs.Sections, &rs.Failures); err != nil {
			return nil, 0, err
		}
		list = append(list, rs)
	}
	return list, total, rows.Err()
}

// GetReport 读取一次归档的完整报告
func (s *Storage) GetReport(ctx context.Context, id int) (*model.Report, error) {
	r := &model.Report{
		Raw:      map[model.Category]string{},
		Sections: map[model.Category]model.Result{},
	}
	var reportType string
	err := s.db.QueryRowContext(ctx,
		`SELECT model, report_type, generated_at FROM report_runs WHERE id = $1`, id,
	).Scan(&r.Model, &reportType, &r.GeneratedAt)
	if err != nil {
		return nil, err
	}
	r.ReportType = model.ReportType(reportType)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, failed, content, raw_data FROM report_sections WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, content, raw string
			failed             bool
		)
		if err := rows.Scan(&name, &failed, &content, &raw); err != nil {
			return nil, err
		}
		c := model.Category(name)
		res := model.OK(content)
		if failed {
			res = model.Failed("%s", content)
		}
		r.Sections[c] = res
		if c != model.SectionOverview {
			r.Categories = append(r.Categories, c)
			r.Raw[c] = raw
		}
	}
	return r, rows.Err()
}

// sanitize 去掉非法 UTF-8 与 NULL 字节，PostgreSQL 文本字段不支持
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
