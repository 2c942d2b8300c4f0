package server

import (
	"strconv"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/reconftw_ai/app/display/internal/domain"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/usecase"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/model"
)

// NewHTTPServer 创建报告浏览 HTTP 服务
func NewHTTPServer(c config.DisplayConfig, uc *usecase.ReportUseCase, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)
	h := &reportHandler{uc: uc, log: log.NewHelper(logger)}

	r := srv.Route("/")
	r.GET("/api/reports", h.list)
	r.GET("/api/reports/{id}", h.get)
	r.GET("/api/reports/{id}/render", h.render)

	return srv
}

type reportHandler struct {
	uc  *usecase.ReportUseCase
	log *log.Helper
}

type listReply struct {
	Reports []*domain.ReportSummary `json:"reports"`
	Total   int                     `json:"total"`
}

func (h *reportHandler) list(ctx http.Context) error {
	q := ctx.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	reports, total, err := h.uc.List(ctx, page, pageSize)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []*domain.ReportSummary{}
	}
	return ctx.JSON(200, listReply{Reports: reports, Total: total})
}

func (h *reportHandler) get(ctx http.Context) error {
	rep, err := h.uc.Get(ctx, ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(200, rep)
}

func (h *reportHandler) render(ctx http.Context) error {
	format := model.FormatMarkdown
	if f := ctx.Query().Get("format"); f != "" {
		parsed, err := model.ParseOutputFormat(f)
		if err != nil {
			return kerrors.BadRequest("INVALID_FORMAT", err.Error())
		}
		format = parsed
	}

	text, err := h.uc.Render(ctx, ctx.Vars().Get("id"), format)
	if err != nil {
		return err
	}

	contentType := "text/plain; charset=utf-8"
	if format == model.FormatMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}
	return ctx.Blob(200, contentType, []byte(text))
}
