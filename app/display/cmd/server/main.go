package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/reconftw_ai/app/display/internal/data"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/repo"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/server"
	"github.com/iWorld-y/reconftw_ai/app/display/internal/usecase"
	rcfg "github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "reconftw_display"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	// 与 reconftw_ai 共用同一份配置文件
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	bc := rcfg.Default()
	if err := c.Scan(bc); err != nil {
		panic(err)
	}

	app, cleanup, err := initApp(bc, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}

// initApp 组装依赖：配置了数据库时读归档，否则读输出目录
func initApp(bc *rcfg.Config, logger log.Logger) (*kratos.App, func(), error) {
	cleanup := func() {}

	var reports repo.ReportRepo
	if bc.DB.Host != "" {
		d, dataCleanup, err := data.NewData(bc.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup = dataCleanup
		reports = data.NewArchiveRepo(d, logger)
	} else {
		reports = data.NewFileRepo(bc.OutputDir, logger)
	}

	uc := usecase.NewReportUseCase(reports, logger)
	hs := server.NewHTTPServer(bc.Display, uc, logger)
	return newApp(logger, hs), cleanup, nil
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}
