package data

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/storage"
)

// Data 展示服务的数据资源
type Data struct {
	store *storage.Storage
}

// NewData 连接报告归档，返回清理函数
func NewData(c config.DBConfig, logger log.Logger) (*Data, func(), error) {
	store, err := storage.NewStorage(c)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		store.Close()
	}
	return &Data{store: store}, cleanup, nil
}
