package server

import (
	"os"
	"path/filepath"
	"strings"

	"plant-edgesync/pkg/db"
	"plant-edgesync/pkg/nsc"
	"plant-edgesync/pkg/util"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config 进程级配置（数据库连接、管理端口、站内事件等）
// 同步行为本身的配置（间隔、批量、重试）在 cloud_sync_config 表中，由云端管理
type Config struct {
	ClientName string          `json:"client_name" yaml:"client_name"`
	SiteId     int64           `json:"site_id" yaml:"site_id"` // 本边缘站点ID
	Port       int             `json:"port,omitempty" yaml:"port,omitempty"`
	DataDir    string          `json:"data_dir,omitempty" yaml:"data_dir,omitempty"` // 本地周期历史存储目录
	DB         *db.Config      `json:"db,omitempty" yaml:"db,omitempty"`
	Nats       *nsc.NatsConfig `json:"nats,omitempty" yaml:"nats,omitempty"`
	Schedule   *ScheduleConfig `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// ScheduleConfig 可选的cron调度覆盖；为空时按配置表的间隔调度
type ScheduleConfig struct {
	Cron string `json:"cron,omitempty" yaml:"cron,omitempty"`
}

func (g *Config) Validate() []error {
	var errs = make([]error, 0)
	if err := util.IsValidPort(g.Port); err != nil {
		errs = append(errs, err)
	}
	if g.SiteId <= 0 {
		errs = append(errs, errors.New("缺少 site_id 配置"))
	}
	if g.DB == nil {
		errs = append(errs, errors.New("缺少 db 配置"))
	} else if es := g.DB.Validate(); len(es) > 0 {
		errs = append(errs, es...)
	}
	if g.Nats != nil {
		if es := g.Nats.Validate(); len(es) > 0 {
			errs = append(errs, es...)
		}
	}
	return errs
}

func NewDefaultConfig() *Config {
	return &Config{
		Port: 3000,
		DB:   db.NewDefaultDBConfig(),
	}
}

func TryLoadFromDisk(configFilePath string) (*Config, error) {
	_, err := os.Stat(configFilePath)
	if err != nil {
		return nil, err
	}
	dir, file := filepath.Split(configFilePath)
	fileType := filepath.Ext(file)
	viper.Reset()
	viper.AddConfigPath(dir)
	viper.SetConfigName(strings.TrimSuffix(file, fileType))
	viper.SetConfigType(strings.TrimPrefix(fileType, "."))
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}
	cfg := NewDefaultConfig()
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = strings.TrimPrefix(fileType, ".")
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}
