package db

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	Driver          string `json:"driver" yaml:"driver"` // mysql / postgres
	Host            string `json:"host" yaml:"host"`
	Port            int    `json:"port" yaml:"port"`
	Username        string `json:"username" yaml:"username"`
	Password        string `json:"password" yaml:"password"`
	Database        string `json:"database" yaml:"database"`
	Schema          string `json:"schema,omitempty" yaml:"schema,omitempty"`
	MaxIdleConns    int    `json:"maxIdleConns,omitempty" yaml:"maxIdleConns,omitempty"`
	MaxOpenConns    int    `json:"maxOpenConns,omitempty" yaml:"maxOpenConns,omitempty"`
	ConnMaxLifetime int    `json:"connMaxLifetime,omitempty" yaml:"connMaxLifetime,omitempty"`
	Debug           bool   `json:"debug" yaml:"debug"`
}

func (t *Config) Validate() []error {
	var errs = make([]error, 0)
	if t.Username == "" || t.Password == "" {
		errs = append(errs, errors.Errorf("连接的数据库用户名或密码为空"))
	}
	if t.Database == "" {
		errs = append(errs, errors.Errorf("没有指定需要连接的数据库名称"))
	}
	switch strings.ToLower(t.Driver) {
	case "", "mysql", "postgres":
	default:
		errs = append(errs, errors.Errorf("不支持的数据库驱动: %s", t.Driver))
	}
	return errs
}

func NewDefaultDBConfig() *Config {
	return &Config{
		Driver:          "mysql",
		Host:            "127.0.0.1",
		Port:            3306,
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: 3600, // 1小时
	}
}

func (t *Config) DSN() string {
	if strings.ToLower(t.Driver) == "postgres" {
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			t.Host, t.Username, t.Password, t.Database, t.Port,
		)
		if t.Schema != "" {
			dsn += fmt.Sprintf(" search_path=%s", t.Schema)
		}
		return dsn
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		t.Username, t.Password, t.Host, t.Port, t.Database,
	)
}
