package nsc

import "github.com/pkg/errors"

type NatsConfig struct {
	Endpoint string         `json:"endpoint" yaml:"endpoint"`
	Accounts []*NatsAccount `json:"accounts" yaml:"accounts"`
}

type NatsAccount struct {
	Name     string `json:"name" yaml:"name"`
	UserName string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	NKey     string `json:"nkey,omitempty" yaml:"nkey,omitempty"`
	Seed     string `json:"seed,omitempty" yaml:"seed,omitempty"`
}

func NewDefaultNatsConfig() *NatsConfig {
	return &NatsConfig{
		Endpoint: "nats://127.0.0.1:4222",
	}
}

func (c *NatsConfig) Validate() []error {
	var errs = make([]error, 0)
	if c.Endpoint == "" {
		errs = append(errs, errors.New("缺少 nats endpoint 配置"))
	}
	return errs
}

// GetDefaultAccount 取第一个账号作为默认连接账号
func (c *NatsConfig) GetDefaultAccount() (*NatsAccount, error) {
	if len(c.Accounts) == 0 {
		return nil, errors.New("缺少 nats 账号配置")
	}
	return c.Accounts[0], nil
}
