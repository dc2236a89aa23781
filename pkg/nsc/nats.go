package nsc

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"plant-edgesync/pkg/util"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	singleton *NatsPubClient
	once      sync.Once
)

// NatsPubClient 站内事件发布客户端
type NatsPubClient struct {
	clientName string
	cfg        *NatsConfig
	nc         *nats.Conn
}

func InitNats(clientName string, config *NatsConfig) error {
	zap.S().Info("***初始化NATS")
	var hasError error
	once.Do(func() {
		client := &NatsPubClient{
			clientName: clientName,
			cfg:        config,
		}
		defaultAccount, err := config.GetDefaultAccount()
		if err != nil {
			hasError = err
			return
		}
		if err := client.Connect(defaultAccount); err != nil {
			hasError = err
			return
		}
		singleton = client
	})
	return hasError
}

func GetNatsClient() *NatsPubClient {
	return singleton
}

func (nsc *NatsPubClient) Connect(account *NatsAccount) error {
	if nsc.nc != nil {
		return nil
	}
	opt := nats.GetDefaultOptions()
	opt.Name = fmt.Sprintf("%s %s", util.GetVersion().AppName, util.GetVersion().Version)
	opt.User = account.UserName
	opt.Password = account.Password
	opt.Nkey = account.NKey
	opt.Url = nsc.cfg.Endpoint
	opt.NoCallbacksAfterClientClose = true
	opt.ReconnectWait = 2 * time.Second //重试等待2s
	opt.MaxReconnect = -1               //永远重试
	opt.AllowReconnect = true
	opt.ReconnectJitter = 500 * time.Millisecond
	opt.DisconnectedErrCB = func(conn *nats.Conn, err error) {
		if err != nil {
			zap.S().Debugf("*** 断开连接...%s ***", err.Error())
		}
	}
	opt.ReconnectedCB = func(conn *nats.Conn) {
		zap.S().Debugf("*** 已重连 ***")
	}
	opt.ConnectedCB = func(conn *nats.Conn) {
		zap.S().Debugf("*** NATS 已连接 ***")
	}
	if account.Seed != "" {
		opt.SignatureCB = func(b []byte) ([]byte, error) {
			sk, err := nkeys.FromSeed(util.StringToBytes(account.Seed))
			if err != nil {
				return nil, err
			}
			return sk.Sign(b)
		}
	}

	nc, err := opt.Connect()
	if err != nil {
		return errors.Wrap(err, "连接 NATS 失败")
	}
	nsc.nc = nc
	return nil
}

// Publish JSON序列化后发布到指定主题
func (nsc *NatsPubClient) Publish(subject string, v interface{}) error {
	if nsc.nc == nil {
		return errors.New("NATS 未连接")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "序列化事件失败")
	}
	return errors.Wrapf(nsc.nc.Publish(subject, data), "发布 %s 失败", subject)
}

func (nsc *NatsPubClient) Close() {
	if nsc.nc != nil {
		nsc.nc.Close()
		nsc.nc = nil
	}
}
