package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"plant-edgesync/pkg/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 云端推送的单次请求超时
const pushTimeout = 30 * time.Second

// Transport 单次推送尝试的HTTP客户端
type Transport interface {
	Push(ctx context.Context, cfg *models.CloudSyncConfig, batches []SyncBatch) (*SyncResult, error)
}

type httpTransport struct {
	client *http.Client
}

func NewTransport() Transport {
	return &httpTransport{
		client: &http.Client{Timeout: pushTimeout},
	}
}

// Push 执行一次推送：POST {cloudApiUrl}/api/sync/push
// 非2xx响应和网络/超时错误都视为本次尝试失败
func (t *httpTransport) Push(ctx context.Context, cfg *models.CloudSyncConfig, batches []SyncBatch) (*SyncResult, error) {
	body, err := json.Marshal(PushRequest{
		SiteId:    cfg.SiteId,
		ApiKey:    cfg.ApiKey,
		SyncBatch: batches,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, errors.Wrap(err, "序列化推送请求失败")
	}

	url := fmt.Sprintf("%s/api/sync/push", cfg.CloudApiUrl)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "构造推送请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", cfg.ApiKey)
	req.Header.Set("X-Site-Id", strconv.FormatInt(cfg.SiteId, 10))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "推送请求失败")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("云端返回 HTTP %d: %s", resp.StatusCode, string(data))
	}

	var result SyncResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "解析推送响应失败")
	}
	return &result, nil
}

// Pusher 在 Transport 外包一层有界重试，线性退避
type Pusher struct {
	transport Transport
	sleep     func(d time.Duration) // 测试注入
}

func NewPusher(transport Transport) *Pusher {
	return &Pusher{transport: transport, sleep: time.Sleep}
}

// PushWithRetry 尝试 1..retryTimes 次推送
// 第n次失败后等待 retryDelay*n 秒再试；成功立即返回；全部失败返回最后一次错误
func (p *Pusher) PushWithRetry(ctx context.Context, cfg *models.CloudSyncConfig, batches []SyncBatch) (*SyncResult, error) {
	maxRetries := cfg.RetryTimes
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		zap.S().Infof("推送数据到云端 (尝试 %d/%d)...", attempt, maxRetries)
		result, err := p.transport.Push(ctx, cfg, batches)
		if err == nil {
			zap.S().Info("数据推送成功")
			return result, nil
		}
		lastErr = err
		zap.S().Errorf("推送失败 (尝试 %d/%d): %v", attempt, maxRetries, err)

		if attempt < maxRetries {
			delay := time.Duration(cfg.RetryDelay*attempt) * time.Second
			zap.S().Infof("%v 后重试...", delay)
			p.sleep(delay)
		}
	}
	return nil, errors.Wrap(lastErr, "推送重试次数耗尽")
}
