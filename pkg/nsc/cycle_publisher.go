package nsc

import (
	"fmt"

	edgesync "plant-edgesync/pkg/sync"

	"go.uber.org/zap"
)

// CyclePublisher 把同步周期结果作为事件发布到站内NATS
// 供调度大屏等实时消费方订阅，发布失败只记日志
type CyclePublisher struct {
	client *NatsPubClient
}

func NewCyclePublisher(client *NatsPubClient) *CyclePublisher {
	return &CyclePublisher{client: client}
}

func (p *CyclePublisher) RecordOutcome(outcome edgesync.CycleOutcome) {
	if p.client == nil {
		return
	}
	subject := fmt.Sprintf("edge.sync.%d.cycle", outcome.SiteId)
	if err := p.client.Publish(subject, outcome); err != nil {
		zap.S().Warnf("发布同步周期事件失败: %v", err)
	}
}
