package cmd

import (
	"context"
	stderrors "errors"

	"plant-edgesync/pkg/db"
	"plant-edgesync/pkg/nsc"
	"plant-edgesync/pkg/server"
	"plant-edgesync/pkg/signals"
	"plant-edgesync/pkg/store"
	edgesync "plant-edgesync/pkg/sync"
	"plant-edgesync/pkg/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var cfg *server.Config

func NewServerCommand() *cobra.Command {
	var configFilePath string
	cmd := &cobra.Command{
		Use:   "server",
		Short: "启动云边同步服务和管理API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = server.TryLoadFromDisk(configFilePath)
			if err != nil {
				return errors.Errorf("读取本地配置文件错误:%s", err.Error())
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				return errors.Errorf("本地配置文件验证错误:%s", stderrors.Join(errs...))
			}
			if err := db.InitDB(cfg.DB); err != nil {
				return errors.Errorf("初始化边缘库失败:%s", err.Error())
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			ctx := signals.SetupSignalHandler()
			if err := runSyncServer(cfg, ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				zap.S().Errorf(err.Error())
			}
		},
		Version: util.GetVersion().Version,
	}
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	return cmd
}

func runSyncServer(cfg *server.Config, ctx context.Context) error {
	zap.S().Infof("***  %s %s ***", util.AppName, util.GetVersion().Version)
	zap.S().Infof("*** 站点ID:%d ***", cfg.SiteId)

	metaStore := edgesync.NewStore(db.GetDB(), cfg.SiteId)
	orchestrator := edgesync.NewOrchestrator(metaStore, edgesync.NewTransport())

	// 本地周期历史
	cycleHistory := store.NewCycleHistory(store.GetBadgerStore(cfg.DataDir))
	orchestrator.AddOutcomeSink(cycleHistory)

	// 站内事件（可选）
	if cfg.Nats != nil {
		if err := nsc.InitNats(cfg.ClientName, cfg.Nats); err != nil {
			zap.S().Warnf("初始化NATS失败，周期事件不发布: %v", err)
		} else {
			orchestrator.AddOutcomeSink(nsc.NewCyclePublisher(nsc.GetNatsClient()))
		}
	}

	var cronExpr string
	if cfg.Schedule != nil {
		cronExpr = cfg.Schedule.Cron
	}

	handler := server.NewHandler(orchestrator, cycleHistory)
	webServer := server.NewServer(cfg, handler)

	g, c := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webServer.Run()
	})
	g.Go(func() error {
		if err := orchestrator.Start(c, cronExpr); err != nil {
			return err
		}
		<-c.Done()
		orchestrator.Stop()
		return c.Err()
	})
	g.Go(func() error {
		<-c.Done()
		store.CloseBadgerStore()
		if client := nsc.GetNatsClient(); client != nil {
			client.Close()
		}
		_ = webServer.GracefulShutdown(context.Background())
		return c.Err()
	})
	return g.Wait()
}
