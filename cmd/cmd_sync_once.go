package cmd

import (
	stderrors "errors"

	"plant-edgesync/pkg/db"
	"plant-edgesync/pkg/server"
	"plant-edgesync/pkg/signals"
	edgesync "plant-edgesync/pkg/sync"
	"plant-edgesync/pkg/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewOnceCommand 执行一次同步周期后退出，用于排查和手动补推
func NewOnceCommand() *cobra.Command {
	var configFilePath string
	cmd := &cobra.Command{
		Use:   "once",
		Short: "执行一次同步周期后退出",
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
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := signals.SetupSignalHandler()

			metaStore := edgesync.NewStore(db.GetDB(), cfg.SiteId)
			orchestrator := edgesync.NewOrchestrator(metaStore, edgesync.NewTransport())
			if _, err := orchestrator.LoadConfig(); err != nil {
				return err
			}

			outcome := orchestrator.TriggerSync(ctx)
			if outcome.Status == edgesync.CycleStatusFailed {
				return errors.Errorf("同步失败: %s", outcome.ErrorMessage)
			}
			zap.S().Infof("同步结果: %s，共 %d 表 %d 条记录", outcome.Status, outcome.Tables, outcome.RecordsCount)
			return nil
		},
		Version: util.GetVersion().Version,
	}
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	return cmd
}
