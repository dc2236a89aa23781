package cmd

import (
	"plant-edgesync/pkg/util"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plant-edgesync",
		Short: "混凝土搅拌站云边数据同步服务",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableNoDescFlag:   true,
			DisableDescriptions: true,
			HiddenDefaultCmd:    true,
		},
		Version: util.GetVersion().Version,
	}
	cmd.AddCommand(NewServerCommand())
	cmd.AddCommand(NewOnceCommand())
	return cmd
}
