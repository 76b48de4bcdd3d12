package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moyu-x/doc-renamer/internal"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "doc-renamer",
	Short: "根据文件内容为恢复出来的办公文档重新命名",
	Long: `Doc Renamer 是一个命令行工具，用于为数据恢复后名称丢失的办公文档重新命名。

主要功能:
- 扫描目录中的 Word、Excel、PowerPoint、PDF 和 CSV 文件
- 从文件内容中提取标题、首段或表头作为新文件名
- 同名冲突时自动追加 (1)、(2) 序号
- 预览模式只输出计划，不修改文件
- 每次重命名都记录在日志中，可按批次撤销`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认 "+internal.DefaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

// bindFlags 把当前命令的参数绑定到配置项，命令行优先于配置文件
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}
