package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/doc-renamer/internal/app"
	"github.com/moyu-x/doc-renamer/pkg/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history [directory]",
	Short: "列出重命名批次",
	Long:  `读取重命名日志并列出所有批次，最新的批次在最后；指定 --batch 时列出该批次的每条记录。
使用 sqlite 后端时可以省略目录。`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := bindLedgerFlags(cmd); err != nil {
		return err
	}

	batches, err := app.RunHistory(&app.HistoryOptions{Root: optionalRoot(args), Verbose: verbose, Console: true})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(batches) == 0 {
		fmt.Fprintln(out, "没有历史记录")
		return nil
	}

	if batchID, _ := cmd.Flags().GetString("batch"); batchID != "" {
		batch, err := ledger.FindBatch(batches, batchID)
		if err != nil {
			return err
		}
		for _, e := range batch.Entries {
			line := fmt.Sprintf("%-8s  %s -> %s", e.Outcome, e.OriginalPath, e.NewPath)
			if e.Reason != "" {
				line += " (" + e.Reason + ")"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	}
	for _, b := range batches {
		fmt.Fprintf(out, "%s  %s  %-7s  重命名 %d  失败 %d  可撤销 %d\n",
			b.ID, b.StartTime.Local().Format("2006-01-02 15:04:05"), b.Mode,
			b.Count(ledger.OutcomeRenamed), b.Count(ledger.OutcomeFailed), b.Revertible())
	}
	return nil
}

// bindLedgerFlags 绑定日志存储相关参数
func bindLedgerFlags(cmd *cobra.Command) error {
	return bindFlags(cmd, map[string]string{
		"ledger.backend":  "backend",
		"ledger.path":     "ledger",
		"ledger.database": "db",
	})
}

func addLedgerFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "file", "日志后端: file 或 sqlite")
	cmd.Flags().String("ledger", "", "日志文件路径 (file 后端，默认写在目录下)")
	cmd.Flags().String("db", "", "历史数据库路径 (sqlite 后端)")
}

func optionalRoot(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	historyCmd.Flags().StringP("batch", "b", "", "列出指定批次的全部记录")
	addLedgerFlags(historyCmd)

	rootCmd.AddCommand(historyCmd)
}
