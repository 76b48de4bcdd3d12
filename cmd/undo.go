package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/doc-renamer/internal/app"
	"github.com/moyu-x/doc-renamer/pkg/ledger"
)

var undoCmd = &cobra.Command{
	Use:   "undo [directory]",
	Short: "撤销一个重命名批次",
	Long: `按相反顺序把批次中的文件恢复为原名。
重命名后被移动、修改或原名已被占用的文件会被跳过并说明原因。`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	if err := bindLedgerFlags(cmd); err != nil {
		return err
	}
	batchID, _ := cmd.Flags().GetString("batch")

	results, err := app.RunUndo(&app.UndoOptions{
		Root:    optionalRoot(args),
		BatchID: batchID,
		Verbose: verbose,
		Console: true,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	counts := make(map[ledger.UndoStatus]int)
	for _, r := range results {
		counts[r.Status]++
		switch r.Status {
		case ledger.UndoRestored:
			fmt.Fprintf(out, "已恢复  %s -> %s\n", r.Entry.NewPath, r.Entry.OriginalPath)
		default:
			fmt.Fprintf(out, "%-6s  %s (%s)\n", r.Status, r.Entry.NewPath, r.Reason)
		}
	}
	fmt.Fprintf(out, "恢复 %d 个，跳过 %d 个，失败 %d 个\n",
		counts[ledger.UndoRestored], counts[ledger.UndoSkipped], counts[ledger.UndoFailed])
	return nil
}

func init() {
	undoCmd.Flags().StringP("batch", "b", "", "要撤销的批次 ID (默认最近一次)")
	addLedgerFlags(undoCmd)

	rootCmd.AddCommand(undoCmd)
}
