package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/internal/app"
	"github.com/moyu-x/doc-renamer/pkg/logger"
	"github.com/moyu-x/doc-renamer/tui"
)

var renameCmd = &cobra.Command{
	Use:   "rename <directory>",
	Short: "根据内容重命名目录中的文档",
	Long: `从文档内容中提取标题作为新文件名，同名时追加 (1)、(2) 序号。
每次实际重命名都会先写入日志，之后可以用 undo 命令按批次撤销。
使用 --dry-run 只输出计划，不修改任何文件。`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"scanner.recursive":      "recursive",
		"scanner.include_hidden": "hidden",
		"extract.workers":        "workers",
		"naming.max_length":      "max-length",
	}); err != nil {
		return err
	}
	if err := bindLedgerFlags(cmd); err != nil {
		return err
	}

	types, _ := cmd.Flags().GetStringSlice("types")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	useTUI, _ := cmd.Flags().GetBool("tui")

	job, err := app.NewRenameJob(&app.RenameOptions{
		Root:    args[0],
		Types:   types,
		DryRun:  dryRun,
		Verbose: verbose,
		Console: !useTUI,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := job.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("关闭日志失败")
		}
	}()

	if len(job.Files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "目录中没有文件")
		return nil
	}

	var (
		stats    *internal.BatchStats
		outcomes []internal.Outcome
	)
	if useTUI {
		res, err := tui.Run(job, len(job.Files), job.Mode)
		if err != nil {
			return err
		}
		stats, outcomes = res.Stats, res.Outcomes
	} else {
		// 中断信号只请求停止，当前文件处理完成后退出
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		release := stopOnDone(ctx, job)

		stats, outcomes, err = job.Run(context.Background(), nil)
		release()
		if err != nil {
			return err
		}
	}

	printOutcomes(cmd.OutOrStdout(), outcomes)
	printFinalStats(stats, args[0])
	return nil
}

type stopper interface {
	Stop()
}

// stopOnDone 在 ctx 结束时请求停止批处理。
// 返回的函数在批处理结束后调用，调用之后 ctx 再结束也不会触发停止
func stopOnDone(ctx context.Context, s stopper) func() {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			select {
			case <-done:
			default:
				s.Stop()
			}
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

func printOutcomes(out io.Writer, outcomes []internal.Outcome) {
	for _, o := range outcomes {
		switch o.Status {
		case internal.StatusRenamed:
			verb := "重命名"
			if o.Preview {
				verb = "计划"
			}
			fmt.Fprintf(out, "%s  %s -> %s\n", verb, o.OriginalPath, o.NewName)
		case internal.StatusFailed:
			line := fmt.Sprintf("失败    %s (%s", o.OriginalPath, o.Reason)
			if o.Detail != "" {
				line += ": " + o.Detail
			}
			fmt.Fprintln(out, line+")")
		default:
			logger.Get().Debug().Msgf("跳过 %s (%s)", o.OriginalPath, o.Reason)
		}
	}
}

func printFinalStats(stats *internal.BatchStats, dir string) {
	elapsed := stats.EndTime.Sub(stats.StartTime)

	logger.Get().Info().Msg("========== 处理完成 ==========")
	logger.Get().Info().Msgf("扫描目录: %s", dir)
	logger.Get().Info().Msgf("批次: %s (%s)", stats.BatchID, stats.Mode)
	logger.Get().Info().Msgf("已处理: %d 个文件", stats.Total)
	logger.Get().Info().Msgf("  - 重命名: %d 个", stats.Renamed)
	logger.Get().Info().Msgf("  - 跳过: %d 个", stats.Skipped)
	logger.Get().Info().Msgf("  - 失败: %d 个", stats.Failed)
	if stats.Stopped {
		logger.Get().Warn().Msg("批处理被中途停止")
	}
	logger.Get().Info().Msgf("总耗时: %v", elapsed)
	logger.Get().Info().Msg("============================")
}

func init() {
	renameCmd.Flags().StringSliceP("types", "t", []string{"all"}, "要处理的类别: word,excel,powerpoint,pdf,csv 或 all")
	renameCmd.Flags().BoolP("dry-run", "n", false, "预览模式，不实际修改文件")
	renameCmd.Flags().Bool("tui", false, "使用交互界面显示进度")
	renameCmd.Flags().IntP("workers", "w", internal.DefaultWorkers, "内容提取并发数")
	renameCmd.Flags().Int("max-length", internal.DefaultMaxNameLength, "新文件名最大字符数")
	renameCmd.Flags().BoolP("recursive", "r", true, "递归处理子目录")
	renameCmd.Flags().Bool("hidden", false, "包含隐藏文件和目录")
	addLedgerFlags(renameCmd)

	rootCmd.AddCommand(renameCmd)
}
