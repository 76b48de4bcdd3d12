package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moyu-x/doc-renamer/internal/app"
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "统计目录中各类文档的数量",
	Long:  `遍历目录并按 Word、Excel、PowerPoint、PDF、CSV 分类统计，不会修改任何文件。`,
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"scanner.recursive":      "recursive",
		"scanner.include_hidden": "hidden",
	}); err != nil {
		return err
	}

	report, err := app.RunScan(&app.ScanOptions{Root: args[0], Verbose: verbose, Console: true})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "共 %d 个文件，支持 %d 个，不支持 %d 个\n", report.Total, report.Supported, report.Unsupported)
	for _, s := range report.Categories {
		line := fmt.Sprintf("  %-20s %5d  (%s)", s.Category.FriendlyName(), s.Count, strings.Join(s.Extensions, ", "))
		if s.Unreadable > 0 {
			line += fmt.Sprintf("  其中 %d 个文件头不匹配", s.Unreadable)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func init() {
	scanCmd.Flags().BoolP("recursive", "r", true, "递归扫描子目录")
	scanCmd.Flags().Bool("hidden", false, "包含隐藏文件和目录")

	rootCmd.AddCommand(scanCmd)
}
