package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmdは、アプリケーションのエントリーポイントとなるルートコマンドです。
// サブコマンドなしで実行すると、停止されるまで一定間隔で求人一覧を監視し続けます。
var rootCmd = &cobra.Command{
	Use:   "job-watcher",
	Short: "求人サイトを定期的に巡回し、新着求人をCSVに保存するツールです。",
	Long: `job-watcherは、求人一覧ページを読み切って詳細ページから求人情報を抽出し、
未記録の求人を全履歴CSVに、本日投稿された求人を本日投稿分CSVに追記します。`,
	Run: func(cmd *cobra.Command, args []string) {
		runWatcher(cmd, false)
	},
}

// Executeは、全てのサブコマンドをルートコマンドに追加し、フラグを適切に設定します。
// この関数はmain.main()から呼び出され、rootCmdに対して一度だけ実行される必要があります。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "settings/watcher.yaml", "設定ファイルのパス")
}
