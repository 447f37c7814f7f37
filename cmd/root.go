package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-portrait-kit/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string

	// opts は全サブコマンドで共有する実行時オプションなのだ。
	opts = config.GenerateOptions{}
)

// rootCmd はサブコマンドをまとめるベースコマンドなのだ。
var rootCmd = &cobra.Command{
	Use:   "portrait-kit",
	Short: "1枚の写真から複数スタイルのプロフィール写真を生成するのだ。",
	Long: `アップロードした人物写真を元に、衣装と背景の異なるポートレートを並行して生成するのだ。
生成した画像は個別に保存でき、全スタイルが揃えば印刷用のアルバムページにもまとめられるのだよ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	cobra.OnInitialize(initConfig)

	// --- 全体設定 ---
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "設定ファイルのパスなのだ（既定は ./.portrait-kit.yaml）。")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "ログの形式（text または json）なのだ。")

	// --- スタイルと出力先 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "生成画像とアルバムの保存先ディレクトリなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.StylesFile, "styles", "s", "", "スタイル定義ファイル（JSON/YAML）なのだ。省略時は組み込みの6スタイルを使うのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Locale, "locale", config.DefaultLocale, "キャプションのロケール（en / ar）なのだ。")

	rootCmd.AddCommand(generateCmd, albumCmd, stylesCmd, validateCmd)
}

// initConfig は --config の設定ファイルを viper で読み込むのだ。
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".portrait-kit")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "設定ファイルの読み込みに失敗したのだ: %v\n", err)
			os.Exit(1)
		}
	}
}

// preRunAppE はロガーを設定し、設定ファイルの値を未指定のフラグに反映するのだ。
func preRunAppE(cmd *cobra.Command, _ []string) error {
	setupLogger()
	if used := viper.ConfigFileUsed(); used != "" {
		slog.Debug("設定ファイルを読み込んだのだ", "file", used)
	}
	return applyConfigFile(cmd.Flags())
}

// applyConfigFile は CLI で明示されなかったフラグに設定ファイルの値を入れるのだ。
// 優先順位は フラグ > 設定ファイル > 環境変数 > 既定値 なのだ。
func applyConfigFile(flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !viper.IsSet(f.Name) {
			return
		}
		if err := flags.Set(f.Name, viper.GetString(f.Name)); err != nil {
			errs = append(errs, fmt.Errorf("設定ファイルの %s が不正なのだ: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig は環境変数の設定に CLI のオプションを重ねた Config を返すのだ。
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	cfg.ApplyOptions(opts)
	return cfg
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// Ctrl+C を受け取ると実行中の生成を取り消してから終了するのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
