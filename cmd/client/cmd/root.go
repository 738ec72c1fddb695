package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"lunasync/cmd/client/cmd/appointment"
	"lunasync/cmd/client/cmd/common"
	"lunasync/cmd/client/cmd/sync"
	"lunasync/cmd/client/cmd/user"
	"lunasync/internal/app/client"
	"lunasync/internal/app/client/config"
	"lunasync/internal/utils/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	debug     bool
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "lunasync",
	Short: "Lunasync - офлайн-клиент записи клиентов",
	Long: `Lunasync хранит клиентов и записи на прием локально и работает без сети.

Изменения отправляются на сервер при появлении соединения, а изменения
с других устройств подтягиваются и сливаются по времени последнего изменения.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	log = newLogger(cmd)

	app, err = client.New(cfg, log, client.NewConsoleNotifier(os.Stderr))
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(common.WithApp(cmd.Context(), app))
	return nil
}

// newLogger пишет в файл, если он задан. Без файла короткие команды
// логируют только с --debug, а фоновый режим всегда пишет в stderr.
func newLogger(cmd *cobra.Command) *slog.Logger {
	env := cfg.Env
	if debug {
		env = logger.EnvLocal
	}

	switch {
	case cfg.LogFile != "":
		return logger.NewFile(env, cfg.LogFile)
	case debug || cmd == runCmd:
		return logger.NewWithOutput(env, os.Stderr)
	default:
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера синхронизации (host:port)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(user.UserCmd)
	rootCmd.AddCommand(appointment.AppointmentCmd)
}
