package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Фоновая синхронизация",
	Long: `Запускает клиент в фоновом режиме: синхронизация через несколько секунд
после старта, при восстановлении соединения и по интервалу.

Работает до SIGINT/SIGTERM; перед выходом отправляет несохраненные изменения.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.Run(cmd.Context())
	},
}
