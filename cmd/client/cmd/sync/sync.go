package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lunasync/cmd/client/cmd/common"
	"lunasync/internal/app/client"
	"lunasync/internal/domain/record"
)

var (
	quickSync  bool
	syncStatus bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с сервером",
	Long: `Выполняет полный цикл синхронизации: отправляет локальные изменения,
получает изменения с сервера и сливает их с локальными данными.

С флагом --quick только отправляет локальные изменения.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := common.App(cmd)
		if err != nil {
			return err
		}

		switch {
		case syncStatus:
			return showSyncStatus(cmd.Context(), app)
		case quickSync:
			return runQuickSync(cmd.Context(), app)
		default:
			return runSync(cmd.Context(), app)
		}
	},
}

func runSync(ctx context.Context, app *client.App) error {
	result, err := app.Sync(ctx)
	if err != nil {
		if errors.Is(err, client.ErrAlreadyInProgress) {
			return nil
		}
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	fmt.Printf("Время выполнения: %v\n", result.Duration.Round(time.Millisecond))
	return nil
}

func runQuickSync(ctx context.Context, app *client.App) error {
	if !app.QuickSync(ctx) {
		return errors.New("не удалось отправить изменения, они будут отправлены при следующей синхронизации")
	}
	color.Green("Локальные изменения отправлены")
	return nil
}

func showSyncStatus(ctx context.Context, app *client.App) error {
	status, err := app.SyncStatus(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения статуса: %w", err)
	}

	bold := color.New(color.Bold)
	_, _ = bold.Println("=== Статус синхронизации ===")

	fmt.Printf("Устройство: %s\n", status.DeviceID)
	if status.LastSyncAt.IsZero() {
		fmt.Println("Последняя синхронизация: никогда")
	} else {
		fmt.Printf("Последняя синхронизация: %s\n", status.LastSyncAt.Local().Format("2006-01-02 15:04:05"))
	}

	fmt.Print("Соединение с сервером: ")
	if status.Online {
		color.Green("доступен")
	} else {
		color.Red("недоступен")
	}

	fmt.Println("Ожидают отправки:")
	for _, c := range record.Collections() {
		n := status.Pending[c]
		line := fmt.Sprintf("  %s: %d", c.DisplayName(), n)
		if n > 0 {
			color.Yellow(line)
		} else {
			fmt.Println(line)
		}
	}

	if stats := status.Stats; stats.TotalSyncs > 0 {
		fmt.Printf("Синхронизаций: %d, ошибок: %d, среднее время: %.2f сек\n",
			stats.TotalSyncs, stats.TotalErrors, stats.AvgSyncDuration)
	}

	return nil
}

func init() {
	SyncCmd.Flags().BoolVarP(&quickSync, "quick", "q", false, "только отправить локальные изменения")
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
}
