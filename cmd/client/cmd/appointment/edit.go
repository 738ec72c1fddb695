package appointment

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lunasync/cmd/client/cmd/common"
	"lunasync/internal/domain/record"
)

var editFields fields

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Изменить запись на прием",
	Long:  `Изменяет только переданные поля. Изменение уйдет на сервер при следующей синхронизации.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.App(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		var at int64
		if flags.Changed("at") {
			if at, err = common.ParseTime(editFields.startsAt); err != nil {
				return err
			}
		}

		updated, err := app.UpdateAppointment(cmd.Context(), args[0], func(a *record.Appointment) {
			if flags.Changed("user") {
				a.UserID = editFields.userID
			}
			if flags.Changed("title") {
				a.Title = editFields.title
			}
			if flags.Changed("at") {
				a.StartsAt = at
			}
			if flags.Changed("duration") {
				a.DurationMinutes = editFields.duration
			}
			if flags.Changed("status") {
				a.Status = record.AppointmentStatus(editFields.status)
			}
			if flags.Changed("notes") {
				a.Notes = editFields.notes
			}
		})
		if err != nil {
			return fmt.Errorf("ошибка изменения записи: %w", err)
		}

		color.Green("Запись обновлена: %s, статус %s (%s)", updated.Title, updated.Status, updated.ID)
		return nil
	},
}

func init() {
	editFields.bind(editCmd, 0)
}
