package appointment

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lunasync/cmd/client/cmd/common"
	"lunasync/internal/domain/record"
)

var addFields fields

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Добавить запись на прием",
	Example: `  lunasync appointment add --user <id> --title "Стрижка" --at "2024-03-15 14:30" --duration 60`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := common.App(cmd)
		if err != nil {
			return err
		}

		at, err := common.ParseTime(addFields.startsAt)
		if err != nil {
			return err
		}

		created, err := app.AddAppointment(cmd.Context(), record.Appointment{
			UserID:          addFields.userID,
			Title:           addFields.title,
			StartsAt:        at,
			DurationMinutes: addFields.duration,
			Status:          record.AppointmentStatus(addFields.status),
			Notes:           addFields.notes,
		})
		if err != nil {
			return fmt.Errorf("ошибка добавления записи: %w", err)
		}

		color.Green("Запись добавлена: %s на %s (%s)", created.Title, common.FormatTime(created.StartsAt), created.ID)
		return nil
	},
}

func init() {
	addFields.bind(addCmd, 60)
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("at")
}
