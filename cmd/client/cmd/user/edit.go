package user

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lunasync/cmd/client/cmd/common"
	"lunasync/internal/domain/record"
)

var changes record.User

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Изменить клиента",
	Long:  `Изменяет только переданные поля. Изменение уйдет на сервер при следующей синхронизации.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.App(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		updated, err := app.UpdateUser(cmd.Context(), args[0], func(u *record.User) {
			if flags.Changed("name") {
				u.Name = changes.Name
			}
			if flags.Changed("email") {
				u.Email = changes.Email
			}
			if flags.Changed("phone") {
				u.Phone = changes.Phone
			}
			if flags.Changed("notes") {
				u.Notes = changes.Notes
			}
		})
		if err != nil {
			return fmt.Errorf("ошибка изменения клиента: %w", err)
		}

		color.Green("Клиент обновлен: %s (%s)", updated.Name, updated.ID)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&changes.Name, "name", "", "имя клиента")
	editCmd.Flags().StringVar(&changes.Email, "email", "", "email")
	editCmd.Flags().StringVar(&changes.Phone, "phone", "", "телефон")
	editCmd.Flags().StringVar(&changes.Notes, "notes", "", "заметки")
}
