package user

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lunasync/cmd/client/cmd/common"
	"lunasync/internal/domain/record"
)

var input record.User

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить клиента",
	Example: `  lunasync user add --name "Анна Петрова" --phone "+7 900 000-00-00"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := common.App(cmd)
		if err != nil {
			return err
		}

		created, err := app.AddUser(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("ошибка добавления клиента: %w", err)
		}

		color.Green("Клиент добавлен: %s (%s)", created.Name, created.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&input.Name, "name", "", "имя клиента")
	addCmd.Flags().StringVar(&input.Email, "email", "", "email")
	addCmd.Flags().StringVar(&input.Phone, "phone", "", "телефон")
	addCmd.Flags().StringVar(&input.Notes, "notes", "", "заметки")
	_ = addCmd.MarkFlagRequired("name")
}
