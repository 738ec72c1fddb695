package user

import (
	"github.com/spf13/cobra"
)

// UserCmd - родительская команда для работы с клиентами
var UserCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "Управление клиентами",
	Long:    `Добавление, просмотр и изменение клиентов. Все изменения сохраняются локально.`,
}

func init() {
	UserCmd.AddCommand(addCmd, listCmd, editCmd)
}
