package user

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lunasync/cmd/client/cmd/common"
	"lunasync/internal/domain/record"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Список клиентов",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := common.App(cmd)
		if err != nil {
			return err
		}

		users, err := app.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка клиентов: %w", err)
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(users)
		}
		return printUsers(users)
	},
}

func printUsers(users []record.User) error {
	if len(users) == 0 {
		fmt.Println("Клиенты не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tИМЯ\tТЕЛЕФОН\tEMAIL\tИЗМЕНЕН\t")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s\t\n",
			u.ID, u.Name, u.Phone, u.Email, common.FormatTime(u.UpdatedAt), common.SyncMark(u.Synced))
	}
	return w.Flush()
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "вывод в формате JSON")
}
