package appointment

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lunasync/cmd/client/cmd/common"
	"lunasync/internal/domain/record"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Список записей на прием",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := common.App(cmd)
		if err != nil {
			return err
		}

		apts, err := app.ListAppointments(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка записей: %w", err)
		}
		sort.SliceStable(apts, func(i, j int) bool { return apts[i].StartsAt < apts[j].StartsAt })

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(apts)
		}
		return printAppointments(apts)
	},
}

func statusLabel(s record.AppointmentStatus) string {
	switch s {
	case record.StatusDone:
		return color.GreenString("выполнена")
	case record.StatusCancelled:
		return color.RedString("отменена")
	default:
		return color.CyanString("запланирована")
	}
}

func printAppointments(apts []record.Appointment) error {
	if len(apts) == 0 {
		fmt.Println("Записи не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tНАЧАЛО\tМИН\tУСЛУГА\tКЛИЕНТ\tСТАТУС\t")
	for _, a := range apts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s %s\t\n",
			a.ID, common.FormatTime(a.StartsAt), a.DurationMinutes, a.Title, a.UserID,
			statusLabel(a.Status), common.SyncMark(a.Synced))
	}
	return w.Flush()
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "вывод в формате JSON")
}
