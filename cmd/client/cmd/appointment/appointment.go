package appointment

import (
	"github.com/spf13/cobra"
)

// AppointmentCmd - родительская команда для работы с записями на прием
var AppointmentCmd = &cobra.Command{
	Use:     "appointment",
	Aliases: []string{"apt", "appointments"},
	Short:   "Управление записями на прием",
	Long:    `Добавление, просмотр и изменение записей на прием. Все изменения сохраняются локально.`,
}

// fields значения флагов записи; у add и edit свои экземпляры
type fields struct {
	userID   string
	title    string
	startsAt string
	duration int
	status   string
	notes    string
}

func (f *fields) bind(cmd *cobra.Command, defaultDuration int) {
	cmd.Flags().StringVar(&f.userID, "user", "", "идентификатор клиента")
	cmd.Flags().StringVar(&f.title, "title", "", "название услуги")
	cmd.Flags().StringVar(&f.startsAt, "at", "", "дата и время начала (2006-01-02 15:04)")
	cmd.Flags().IntVar(&f.duration, "duration", defaultDuration, "длительность в минутах")
	cmd.Flags().StringVar(&f.status, "status", "", "статус: scheduled, done, cancelled")
	cmd.Flags().StringVar(&f.notes, "notes", "", "заметки")
}

func init() {
	AppointmentCmd.AddCommand(addCmd, listCmd, editCmd)
}
