package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncStatus bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация офлайн-черновиков",
	Long: `Отправляет на сервер черновики, накопившиеся за время работы офлайн.
Повторный запуск безопасен: уже перенесенные записи пропускаются.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if syncStatus {
			return showSyncStatus()
		}

		fmt.Println("Синхронизация...")

		result, err := app.Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("синхронизация: %w", err)
		}

		if result.Attempted == 0 {
			color.Green("Все черновики уже на сервере")
			return nil
		}

		color.Green("Отправлено: %d из %d", result.Synced, result.Attempted)
		fmt.Printf("Время выполнения: %v\n", result.Duration().Round(time.Millisecond))

		if len(result.Errors) > 0 {
			color.Red("Не удалось отправить: %d", len(result.Errors))
			for _, syncErr := range result.Errors {
				fmt.Printf("  • %s (%s): %s\n", syncErr.DraftID, syncErr.Operation, syncErr.Error)
			}
			fmt.Println("Оставшиеся записи будут повторены при следующей синхронизации.")
		}

		return nil
	},
}

func showSyncStatus() error {
	pending := app.PendingCount()
	if pending == 0 {
		color.Green("Несинхронизированных черновиков нет")
	} else {
		color.Yellow("Ожидают отправки: %d", pending)
	}

	if last := app.LastSync(); !last.IsZero() {
		fmt.Printf("Последняя синхронизация: %s\n", last.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Синхронизация еще не выполнялась.")
	}

	return nil
}

func init() {
	syncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
}
