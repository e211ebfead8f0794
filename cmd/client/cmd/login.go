package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти с токеном дашборда",
	Long: `Сохраняет bearer-токен, выданный админ-дашбордом, и проверяет его
обращением к серверу. Токен хранится в конфигурационной директории клиента.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginToken == "" {
			fmt.Print("Токен: ")
			if _, err := fmt.Scanln(&loginToken); err != nil {
				return fmt.Errorf("чтение токена: %w", err)
			}
		}

		if err := app.Login(cmd.Context(), loginToken); err != nil {
			return err
		}

		color.Green("Вход выполнен (владелец #%d)", app.OwnerID())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Удалить сохраненный токен",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Logout(); err != nil {
			return err
		}

		color.Yellow("Токен удален. Локальные черновики доживут свой срок хранения.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginToken, "token", "t", "", "bearer-токен дашборда")
}
