package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"inmodraft/internal/app/client"
	"inmodraft/internal/app/client/config"
	"inmodraft/internal/utils/logger"
)

var (
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "inmodraft",
	Short: "Inmodraft — клиент черновиков мастеров публикации",
	Long: `Inmodraft — клиентское приложение для работы с черновиками мастеров
публикации (объекты недвижимости, земельные участки, записи блога).

Черновики сохраняются локально и синхронизируются с сервером; при потере
сети работа продолжается офлайн, накопленные изменения доигрываются после
восстановления соединения.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(_ *cobra.Command, _ []string) error {
	cfg = config.MustLoad()

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	log = logger.New(cfg.Env)
	app = client.NewApp(cfg, log)

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера Inmodraft")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftGetCmd)
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftDeleteCmd)
	rootCmd.AddCommand(syncCmd)
}
