package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"inmodraft/internal/app/client"
	"inmodraft/internal/domain/draft"
)

var (
	draftKind    string
	draftID      string
	draftTitle   string
	draftStep    int
	draftPayload string
	draftFile    string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Работа с черновиками",
	Long: `Сохранение, загрузка и удаление черновиков мастеров публикации.

Типы черновиков:
- property - объект недвижимости
- land     - земельный участок
- blog     - запись блога`,
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Сохранить черновик",
	Long: `Сохраняет состояние мастера. Запись всегда ложится в локальный кэш;
при доступном сервере — также в базу. Если сервер недоступен, команда все
равно успешна: черновик уйдет на сервер при следующей синхронизации.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		payload, err := readPayload()
		if err != nil {
			return err
		}

		result, err := app.Facade.SaveDraft(cmd.Context(), client.SaveRequest{
			Kind:        draft.Kind(draftKind),
			OwnerID:     app.OwnerID(),
			DraftID:     draftID,
			Title:       draftTitle,
			CurrentStep: draftStep,
			Payload:     payload,
		})
		if err != nil {
			return err
		}

		switch result.Source {
		case client.SourceDatabase:
			color.Green("Черновик %s сохранен на сервере", result.DraftID)
		case client.SourceLocal:
			color.Yellow("Черновик %s сохранен локально, сервер недоступен", result.DraftID)
			fmt.Println("Запись уйдет на сервер при следующей синхронизации.")
		}

		return nil
	},
}

var draftGetCmd = &cobra.Command{
	Use:   "get <draft-id>",
	Short: "Загрузить черновик",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		result, err := app.Facade.LoadDraft(cmd.Context(), draft.Kind(draftKind), app.OwnerID(), args[0])
		if err != nil {
			return err
		}

		if result.Source == client.SourceLocal {
			color.Yellow("Показана локальная копия, сервер недоступен")
		}

		title := result.Title
		if title == "" {
			title = "(без названия)"
		}
		fmt.Printf("Черновик: %s\n", result.DraftID)
		fmt.Printf("Тип:      %s\n", result.Kind)
		fmt.Printf("Название: %s\n", title)
		fmt.Printf("Шаг:      %d\n", result.CurrentStep)
		fmt.Println("Данные:")

		var pretty map[string]any
		if err := json.Unmarshal(result.Payload, &pretty); err == nil {
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(out))
		} else {
			fmt.Println(string(result.Payload))
		}

		return nil
	},
}

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список черновиков",
	Long:  `Показывает активные черновики владельца, последние тронутые первыми.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var kind draft.Kind
		if draftKind != "" {
			kind = draft.Kind(draftKind)
		}

		resp, err := app.Remote.ListDrafts(cmd.Context(), kind)
		if err != nil {
			return fmt.Errorf("список доступен только при подключении к серверу: %w", err)
		}

		if resp.Total == 0 {
			fmt.Println("Черновиков нет.")
			return nil
		}

		for _, item := range resp.Drafts {
			fmt.Printf("%s  [%s, шаг %d]  %s  %s\n",
				item.ID, item.Kind, item.CurrentStep, item.Title,
				item.UpdatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("Всего: %d\n", resp.Total)

		return nil
	},
}

var draftDeleteCmd = &cobra.Command{
	Use:   "delete <draft-id>",
	Short: "Удалить черновик",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if err := app.Facade.DeleteDraft(cmd.Context(), draft.Kind(draftKind), app.OwnerID(), args[0]); err != nil {
			return err
		}

		color.Green("Черновик %s удален", args[0])
		return nil
	},
}

func requireAuth() error {
	if !app.IsAuthenticated() {
		return fmt.Errorf("требуется аутентификация. Выполните: inmodraft login")
	}
	return nil
}

func readPayload() (json.RawMessage, error) {
	if draftPayload != "" && draftFile != "" {
		return nil, fmt.Errorf("флаги --payload и --file взаимоисключающие")
	}

	var raw []byte
	switch {
	case draftPayload != "":
		raw = []byte(draftPayload)
	case draftFile != "":
		data, err := os.ReadFile(draftFile)
		if err != nil {
			return nil, fmt.Errorf("чтение файла данных: %w", err)
		}
		raw = data
	default:
		return nil, fmt.Errorf("нужны данные черновика: --payload или --file")
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("данные черновика должны быть валидным JSON")
	}

	return raw, nil
}

func init() {
	draftCmd.PersistentFlags().StringVarP(&draftKind, "kind", "k", "property", "тип черновика (property, land, blog)")

	draftSaveCmd.Flags().StringVar(&draftID, "id", "", "идентификатор черновика (пусто — новый)")
	draftSaveCmd.Flags().StringVar(&draftTitle, "title", "", "название черновика")
	draftSaveCmd.Flags().IntVar(&draftStep, "step", 0, "номер текущего шага мастера")
	draftSaveCmd.Flags().StringVar(&draftPayload, "payload", "", "данные черновика (JSON)")
	draftSaveCmd.Flags().StringVar(&draftFile, "file", "", "путь к файлу с данными черновика")
}
