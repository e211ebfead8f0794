package draft

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-list",
		Method:      http.MethodGet,
		Path:        "/api/drafts",
		Summary:     "Список черновиков владельца",
		Description: "Возвращает активные черновики текущего пользователя, последние тронутые первыми.",
		Tags:        []string{"drafts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-create",
		Method:      http.MethodPost,
		Path:        "/api/drafts",
		Summary:     "Создать черновик",
		Description: "Создает черновик мастера. ID может быть выделен клиентом (офлайн-созданный черновик).",
		Tags:        []string{"drafts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-find",
		Method:      http.MethodGet,
		Path:        "/api/drafts/{id}",
		Summary:     "Получить черновик",
		Tags:        []string{"drafts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-update",
		Method:      http.MethodPut,
		Path:        "/api/drafts/{id}",
		Summary:     "Обновить черновик",
		Description: "Перезаписывает payload и current_step целиком (last-write-wins).",
		Tags:        []string{"drafts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-delete",
		Method:      http.MethodDelete,
		Path:        "/api/drafts/{id}",
		Summary:     "Отбросить черновик",
		Description: "Помечает черновик отброшенным. Повторное удаление не является ошибкой.",
		Tags:        []string{"drafts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
