package draft

import (
	"context"
)

// Repository — хранилище черновиков. Все операции, кроме Create, обязаны
// проверять владельца внутри самого запроса (WHERE id AND owner_id), а не
// отдельным чтением: так исключается TOCTOU-окно между проверкой и записью.
type Repository interface {
	Create(ctx context.Context, d *Draft) error
	// Update перезаписывает payload, current_step и title целиком.
	// Возвращает ErrNotFound, если нет активной строки (id, owner_id).
	Update(ctx context.Context, d *Draft) error
	Get(ctx context.Context, ownerID int, id string) (*Draft, error)
	// Discard помечает черновик отброшенным. Идемпотентен: отсутствующая
	// или уже отброшенная строка не является ошибкой.
	Discard(ctx context.Context, ownerID int, id string) error
	// List возвращает активные черновики владельца, отсортированные по
	// updated_at DESC. Порядок значим: первым идет последний тронутый черновик.
	List(ctx context.Context, ownerID int, kind Kind) ([]Draft, error)
}
