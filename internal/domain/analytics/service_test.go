package analytics

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/draft"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Append(ctx context.Context, e *Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func TestService_DraftSaved(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	repo.On("Append", mock.Anything, mock.MatchedBy(func(e *Event) bool {
		return e.Name == EventDraftSaved &&
			e.OwnerID == 7 &&
			e.DraftID == "d-1" &&
			e.Kind == "property" &&
			e.CurrentStep == 3
	})).Return(nil)

	svc.DraftSaved(context.Background(), 7, "d-1", draft.KindProperty, 3)

	repo.AssertExpectations(t)
}

func TestService_DraftSavedSwallowsRepoFailure(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("table locked"))

	// Сбой аналитики не должен ни паниковать, ни как-либо всплывать
	assert.NotPanics(t, func() {
		svc.DraftSaved(context.Background(), 7, "d-1", draft.KindBlog, 0)
	})
}
