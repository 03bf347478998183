package service

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "guestbook/internal/domain"
	"guestbook/internal/mocks"
	"guestbook/internal/repo"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEntryService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockEntryRepo(ctrl)
	svc := NewEntryService(mockRepo, nil, zerolog.Nop())
	ctx := context.Background()

	t.Run("should create a trimmed entry", func(t *testing.T) {
		req := require.New(t)
		before := time.Now().UTC()

		mockRepo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e dom.Entry) (dom.Entry, error) {
				e.ID = 1
				return e, nil
			}).
			Times(1)

		e, err := svc.Create(ctx, "  Ada ", "Hello\n")

		req.NoError(err)
		req.Equal(int64(1), e.ID)
		req.Equal("Ada", e.Name)
		req.Equal("Hello", e.Message)
		req.False(e.CreatedAt.Before(before))
	})

	t.Run("should reject an empty message without touching the store", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Create(ctx, "Ada", "   ")

		req.ErrorIs(err, ErrValidation)
		req.Contains(err.Error(), "message")
	})

	t.Run("should report both missing fields", func(t *testing.T) {
		req := require.New(t)

		_, err := svc.Create(ctx, "", "")

		req.ErrorIs(err, ErrValidation)
		req.Contains(err.Error(), "name, message")
	})

	t.Run("should wrap store failures", func(t *testing.T) {
		req := require.New(t)
		boom := errors.New("connection reset")

		mockRepo.EXPECT().Create(ctx, gomock.Any()).Return(dom.Entry{}, boom)

		_, err := svc.Create(ctx, "Ada", "Hello")

		req.ErrorIs(err, boom)
		req.NotErrorIs(err, ErrValidation)
	})
}

func TestEntryService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockEntryRepo(ctrl)
	svc := NewEntryService(mockRepo, nil, zerolog.Nop())
	ctx := context.Background()

	t.Run("should update name and message", func(t *testing.T) {
		req := require.New(t)
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		mockRepo.EXPECT().
			Update(ctx, int64(7), "Ada", "Edited").
			Return(dom.Entry{ID: 7, Name: "Ada", Message: "Edited", CreatedAt: created}, nil)

		e, err := svc.Update(ctx, 7, "Ada", " Edited ")

		req.NoError(err)
		req.Equal("Edited", e.Message)
		req.Equal(created, e.CreatedAt)
	})

	t.Run("should map unknown id to ErrNotFound", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			Update(ctx, int64(999), "x", "y").
			Return(dom.Entry{}, repo.ErrNotFound)

		_, err := svc.Update(ctx, 999, "x", "y")

		req.ErrorIs(err, ErrNotFound)
	})

	t.Run("should reject empty fields", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Update(ctx, 7, "", "y")

		req.ErrorIs(err, ErrValidation)
	})
}

func TestEntryService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockEntryRepo(ctrl)
	svc := NewEntryService(mockRepo, nil, zerolog.Nop())
	ctx := context.Background()

	req := require.New(t)
	gomock.InOrder(
		mockRepo.EXPECT().Delete(ctx, int64(3)).Return(nil),
		mockRepo.EXPECT().Delete(ctx, int64(3)).Return(repo.ErrNotFound),
	)

	req.NoError(svc.Delete(ctx, 3))
	req.ErrorIs(svc.Delete(ctx, 3), ErrNotFound)
}

func TestEntryService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("should return an empty slice for an empty store", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockEntryRepo(ctrl)
		svc := NewEntryService(mockRepo, nil, zerolog.Nop())

		mockRepo.EXPECT().List(ctx).Return(nil, nil)

		list, err := svc.List(ctx)

		req.NoError(err)
		req.NotNil(list)
		req.Empty(list)
	})

	t.Run("should serve from cache on a hit", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockEntryRepo(ctrl)
		mockCache := mocks.NewMockListCache(ctrl)
		svc := NewEntryService(mockRepo, mockCache, zerolog.Nop())
		cached := []dom.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}

		mockCache.EXPECT().GetList(gomock.Any()).Return(cached, nil)
		mockRepo.EXPECT().List(gomock.Any()).Times(0)

		list, err := svc.List(ctx)

		req.NoError(err)
		req.Equal(cached, list)
	})

	t.Run("should fill the cache on a miss", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockEntryRepo(ctrl)
		mockCache := mocks.NewMockListCache(ctrl)
		svc := NewEntryService(mockRepo, mockCache, zerolog.Nop())
		stored := []dom.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}

		mockCache.EXPECT().GetList(gomock.Any()).Return(nil, nil)
		mockRepo.EXPECT().List(gomock.Any()).Return(stored, nil)
		mockCache.EXPECT().SetList(gomock.Any(), stored).Return(nil)

		list, err := svc.List(ctx)

		req.NoError(err)
		req.Equal(stored, list)
	})

	t.Run("should fall back to the store when the cache fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockEntryRepo(ctrl)
		mockCache := mocks.NewMockListCache(ctrl)
		svc := NewEntryService(mockRepo, mockCache, zerolog.Nop())
		stored := []dom.Entry{{ID: 2, Name: "Grace", Message: "Hi"}}

		mockCache.EXPECT().GetList(gomock.Any()).Return(nil, errors.New("redis down"))
		mockRepo.EXPECT().List(gomock.Any()).Return(stored, nil)
		mockCache.EXPECT().SetList(gomock.Any(), stored).Return(errors.New("redis down"))

		list, err := svc.List(ctx)

		req.NoError(err)
		req.Equal(stored, list)
	})

	t.Run("should invalidate the cache after writes", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockEntryRepo(ctrl)
		mockCache := mocks.NewMockListCache(ctrl)
		svc := NewEntryService(mockRepo, mockCache, zerolog.Nop())

		mockRepo.EXPECT().Create(ctx, gomock.Any()).Return(dom.Entry{ID: 1, Name: "Ada", Message: "Hello"}, nil)
		mockRepo.EXPECT().Update(ctx, int64(1), "Ada", "Bye").Return(dom.Entry{ID: 1, Name: "Ada", Message: "Bye"}, nil)
		mockRepo.EXPECT().Delete(ctx, int64(1)).Return(nil)
		mockCache.EXPECT().Invalidate(ctx).Return(nil).Times(3)

		_, err := svc.Create(ctx, "Ada", "Hello")
		req.NoError(err)
		_, err = svc.Update(ctx, 1, "Ada", "Bye")
		req.NoError(err)
		req.NoError(svc.Delete(ctx, 1))
	})

	t.Run("should not fail a shared list when the caller is gone", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockEntryRepo(ctrl)
		mockCache := mocks.NewMockListCache(ctrl)
		svc := NewEntryService(mockRepo, mockCache, zerolog.Nop())
		stored := []dom.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}

		gone, cancel := context.WithCancel(ctx)
		cancel()

		live := func(c context.Context) error { return c.Err() }
		mockCache.EXPECT().GetList(gomock.Any()).DoAndReturn(func(c context.Context) ([]dom.Entry, error) {
			return nil, live(c)
		})
		mockRepo.EXPECT().List(gomock.Any()).DoAndReturn(func(c context.Context) ([]dom.Entry, error) {
			if err := live(c); err != nil {
				return nil, err
			}
			return stored, nil
		})
		mockCache.EXPECT().SetList(gomock.Any(), stored).DoAndReturn(func(c context.Context, _ []dom.Entry) error {
			return live(c)
		})

		list, err := svc.List(gone)

		req.NoError(err)
		req.Equal(stored, list)
	})
}
