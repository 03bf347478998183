//go:generate go run go.uber.org/mock/mockgen -source=entry_service.go -destination=../mocks/mock_list_cache.go -package=mocks
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dom "guestbook/internal/domain"
	"guestbook/internal/repo"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

var validate = validator.New()

// ListCache caches the result of List. Implemented by cache.EntryCache.
type ListCache interface {
	GetList(ctx context.Context) ([]dom.Entry, error)
	SetList(ctx context.Context, list []dom.Entry) error
	Invalidate(ctx context.Context) error
}

type entryInput struct {
	Name    string `validate:"required"`
	Message string `validate:"required"`
}

type EntryService struct {
	repo  repo.EntryRepo
	cache ListCache
	sf    singleflight.Group
	log   zerolog.Logger
	now   func() time.Time
}

// NewEntryService creates an EntryService. If c is nil, caching is disabled.
func NewEntryService(r repo.EntryRepo, c ListCache, log zerolog.Logger) *EntryService {
	return &EntryService{repo: r, cache: c, log: log, now: time.Now}
}

func (s *EntryService) List(ctx context.Context) ([]dom.Entry, error) {
	if s.cache == nil {
		return s.list(ctx)
	}
	// The flight serves every concurrent caller; cancelling the first one
	// does not cancel it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do("list", func() (interface{}, error) {
		ctx := shared
		list, err := s.cache.GetList(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("entry cache read failed")
		} else if list != nil {
			return list, nil
		}
		list, err = s.list(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, list); err != nil {
			s.log.Warn().Err(err).Msg("entry cache write failed")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Entry), nil
}

func (s *EntryService) Create(ctx context.Context, name, message string) (dom.Entry, error) {
	in, err := validateInput(name, message)
	if err != nil {
		return dom.Entry{}, err
	}
	e, err := s.repo.Create(ctx, dom.Entry{
		Name:      in.Name,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return dom.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	s.invalidateCache(ctx)
	s.log.Debug().Int64("id", e.ID).Msg("entry created")
	return e, nil
}

func (s *EntryService) Update(ctx context.Context, id int64, name, message string) (dom.Entry, error) {
	in, err := validateInput(name, message)
	if err != nil {
		return dom.Entry{}, err
	}
	e, err := s.repo.Update(ctx, id, in.Name, in.Message)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Entry{}, ErrNotFound
		}
		return dom.Entry{}, fmt.Errorf("update entry %d: %w", id, err)
	}
	s.invalidateCache(ctx)
	return e, nil
}

func (s *EntryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *EntryService) list(ctx context.Context) ([]dom.Entry, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if list == nil {
		list = []dom.Entry{}
	}
	return list, nil
}

func (s *EntryService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("entry cache invalidation failed")
	}
}

// validateInput trims both fields and rejects empty ones.
func validateInput(name, message string) (entryInput, error) {
	in := entryInput{
		Name:    strings.TrimSpace(name),
		Message: strings.TrimSpace(message),
	}
	err := validate.Struct(in)
	if err == nil {
		return in, nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			return strings.ToLower(fe.Field())
		})
		return in, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(fields, ", "))
	}
	return in, fmt.Errorf("%w: %v", ErrValidation, err)
}
