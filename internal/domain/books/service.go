package books

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/shelfline/server/internal/bus"
	"github.com/shelfline/server/internal/metrics"
)

// Service orchestrates the repository and the change-event queue. Every
// successful create/get/update/delete enqueues exactly one event, after the
// store operation has completed. List emits nothing.
type Service struct {
	repo     Repository
	queue    *bus.Queue
	validate *validator.Validate
}

func NewService(repo Repository, queue *bus.Queue) *Service {
	return &Service{
		repo:     repo,
		queue:    queue,
		validate: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Book, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("validate book: %w", err)
	}

	book, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.publish(bus.Event{Action: bus.ActionCreated, BookID: book.ID, Title: book.Title})
	return book, nil
}

func (s *Service) List(ctx context.Context, page Page) (ListResult, error) {
	return s.repo.List(ctx, page)
}

func (s *Service) Get(ctx context.Context, id int64) (*Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(bus.Event{Action: bus.ActionRead, BookID: book.ID, Title: book.Title})
	return book, nil
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Book, error) {
	book, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.publish(bus.Event{Action: bus.ActionUpdated, BookID: book.ID, Title: book.Title})
	return book, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// The record is gone, so the event carries only the id.
	s.publish(bus.Event{Action: bus.ActionDeleted, BookID: id})
	return nil
}

// publish is fire-and-forget: the queue is unbounded and never reports
// failure to the caller.
func (s *Service) publish(event bus.Event) {
	if s.queue == nil {
		return
	}
	s.queue.Publish(event)
	metrics.BookEventsPublished.WithLabelValues(string(event.Action)).Inc()
}

// ValidationErrors unwraps err into validator field errors, if it came from
// input validation. Handlers map these to unprocessable-entity responses.
func ValidationErrors(err error) (validator.ValidationErrors, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
