package book

import (
	"context"
	stderrors "errors"
	"net/url"

	"go.uber.org/zap"

	"bookstore-api/internal/config"
	domainBook "bookstore-api/internal/domain/book"
	"bookstore-api/internal/logger"
	"bookstore-api/internal/metrics"
	"bookstore-api/internal/query"
	appErrors "bookstore-api/pkg/errors"
)

var ErrBookNotFound = appErrors.NotFound("No book found with that ID")

// Notifier is told about every successful catalog write.
type Notifier interface {
	BookChanged(ctx context.Context, event string, b *domainBook.Book)
}

// Service implements catalog use cases
type Service struct {
	bookRepo domainBook.Repository
	notifier Notifier
	config   *config.Config
}

// NewService creates a new catalog service
func NewService(bookRepo domainBook.Repository, notifier Notifier, cfg *config.Config) *Service {
	return &Service{
		bookRepo: bookRepo,
		notifier: notifier,
		config:   cfg,
	}
}

func (s *Service) List(ctx context.Context, params url.Values) ([]query.Document, error) {
	spec, err := query.Build(query.All(), params,
		query.WithSchema(domainBook.QuerySchema),
		query.Strict(s.config.Query.StrictFilters),
	)
	if err != nil {
		return nil, err
	}
	return s.bookRepo.Find(ctx, spec)
}

func (s *Service) Create(ctx context.Context, in *BookInput) (*domainBook.Book, error) {
	b := &domainBook.Book{}
	in.ApplyTo(b)

	if err := s.bookRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.changed(ctx, domainBook.EventCreated, b)
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domainBook.Book, error) {
	b, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return b, nil
}

// Update merges in onto the stored book and revalidates the result.
func (s *Service) Update(ctx context.Context, id string, in *BookInput) (*domainBook.Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.ApplyTo(b)
	if err := s.bookRepo.Save(ctx, b); err != nil {
		return nil, mapNotFound(err)
	}

	s.changed(ctx, domainBook.EventUpdated, b)
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}

	s.changed(ctx, domainBook.EventDeleted, b)
	return nil
}

func (s *Service) changed(ctx context.Context, event string, b *domainBook.Book) {
	metrics.RecordCatalogWrite(event)
	logger.FromContext(ctx).Info("Catalog updated",
		zap.String("book_id", b.HexID()),
		zap.String("name", b.Name),
		zap.String("event", event),
	)
	s.notifier.BookChanged(ctx, event, b)
}

func mapNotFound(err error) error {
	if stderrors.Is(err, domainBook.ErrBookNotFound) {
		return ErrBookNotFound
	}
	return err
}
