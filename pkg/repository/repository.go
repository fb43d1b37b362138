// Package repository provides a small generic gorm-backed store used by the
// domain services for routine record access.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository exposes typed persistence operations over a single model.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	CreateInBatches(ctx context.Context, records []T, batchSize int) error
	FindOne(ctx context.Context, conds ...any) (*T, error)
	Find(ctx context.Context, conds ...any) ([]T, error)
	Count(ctx context.Context, conds ...any) (int64, error)
	Save(ctx context.Context, record *T) error
	Delete(ctx context.Context, conds ...any) error
	WithTx(tx *gorm.DB) Repository[T]
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository bound to the given connection handle.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) CreateInBatches(ctx context.Context, records []T, batchSize int) error {
	if len(records) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return s.db.WithContext(ctx).CreateInBatches(records, batchSize).Error
}

// FindOne returns (nil, nil) when no record matches.
func (s *store[T]) FindOne(ctx context.Context, conds ...any) (*T, error) {
	var record T
	err := s.db.WithContext(ctx).First(&record, conds...).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (s *store[T]) Find(ctx context.Context, conds ...any) ([]T, error) {
	var records []T
	if err := s.db.WithContext(ctx).Find(&records, conds...).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *store[T]) Count(ctx context.Context, conds ...any) (int64, error) {
	var model T
	var count int64
	query := s.db.WithContext(ctx).Model(&model)
	if len(conds) > 0 {
		query = query.Where(conds[0], conds[1:]...)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *store[T]) Save(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Save(record).Error
}

func (s *store[T]) Delete(ctx context.Context, conds ...any) error {
	var model T
	return s.db.WithContext(ctx).Delete(&model, conds...).Error
}

// WithTx returns a Repository that runs inside an existing transaction.
func (s *store[T]) WithTx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx}
}
