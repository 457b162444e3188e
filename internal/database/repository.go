package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// EntityMapper defines the interface for mapping between domain and database model types.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// Repository provides generic append-only persistence for database entities
// whose insertion order is their primary key order.
type Repository[D any, E any] struct {
	db     Database
	mapper EntityMapper[D, E]
	label  string
}

// NewRepository creates a new Repository.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label string) Repository[D, E] {
	return Repository[D, E]{
		db:     db,
		mapper: mapper,
		label:  label,
	}
}

// All retrieves every entity in insertion order.
func (r Repository[D, E]) All(ctx context.Context) ([]D, error) {
	var entities []E
	result := r.DB(ctx).Model(new(E)).Order("id ASC").Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, result.Error)
	}

	domains := make([]D, len(entities))
	for i, entity := range entities {
		domains[i] = r.mapper.ToDomain(entity)
	}
	return domains, nil
}

// CreateAll inserts domains in order using db, which may be a transaction.
func (r Repository[D, E]) CreateAll(db *gorm.DB, domains ...D) error {
	if len(domains) == 0 {
		return nil
	}
	models := make([]E, len(domains))
	for i, d := range domains {
		models[i] = r.mapper.ToModel(d)
	}
	if err := db.Create(&models).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.label, err)
	}
	return nil
}

// DeleteAll removes every entity using db, which may be a transaction.
func (r Repository[D, E]) DeleteAll(db *gorm.DB) error {
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(E)).Error; err != nil {
		return fmt.Errorf("delete %s: %w", r.label, err)
	}
	return nil
}

// DB returns a GORM session for the repository's database.
func (r Repository[D, E]) DB(ctx context.Context) *gorm.DB {
	return r.db.Session(ctx)
}
