package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle. Inside
// Transaction every repository is bound to the same transaction.
type Store struct {
	db *gorm.DB

	Users      UserRepository
	Households HouseholdRepository
	Plans      PlanRepository
	Tasks      TaskTemplateRepository
	Events     EventRepository
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Households: NewHouseholdRepository(db),
		Plans:      NewPlanRepository(db),
		Tasks:      NewTaskTemplateRepository(db),
		Events:     NewEventRepository(db),
	}
}

// Transaction runs fn in a database transaction. The transaction commits when
// fn returns nil and rolls back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
