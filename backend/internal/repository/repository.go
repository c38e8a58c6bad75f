package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository.
type Repository struct {
	User          UserRepository
	Cutoff        CutoffRepository
	Cluster       ClusterRepository
	Log           LogRepository
	CutoffHistory CutoffHistoryRepository
	Dashboard     DashboardRepository
	Tx            Transactor
}

// Transactor runs fn against a Repository bound to a single transaction.
// Returning an error from fn rolls the transaction back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(repo *Repository) error) error
}

// NewRepository builds the aggregate on top of db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		Cutoff:        NewCutoffRepo(db),
		Cluster:       NewClusterRepo(db),
		Log:           NewLogRepo(db),
		CutoffHistory: NewCutoffHistoryRepo(db),
		Dashboard:     NewDashboardRepo(db),
		Tx:            &gormTransactor{db: db},
	}
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(repo *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
