package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
)

// UserRepository user data access.
type UserRepository interface {
	// UpsertByEmail inserts the user or refreshes its name, and returns the stored row.
	UpsertByEmail(ctx context.Context, email, name string) (*model.User, error)
	// CreateIfNotExists inserts user unless the email is taken. It reports whether a row was written.
	CreateIfNotExists(ctx context.Context, user *model.User) (bool, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a UserRepository.
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) UpsertByEmail(ctx context.Context, email, name string) (*model.User, error) {
	user := model.User{Email: email, Name: name, Role: model.RoleUser}

	onConflict := clause.OnConflict{DoNothing: true}
	if name != "" {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}
	}

	if err := r.db.WithContext(ctx).Clauses(onConflict).Create(&user).Error; err != nil {
		return nil, err
	}
	// the insert id is unreliable after ON DUPLICATE KEY UPDATE; re-read the row
	return r.GetByEmail(ctx, email)
}

func (r *userRepo) CreateIfNotExists(ctx context.Context, user *model.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("name ASC, id ASC").
		Find(&users).Error
	return users, err
}
