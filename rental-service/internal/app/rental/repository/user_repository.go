package repository

import (
	"context"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	users *Collection[entity.User]
}

// NewUserRepository создает хранилище пользователей в MongoDB (по умолчанию)
func NewUserRepository(ctx context.Context, db *mongo.Database) (UserRepository, error) {
	users := NewCollection[entity.User](db, "users")

	err := users.EnsureIndexes(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("username_idx").SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &userRepository{users: users}, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.users.Insert(ctx, user); err != nil {
		if FaultOf(err) == FaultDuplicateKey {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := r.users.FindOne(ctx, bson.M{"username": username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
