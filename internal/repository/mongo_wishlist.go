package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltkart/storefront/internal/domain"
)

type mongoWishlistRepository struct {
	collection *mongo.Collection
}

func NewMongoWishlistRepository(db *mongo.Database) WishlistRepository {
	return &mongoWishlistRepository{
		collection: db.Collection("wishlists"),
	}
}

func (m *mongoWishlistRepository) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var wl domain.Wishlist

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&wl)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return &wl, nil
}

func (m *mongoWishlistRepository) UpsertWishlist(ctx context.Context, wl *domain.Wishlist) error {
	now := time.Now()
	if wl.CreatedAt.IsZero() {
		wl.CreatedAt = now
	}
	wl.UpdatedAt = now

	filter := bson.M{"user_id": wl.UserID}
	update := bson.M{"$set": wl}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert wishlist: %w", err)
	}

	return nil
}

func (m *mongoWishlistRepository) DeleteWishlist(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrWishlistNotFound
	}

	return nil
}

func CreateWishlistIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := db.Collection("wishlists").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create wishlist indexes: %w", err)
	}

	return nil
}
