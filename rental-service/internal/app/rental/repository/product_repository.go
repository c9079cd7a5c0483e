package repository

import (
	"context"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	products *Collection[entity.Product]
}

// NewProductRepository создает репозиторий товаров.
// Индекс productId уникальный и разреженный: старые документы без productId допустимы.
func NewProductRepository(ctx context.Context, db *mongo.Database) (ProductRepository, error) {
	products := NewCollection[entity.Product](db, "products")

	err := products.EnsureIndexes(ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "productId", Value: 1}},
			Options: options.Index().SetName("product_id_idx").SetUnique(true).SetSparse(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	)
	if err != nil {
		return nil, err
	}

	return &productRepository{products: products}, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	id, err := r.products.Insert(ctx, product)
	if err != nil {
		return err
	}
	product.ID = id
	return nil
}

// List возвращает все товары, новые первыми
func (r *productRepository) List(ctx context.Context) ([]entity.Product, error) {
	return r.products.FindMany(ctx, bson.M{}, FindOptions{
		Sort: bson.D{{Key: "createdAt", Value: -1}},
	})
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := r.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func (r *productRepository) GetByProductID(ctx context.Context, productID int) (*entity.Product, error) {
	product, err := r.products.FindOne(ctx, bson.M{"productId": productID})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Update сохраняет загруженный и изменённый товар целиком
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now().UTC()

	found, err := r.products.ReplaceByID(ctx, product.ID, product)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	product, err := r.products.DeleteByID(ctx, id.Hex())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// NextProductID возвращает max(productId)+1 или 1 для пустой коллекции
func (r *productRepository) NextProductID(ctx context.Context) (int, error) {
	latest, err := r.products.FindMany(ctx, bson.M{"productId": bson.M{"$exists": true}}, FindOptions{
		Sort:  bson.D{{Key: "productId", Value: -1}},
		Limit: 1,
	})
	if err != nil {
		return 0, err
	}
	if len(latest) == 0 {
		return 1, nil
	}
	return latest[0].ProductID + 1, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	return r.products.Count(ctx, bson.M{})
}

func (r *productRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	var rows []groupCount
	if err := r.products.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	return rowsToMap(rows), nil
}

// groupCount - строка результата $group с подсчётом
type groupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func rowsToMap(rows []groupCount) map[string]int64 {
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Count
	}
	return result
}
