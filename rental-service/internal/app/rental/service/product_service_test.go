package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/repository"
	"rentaldesk/rental-service/internal/app/rental/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type productServiceMocks struct {
	repo       *mocks.MockProductRepository
	activities *mocks.MockActivityRecorder
	publisher  *mocks.MockMessagePublisher
	reports    *mocks.MockSummaryInvalidator
}

func newProductServiceWithMocks() (*ProductService, *productServiceMocks) {
	m := &productServiceMocks{
		repo:       new(mocks.MockProductRepository),
		activities: new(mocks.MockActivityRecorder),
		publisher:  &mocks.MockMessagePublisher{Messages: make([][]byte, 0)},
		reports:    new(mocks.MockSummaryInvalidator),
	}
	m.activities.On("Record", mock.Anything, mock.Anything).Return()
	m.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.reports.On("InvalidateSummary", mock.Anything).Return()

	return NewProductService(m.repo, m.activities, m.publisher, m.reports), m
}

func sampleProduct() *entity.Product {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &entity.Product{
		ID:          primitive.NewObjectID(),
		ProductID:   3,
		Name:        "Camera",
		Description: "Mirrorless camera",
		Category:    "photo",
		Price:       25,
		Images:      []string{"data:image/png;base64,AAAA"},
		Quantity:    2,
		Status:      entity.ProductStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestClassifyProductID(t *testing.T) {
	native := primitive.NewObjectID().Hex()

	tests := []struct {
		raw  string
		want ProductRef
	}{
		{raw: native, want: ProductRef{Kind: IDKindNative, Native: native}},
		{raw: "42", want: ProductRef{Kind: IDKindNumeric, Numeric: 42}},
		{raw: " 7 ", want: ProductRef{Kind: IDKindNumeric, Numeric: 7}},
		{raw: "abc", want: ProductRef{Kind: IDKindMalformed}},
		{raw: "", want: ProductRef{Kind: IDKindMalformed}},
		{raw: "12.5", want: ProductRef{Kind: IDKindMalformed}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyProductID(tt.raw))
		})
	}
}

func TestCreateProduct_MissingFields(t *testing.T) {
	svc, m := newProductServiceWithMocks()

	result, err := svc.CreateProduct(context.Background(), &entity.CreateProductRequest{Name: "Camera", Category: "  "})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Missing required fields: description, category are required", err.Error())
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_AssignsProductIDAndDefaults(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := WithActor(context.Background(), "alice")
	req := &entity.CreateProductRequest{
		Name:        "Camera",
		Description: "Mirrorless camera",
		Category:    "photo",
		Price:       25,
		Images:      []string{"data:image/png;base64,AAAA"},
	}

	m.repo.On("NextProductID", ctx).Return(7, nil)
	m.repo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil).Run(func(args mock.Arguments) {
		product := args.Get(1).(*entity.Product)
		product.ID = primitive.NewObjectID()
	})

	result, err := svc.CreateProduct(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, 7, result.ProductID)
	assert.Equal(t, entity.ProductStatusAvailable, result.Status)
	assert.False(t, result.ID.IsZero())
	m.activities.AssertCalled(t, "Record", ctx, "Added product Camera")
	m.reports.AssertCalled(t, "InvalidateSummary", ctx)

	require.Len(t, m.publisher.Messages, 1)
	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(m.publisher.Messages[0], &event))
	assert.Equal(t, entity.EventProductCreated, event["event_type"])
	assert.Equal(t, "alice", event["actor"])
	assert.NotContains(t, event["payload"], "images")
}

func TestCreateProduct_KeepsExplicitProductID(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()

	m.repo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)

	result, err := svc.CreateProduct(ctx, &entity.CreateProductRequest{
		ProductID: 11, Name: "Tent", Description: "4 person", Category: "camping",
	})

	require.NoError(t, err)
	assert.Equal(t, 11, result.ProductID)
	m.repo.AssertNotCalled(t, "NextProductID", mock.Anything)
}

func TestCreateProduct_StoreFaults(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{
			name: "schema rule",
			err: &repository.StoreError{
				Kind:    repository.FaultValidation,
				Details: []string{"price must be greater than or equal to 0", "quantity must be greater than or equal to 0"},
			},
			kind:    ErrValidation,
			message: "Validation error: price must be greater than or equal to 0, quantity must be greater than or equal to 0",
		},
		{
			name:    "document too large",
			err:     &repository.StoreError{Kind: repository.FaultDocumentTooLarge},
			kind:    ErrPayloadTooLarge,
			message: MsgPayloadTooLarge,
		},
		{
			name:    "duplicate productId",
			err:     &repository.StoreError{Kind: repository.FaultDuplicateKey},
			kind:    ErrValidation,
			message: "Validation error: productId 11 already exists",
		},
		{
			name:    "connection",
			err:     &repository.StoreError{Kind: repository.FaultConnection, Err: mongo.ErrClientDisconnected},
			kind:    ErrPersistence,
			message: "Error creating product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newProductServiceWithMocks()
			ctx := context.Background()
			m.repo.On("Create", ctx, mock.Anything).Return(tt.err)

			result, err := svc.CreateProduct(ctx, &entity.CreateProductRequest{
				ProductID: 11, Name: "Tent", Description: "4 person", Category: "camping",
			})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, err.Error())
			m.activities.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		})
	}
}

func TestGetAllProducts(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	products := []entity.Product{*sampleProduct(), *sampleProduct()}
	m.repo.On("List", ctx).Return(products, nil)

	result, err := svc.GetAllProducts(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestGetProductByID_Native(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	product := sampleProduct()
	m.repo.On("GetByID", ctx, product.ID.Hex()).Return(product, nil)

	result, err := svc.GetProductByID(ctx, product.ID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, product, result)
	m.repo.AssertNotCalled(t, "GetByProductID", mock.Anything, mock.Anything)
}

func TestGetProductByID_Numeric(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	product := sampleProduct()
	m.repo.On("GetByProductID", ctx, 3).Return(product, nil)

	result, err := svc.GetProductByID(ctx, "3")

	assert.NoError(t, err)
	assert.Equal(t, product.ID, result.ID)
}

func TestGetProductByID_Malformed(t *testing.T) {
	svc, m := newProductServiceWithMocks()

	result, err := svc.GetProductByID(context.Background(), "camera-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Equal(t, MsgInvalidProductID, err.Error())
	m.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProductByID_NotFound(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	m.repo.On("GetByProductID", ctx, 999).Return(nil, repository.ErrNotFound)

	result, err := svc.GetProductByID(ctx, "999")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, MsgProductNotFound, err.Error())
}

func TestUpdateProduct_AppliesAllowListedFields(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	product := sampleProduct()
	originalID := product.ID
	originalCreated := product.CreatedAt
	m.repo.On("GetByProductID", ctx, 3).Return(product, nil)

	var saved *entity.Product
	m.repo.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*entity.Product)
	})

	name := "Camera X"
	status := entity.ProductStatusRented
	result, err := svc.UpdateProduct(ctx, "3", &entity.ProductPatch{Name: &name, Status: &status})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Camera X", result.Name)
	assert.Equal(t, entity.ProductStatusRented, result.Status)
	assert.Equal(t, "Mirrorless camera", result.Description)
	assert.Equal(t, originalID, saved.ID)
	assert.Equal(t, 3, saved.ProductID)
	assert.Equal(t, originalCreated, saved.CreatedAt)
	m.activities.AssertCalled(t, "Record", ctx, "Updated product Camera X")
}

func TestUpdateProduct_SchemaViolation(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	product := sampleProduct()
	m.repo.On("GetByID", ctx, product.ID.Hex()).Return(product, nil)
	m.repo.On("Update", ctx, mock.Anything).Return(&repository.StoreError{
		Kind:    repository.FaultValidation,
		Details: []string{"name is required"},
	})

	empty := ""
	_, err := svc.UpdateProduct(ctx, product.ID.Hex(), &entity.ProductPatch{Name: &empty})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Validation error: name is required", err.Error())
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()
	m.repo.On("GetByID", ctx, id).Return(nil, repository.ErrNotFound)

	_, err := svc.UpdateProduct(ctx, id, &entity.ProductPatch{})

	assert.ErrorIs(t, err, ErrNotFound)
	m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteProduct_ReturnsSnapshot(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	product := sampleProduct()
	m.repo.On("GetByProductID", ctx, 3).Return(product, nil)
	m.repo.On("Delete", ctx, product.ID).Return(product, nil)

	result, err := svc.DeleteProduct(ctx, "3")

	require.NoError(t, err)
	assert.Equal(t, product.ID, result.ID)
	m.activities.AssertCalled(t, "Record", ctx, "Deleted product Camera")
	m.reports.AssertCalled(t, "InvalidateSummary", ctx)
}

func TestDeleteProduct_RemovedConcurrently(t *testing.T) {
	svc, m := newProductServiceWithMocks()
	ctx := context.Background()
	product := sampleProduct()
	m.repo.On("GetByID", ctx, product.ID.Hex()).Return(product, nil)
	m.repo.On("Delete", ctx, product.ID).Return(nil, repository.ErrNotFound)

	_, err := svc.DeleteProduct(ctx, product.ID.Hex())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProduct_PublishFailureIgnored(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	svc := NewProductService(repo, nil, publisher, nil)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka unavailable"))

	result, err := svc.CreateProduct(ctx, &entity.CreateProductRequest{
		ProductID: 1, Name: "Tent", Description: "4 person", Category: "camping",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
}
