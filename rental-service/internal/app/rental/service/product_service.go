package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rentaldesk/pkg/logger"
	"rentaldesk/pkg/metrics"
	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/repository"
	"rentaldesk/rental-service/internal/app/rental/util"
)

// IDKind - как интерпретирован идентификатор товара из запроса
type IDKind int

const (
	IDKindMalformed IDKind = iota
	IDKindNative           // ObjectID (_id)
	IDKindNumeric          // productId
)

// ProductRef - разобранный идентификатор товара
type ProductRef struct {
	Kind    IDKind
	Native  string
	Numeric int
}

// ClassifyProductID определяет, ищем товар по _id или по productId
func ClassifyProductID(raw string) ProductRef {
	raw = strings.TrimSpace(raw)
	if repository.IsValidNativeID(raw) {
		return ProductRef{Kind: IDKindNative, Native: raw}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return ProductRef{Kind: IDKindNumeric, Numeric: n}
	}
	return ProductRef{Kind: IDKindMalformed}
}

// ProductService управляет товарами для аренды
type ProductService struct {
	productRepo repository.ProductRepository
	activities  ActivityRecorder
	publisher   util.MessagePublisher
	reports     SummaryInvalidator
}

func NewProductService(
	productRepo repository.ProductRepository,
	activities ActivityRecorder,
	publisher util.MessagePublisher,
	reports SummaryInvalidator,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		activities:  activities,
		publisher:   publisher,
		reports:     reports,
	}
}

// CreateProduct проверяет обязательные поля, назначает productId
// при необходимости и сохраняет товар
func (s *ProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, newError(ErrValidation, fmt.Sprintf("Missing required fields: %s are required", strings.Join(missing, ", ")), nil)
	}

	product := req.ToProduct()
	if product.ProductID == 0 {
		next, err := s.productRepo.NextProductID(ctx)
		if err != nil {
			return nil, s.storeFailure(err, "creating product")
		}
		product.ProductID = next
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if repository.FaultOf(err) == repository.FaultDuplicateKey {
			return nil, newError(ErrValidation, fmt.Sprintf("Validation error: productId %d already exists", product.ProductID), err)
		}
		return nil, s.storeFailure(err, "creating product")
	}

	metrics.ProductsCreated.Inc()
	s.afterChange(ctx, entity.EventProductCreated, product, "Added product "+product.Name)

	return product, nil
}

// GetAllProducts возвращает все товары, новые первыми
func (s *ProductService) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, s.storeFailure(err, "fetching products")
	}
	return products, nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	return s.findProduct(ctx, id)
}

// UpdateProduct загружает товар, применяет разрешённые поля и сохраняет целиком.
// Загрузка и сохранение не атомарны: параллельные изменения перезаписывают друг друга.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch *entity.ProductPatch) (*entity.Product, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.ApplyTo(product)

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, MsgProductNotFound, err)
		}
		return nil, s.storeFailure(err, "updating product")
	}

	s.afterChange(ctx, entity.EventProductUpdated, product, "Updated product "+product.Name)

	return product, nil
}

// DeleteProduct удаляет товар и возвращает удалённую запись
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.productRepo.Delete(ctx, product.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, MsgProductNotFound, err)
		}
		return nil, s.storeFailure(err, "deleting product")
	}

	s.afterChange(ctx, entity.EventProductDeleted, deleted, "Deleted product "+deleted.Name)

	return deleted, nil
}

// findProduct ищет по _id или productId в зависимости от формы идентификатора
func (s *ProductService) findProduct(ctx context.Context, id string) (*entity.Product, error) {
	var (
		product *entity.Product
		err     error
	)

	ref := ClassifyProductID(id)
	switch ref.Kind {
	case IDKindNative:
		product, err = s.productRepo.GetByID(ctx, ref.Native)
	case IDKindNumeric:
		product, err = s.productRepo.GetByProductID(ctx, ref.Numeric)
	default:
		return nil, newError(ErrInvalidID, MsgInvalidProductID, nil)
	}

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, MsgProductNotFound, err)
		}
		return nil, s.storeFailure(err, "fetching product")
	}
	return product, nil
}

func (s *ProductService) storeFailure(err error, action string) error {
	domainErr := fromStore(err, action)
	if errors.Is(domainErr, ErrInvalidID) {
		return newError(ErrInvalidID, MsgInvalidProductID, err)
	}
	if errors.Is(domainErr, ErrPersistence) {
		logger.Error().Err(err).Str("action", action).Msg("Product store operation failed")
	}
	return domainErr
}

// afterChange - побочные эффекты успешной записи: журнал, событие, сброс кеша отчёта
func (s *ProductService) afterChange(ctx context.Context, eventType string, product *entity.Product, action string) {
	if s.activities != nil {
		s.activities.Record(ctx, action)
	}
	publishEvent(ctx, s.publisher, eventType, product.ID.Hex(), newProductEventPayload(product))
	if s.reports != nil {
		s.reports.InvalidateSummary(ctx)
	}
}
