package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentaldesk/pkg/logger"
	"rentaldesk/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "rental-service"

// MaxDocumentSize - предельный размер BSON документа в MongoDB
const MaxDocumentSize = 16 * 1024 * 1024

// Коды ошибок сервера MongoDB
const (
	codeDocumentValidationFailure = 121
	codeObjectTooLarge            = 10334
	codeUpdatedDocumentTooLarge   = 17419
	codeUpdatedDocumentTooLarge2  = 17420
)

// FaultKind - закрытый набор причин сбоя хранилища
type FaultKind int

const (
	FaultUnknown FaultKind = iota
	FaultValidation
	FaultDuplicateKey
	FaultDocumentTooLarge
	FaultInvalidID
	FaultConnection
)

func (k FaultKind) String() string {
	switch k {
	case FaultValidation:
		return "validation"
	case FaultDuplicateKey:
		return "duplicate_key"
	case FaultDocumentTooLarge:
		return "document_too_large"
	case FaultInvalidID:
		return "invalid_id"
	case FaultConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// StoreError - классифицированная ошибка операции с коллекцией
type StoreError struct {
	Kind       FaultKind
	Op         string
	Collection string
	Details    []string // Сообщения правил схемы для FaultValidation
	Err        error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Collection, e.Kind)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// FaultOf возвращает вид сбоя или FaultUnknown для неклассифицированных ошибок
func FaultOf(err error) FaultKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return FaultUnknown
}

// IsValidNativeID проверяет, что строка - это 24-символьный hex ObjectID
func IsValidNativeID(id string) bool {
	return primitive.IsValidObjectID(id)
}

type FindOptions struct {
	Sort  bson.D
	Limit int64
}

type UpdateOptions struct {
	// Schema проверяется правилами схемы перед записью (обычно сам patch)
	Schema interface{}
	// ReturnUpdated возвращает документ после обновления, иначе до
	ReturnUpdated bool
}

// Collection - типизированная коллекция MongoDB с проверкой схемы
// и классификацией ошибок драйвера
type Collection[T any] struct {
	coll     *mongo.Collection
	name     string
	validate *validator.Validate
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{
		coll:     db.Collection(name),
		name:     name,
		validate: schema,
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// EnsureIndexes создает индексы коллекции
func (c *Collection[T]) EnsureIndexes(ctx context.Context, models ...mongo.IndexModel) error {
	if _, err := c.coll.Indexes().CreateMany(ctx, models); err != nil {
		return c.fail("create_indexes", metrics.DbOpUpdate, err)
	}
	return nil
}

// Insert проверяет схему и размер документа и вставляет его
func (c *Collection[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	if err := c.check("insert", doc); err != nil {
		return primitive.NilObjectID, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, c.name)
	result, err := c.coll.InsertOne(ctx, doc)
	timer.ObserveDuration()
	if err != nil {
		return primitive.NilObjectID, c.fail("insert", metrics.DbOpInsert, err)
	}

	oid, _ := result.InsertedID.(primitive.ObjectID)
	return oid, nil
}

// FindMany возвращает документы по фильтру. Пустой результат - пустой срез, не nil.
func (c *Collection[T]) FindMany(ctx context.Context, filter interface{}, opts FindOptions) ([]T, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, c.name)
	defer timer.ObserveDuration()

	cursor, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, c.fail("find", metrics.DbOpFind, err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, c.fail("decode", metrics.DbOpFind, err)
	}
	return docs, nil
}

// FindOne возвращает (nil, nil), если документ не найден
func (c *Collection[T]) FindOne(ctx context.Context, filter interface{}) (*T, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, c.name)
	defer timer.ObserveDuration()

	var doc T
	if err := c.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, c.fail("find_one", metrics.DbOpFind, err)
	}
	return &doc, nil
}

// FindByID ищет по _id. Некорректный id - FaultInvalidID, отсутствие - (nil, nil).
func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := c.objectID("find_by_id", id)
	if err != nil {
		return nil, err
	}
	return c.FindOne(ctx, bson.M{"_id": oid})
}

// UpdateByID применяет update к документу и возвращает его.
// Отсутствующий документ - (nil, nil).
func (c *Collection[T]) UpdateByID(ctx context.Context, id string, update interface{}, opts UpdateOptions) (*T, error) {
	oid, err := c.objectID("update", id)
	if err != nil {
		return nil, err
	}
	if opts.Schema != nil {
		if err := c.validateSchema("update", opts.Schema); err != nil {
			return nil, err
		}
	}

	returnDoc := options.Before
	if opts.ReturnUpdated {
		returnDoc = options.After
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, c.name)
	defer timer.ObserveDuration()

	var doc T
	err = c.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(returnDoc)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, c.fail("update", metrics.DbOpUpdate, err)
	}
	return &doc, nil
}

// ReplaceByID сохраняет документ целиком. Возвращает false, если документа уже нет.
func (c *Collection[T]) ReplaceByID(ctx context.Context, id primitive.ObjectID, doc *T) (bool, error) {
	if err := c.check("replace", doc); err != nil {
		return false, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, c.name)
	defer timer.ObserveDuration()

	result, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return false, c.fail("replace", metrics.DbOpUpdate, err)
	}
	return result.MatchedCount > 0, nil
}

// DeleteByID удаляет документ и возвращает удалённый снимок или (nil, nil)
func (c *Collection[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	oid, err := c.objectID("delete", id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, c.name)
	defer timer.ObserveDuration()

	var doc T
	if err := c.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, c.fail("delete", metrics.DbOpDelete, err)
	}
	return &doc, nil
}

func (c *Collection[T]) Count(ctx context.Context, filter interface{}) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, c.name)
	defer timer.ObserveDuration()

	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, c.fail("count", metrics.DbOpFind, err)
	}
	return n, nil
}

// Aggregate выполняет pipeline и декодирует результат в out (указатель на срез)
func (c *Collection[T]) Aggregate(ctx context.Context, pipeline interface{}, out interface{}) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, c.name)
	defer timer.ObserveDuration()

	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return c.fail("aggregate", metrics.DbOpAggregate, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return c.fail("aggregate", metrics.DbOpAggregate, err)
	}
	return nil
}

// check выполняет проверку схемы и размера до обращения к серверу
func (c *Collection[T]) check(op string, doc *T) error {
	if err := c.validateSchema(op, doc); err != nil {
		return err
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return &StoreError{Kind: FaultUnknown, Op: op, Collection: c.name, Err: err}
	}
	if len(raw) > MaxDocumentSize {
		return &StoreError{
			Kind:       FaultDocumentTooLarge,
			Op:         op,
			Collection: c.name,
			Err:        fmt.Errorf("document size %d exceeds %d bytes", len(raw), MaxDocumentSize),
		}
	}
	return nil
}

func (c *Collection[T]) validateSchema(op string, v interface{}) error {
	if c.validate == nil {
		return nil
	}
	if err := c.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &StoreError{
				Kind:       FaultValidation,
				Op:         op,
				Collection: c.name,
				Details:    describeValidationErrors(verrs),
				Err:        err,
			}
		}
		return &StoreError{Kind: FaultUnknown, Op: op, Collection: c.name, Err: err}
	}
	return nil
}

func (c *Collection[T]) objectID(op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &StoreError{Kind: FaultInvalidID, Op: op, Collection: c.name, Err: err}
	}
	return oid, nil
}

// fail классифицирует ошибку драйвера, пишет метрику и лог
func (c *Collection[T]) fail(op string, dbOp metrics.DbOperation, err error) error {
	kind := classify(err)
	metrics.RecordDbError(serviceName, dbOp, kind.String())
	logger.Debug().
		Err(err).
		Str("collection", c.name).
		Str("operation", op).
		Str("fault", kind.String()).
		Msg("Store operation failed")

	return &StoreError{Kind: kind, Op: op, Collection: c.name, Err: err}
}

func classify(err error) FaultKind {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return FaultDuplicateKey
	case hasServerCode(err, codeDocumentValidationFailure):
		return FaultValidation
	case hasServerCode(err, codeObjectTooLarge, codeUpdatedDocumentTooLarge, codeUpdatedDocumentTooLarge2):
		return FaultDocumentTooLarge
	case errors.Is(err, primitive.ErrInvalidHex):
		return FaultInvalidID
	case mongo.IsTimeout(err),
		mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded):
		return FaultConnection
	default:
		return FaultUnknown
	}
}

func hasServerCode(err error, codes ...int) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	for _, code := range codes {
		if se.HasErrorCode(code) {
			return true
		}
	}
	return false
}
