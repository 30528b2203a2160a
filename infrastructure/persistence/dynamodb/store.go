package dynamodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookcrawl-backend/domain/bookshop"
	apperrors "bookcrawl-backend/pkg/errors"
)

// MetricsRecorder receives per-operation timing. Optional; a nil recorder
// disables metrics.
type MetricsRecorder interface {
	RecordOperation(ctx context.Context, operation string, duration time.Duration, err error)
}

// Store is the transactional boundary for bookshop records: a single-table
// DynamoDB mapping with point lookups, index queries, and a scan fallback
// for substring search. Every write is a single-item operation; there is no
// cross-record transaction and no version check on updates (concurrent
// patches race, last writer wins).
type Store struct {
	client        API
	tableName     string
	approvalIndex string
	categoryIndex string
	logger        *zap.Logger
	metrics       MetricsRecorder

	now   func() time.Time
	newID func() string
}

// NewStore creates a bookshop record store.
func NewStore(client API, tableName, approvalIndex, categoryIndex string, logger *zap.Logger) *Store {
	return &Store{
		client:        client,
		tableName:     tableName,
		approvalIndex: approvalIndex,
		categoryIndex: categoryIndex,
		logger:        logger,
		now:           time.Now,
		newID:         newRecordID,
	}
}

// SetMetrics attaches an operation metrics recorder.
func (s *Store) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// newRecordID generates a lexicographically sortable record id. UUIDv7 is
// time-ordered, matching the creation-ordered ids of the existing data set.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) nowString() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Store) record(ctx context.Context, op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(ctx, op, time.Since(start), err)
	}
}

// CreateInput carries the caller-supplied portion of a new record. The store
// assigns id, moderation state, and timestamps itself.
type CreateInput struct {
	Name        string
	Description string
	Address     string
	City        string
	State       string
	ZipCode     string
	Latitude    float64
	Longitude   float64

	Hours      []bookshop.OperatingHours
	Events     []bookshop.Event
	Categories []string

	Website   string
	Instagram string
	Facebook  string
	Twitter   string
}

// Create persists a new record: fresh id, approved="false", deleted="false",
// createdAt==updatedAt, all shadow fields derived. Single-item put; no
// partial state is ever visible.
func (s *Store) Create(ctx context.Context, input CreateInput) (b *bookshop.Bookshop, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "create", start, err) }()

	now := s.nowString()
	b = &bookshop.Bookshop{
		ID:          s.newID(),
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		City:        input.City,
		State:       input.State,
		ZipCode:     input.ZipCode,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Hours:       input.Hours,
		Events:      input.Events,
		Categories:  input.Categories,
		Website:     input.Website,
		Instagram:   input.Instagram,
		Facebook:    input.Facebook,
		Twitter:     input.Twitter,
		Approved:    false,
		Deleted:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.ApplyLowerFields()

	av, err := toItem(b)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal record").WithCause(err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build condition").WithCause(err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		s.logError("create", err, zap.String("bookshopID", b.ID))
		return nil, apperrors.NewDatabaseError("create", err)
	}

	s.logger.Info("Bookshop created",
		zap.String("bookshopID", b.ID),
		zap.String("name", b.Name),
	)
	return b, nil
}

// Get performs a point lookup. Soft-deleted records are NotFound unless
// includeDeleted is set.
func (s *Store) Get(ctx context.Context, id string, includeDeleted bool) (b *bookshop.Bookshop, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "get", start, err) }()

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       KeyAttributes(id),
	})
	if err != nil {
		s.logError("get", err, zap.String("bookshopID", id))
		return nil, apperrors.NewDatabaseError("get", err)
	}
	if len(result.Item) == 0 {
		return nil, apperrors.NewNotFoundError("bookshop")
	}

	b, err = fromItem(result.Item)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to parse record").WithCause(err)
	}
	if b.Deleted && !includeDeleted {
		return nil, apperrors.NewNotFoundError("bookshop")
	}
	return b, nil
}

// ListFilter selects records. Category routes through the CategoryIndex,
// Approved through the ApprovalIndex; with neither set the store falls back
// to a full scan. Query is a case-insensitive substring match over the
// shadow fields, applied as a filter, never an index lookup.
type ListFilter struct {
	Approved       *bool
	Category       string
	Query          string
	IncludeDeleted bool
}

// List returns matching records sorted lexicographically by nameLower.
func (s *Store) List(ctx context.Context, filter ListFilter) (records []*bookshop.Bookshop, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "list", start, err) }()

	var conds []expression.ConditionBuilder

	if !filter.IncludeDeleted {
		conds = append(conds, expression.Name("deleted").AttributeNotExists().
			Or(expression.Name("deleted").Equal(expression.Value("false"))))
	}
	if q := bookshop.Lower(filter.Query); q != "" {
		conds = append(conds, expression.Name("nameLower").Contains(q).
			Or(expression.Name("descriptionLower").Contains(q)).
			Or(expression.Name("cityLower").Contains(q)).
			Or(expression.Name("categoriesLower").Contains(q)))
	}

	var items []map[string]types.AttributeValue
	switch {
	case filter.Category != "":
		if filter.Approved != nil {
			conds = append(conds, expression.Name("approved").Equal(expression.Value(boolString(*filter.Approved))))
		}
		key := expression.Key("GSI2PK").Equal(expression.Value(CategoryKey(filter.Category)))
		items, err = s.queryAll(ctx, s.categoryIndex, key, conds)

	case filter.Approved != nil:
		key := expression.Key("GSI1PK").Equal(expression.Value(ApprovalKey(*filter.Approved)))
		items, err = s.queryAll(ctx, s.approvalIndex, key, conds)

	default:
		items, err = s.scanAll(ctx, conds)
	}
	if err != nil {
		s.logError("list", err)
		return nil, apperrors.NewDatabaseError("list", err)
	}

	records = make([]*bookshop.Bookshop, 0, len(items))
	for _, item := range items {
		b, perr := fromItem(item)
		if perr != nil {
			s.logger.Warn("Skipping unparseable bookshop item", zap.Error(perr))
			continue
		}
		records = append(records, b)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].NameLower < records[j].NameLower
	})
	return records, nil
}

// Patch applies a sparse update atomically and returns the post-update
// record. NotFound when no record with that id exists; the payload is never
// turned into a new record.
func (s *Store) Patch(ctx context.Context, id string, updates map[string]interface{}) (b *bookshop.Bookshop, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "patch", start, err) }()

	op, err := BuildUpdate(id, updates, s.nowString())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Applying bookshop update",
		zap.String("bookshopID", id),
		zap.String("updateExpression", aws.ToString(op.Expr.Update())),
		zap.Int("stagedFields", len(op.Staged)),
	)

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       op.Key,
		UpdateExpression:          op.Expr.Update(),
		ConditionExpression:       op.Expr.Condition(),
		ExpressionAttributeNames:  op.Expr.Names(),
		ExpressionAttributeValues: op.Expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, apperrors.NewNotFoundError("bookshop")
		}
		s.logError("patch", err, zap.String("bookshopID", id))
		return nil, apperrors.NewDatabaseError("patch", err)
	}

	b, err = fromItem(result.Attributes)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to parse updated record").WithCause(err)
	}
	return b, nil
}

// SoftDelete marks a record deleted with actor attribution. The record keeps
// all other fields; nothing is physically removed. Repeat calls are no-op
// patches that re-stamp deletedAt.
func (s *Store) SoftDelete(ctx context.Context, id, actor string) (*bookshop.Bookshop, error) {
	if actor == "" {
		actor = "unknown"
	}
	return s.Patch(ctx, id, map[string]interface{}{
		bookshop.FieldDeleted:   true,
		bookshop.FieldDeletedAt: s.nowString(),
		bookshop.FieldDeletedBy: actor,
	})
}

// SetApproval is the moderation transition, a patch convenience wrapper.
func (s *Store) SetApproval(ctx context.Context, id string, approved bool) (*bookshop.Bookshop, error) {
	return s.Patch(ctx, id, map[string]interface{}{
		bookshop.FieldApproved: approved,
	})
}

// UpcomingEvent is a flattened calendar entry across approved bookshops.
type UpcomingEvent struct {
	BookshopID   string         `json:"bookshopId"`
	BookshopName string         `json:"bookshopName"`
	Event        bookshop.Event `json:"event"`
}

// ListEvents flattens events of approved, non-deleted bookshops occurring on
// or after the given date, sorted by date then start time.
func (s *Store) ListEvents(ctx context.Context, from time.Time) ([]UpcomingEvent, error) {
	approved := true
	shops, err := s.List(ctx, ListFilter{Approved: &approved})
	if err != nil {
		return nil, err
	}

	cutoff := from.Format(time.DateOnly)
	events := make([]UpcomingEvent, 0)
	for _, shop := range shops {
		for _, e := range shop.Events {
			if e.Date < cutoff {
				continue
			}
			events = append(events, UpcomingEvent{
				BookshopID:   shop.ID,
				BookshopName: shop.Name,
				Event:        e,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Event.Date != events[j].Event.Date {
			return events[i].Event.Date < events[j].Event.Date
		}
		return events[i].Event.Time < events[j].Event.Time
	})
	return events, nil
}

// queryAll exhausts a paginated index query.
func (s *Store) queryAll(
	ctx context.Context,
	indexName string,
	key expression.KeyConditionBuilder,
	conds []expression.ConditionBuilder,
) ([]map[string]types.AttributeValue, error) {
	builder := expression.NewBuilder().WithKeyCondition(key)
	if filter, ok := combineConditions(conds); ok {
		builder = builder.WithFilter(filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if result.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// scanAll exhausts a paginated full-table scan, the fallback path with cost
// proportional to table size.
func (s *Store) scanAll(
	ctx context.Context,
	conds []expression.ConditionBuilder,
) ([]map[string]types.AttributeValue, error) {
	entityCond := expression.Name("EntityType").Equal(expression.Value(entityBookshop))
	filter, ok := combineConditions(conds)
	if ok {
		filter = entityCond.And(filter)
	} else {
		filter = entityCond
	}

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if result.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

func combineConditions(conds []expression.ConditionBuilder) (expression.ConditionBuilder, bool) {
	if len(conds) == 0 {
		return expression.ConditionBuilder{}, false
	}
	combined := conds[0]
	for _, c := range conds[1:] {
		combined = combined.And(c)
	}
	return combined, true
}

func (s *Store) logError(op string, err error, fields ...zap.Field) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.String("errorCode", apiErr.ErrorCode()))
	}
	fields = append(fields, zap.Error(err))
	s.logger.Error("DynamoDB "+op+" failed", fields...)
}
