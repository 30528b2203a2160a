package dynamodb

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"bookcrawl-backend/domain/bookshop"
	"bookcrawl-backend/pkg/errors"
)

// UpdateOperation is a prepared partial update: the record's key, the built
// expression, and the staged assignments by attribute name. Existence of the
// target is enforced by the expression's condition; the store maps the failed
// condition to NotFound.
type UpdateOperation struct {
	Key     map[string]types.AttributeValue
	Expr    expression.Expression
	Staged  map[string]interface{}
	Removed []string
}

// BuildUpdate converts a sparse field→value payload into a DynamoDB update.
//
// Rules, in order: fields outside the record schema are rejected; nil values
// are skipped; fields with a derivation rule additionally stage their
// lowercase shadow computed from the new value; the string-typed moderation
// and soft-delete flags are coerced from booleans; index key attributes
// depending on a changed field are restaged in the same write; updatedAt is
// always staged, so an empty payload is still a valid single-field update.
func BuildUpdate(id string, updates map[string]interface{}, now string) (*UpdateOperation, error) {
	op := &UpdateOperation{
		Key:    KeyAttributes(id),
		Staged: make(map[string]interface{}),
	}

	var update expression.UpdateBuilder
	stage := func(attr string, value interface{}) {
		update = update.Set(expression.Name(attr), expression.Value(value))
		op.Staged[attr] = value
	}
	remove := func(attr string) {
		update = update.Remove(expression.Name(attr))
		op.Removed = append(op.Removed, attr)
	}

	// Deterministic staging order keeps generated expressions stable.
	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value := updates[field]
		if !bookshop.IsUpdatable(field) {
			return nil, errors.NewValidationError(
				fmt.Sprintf("field %q is not part of the bookshop record schema", field))
		}
		if value == nil {
			continue
		}

		switch field {
		case bookshop.FieldApproved, bookshop.FieldDeleted:
			flag, err := coerceBoolString(field, value)
			if err != nil {
				return nil, err
			}
			stage(field, flag)
			if field == bookshop.FieldApproved {
				stage("GSI1PK", ApprovalKey(parseBoolString(flag)))
			}

		case bookshop.FieldName:
			name, err := coerceString(field, value)
			if err != nil {
				return nil, err
			}
			stage(field, name)
			lower := bookshop.Lower(name)
			stage("nameLower", lower)
			stage("GSI1SK", lower)
			stage("GSI2SK", lower)

		case bookshop.FieldDescription, bookshop.FieldCity:
			s, err := coerceString(field, value)
			if err != nil {
				return nil, err
			}
			stage(field, s)
			if shadow, ok := bookshop.ShadowField(field); ok {
				stage(shadow, bookshop.Lower(s))
			}

		case bookshop.FieldCategories:
			cats, err := coerceStringSlice(field, value)
			if err != nil {
				return nil, err
			}
			stage(field, cats)
			stage("categoriesLower", bookshop.LowerAll(cats))
			if len(cats) > 0 {
				stage("GSI2PK", CategoryKey(cats[0]))
			} else {
				remove("GSI2PK")
			}

		case bookshop.FieldHours:
			stage(field, normalizeHours(value))

		case bookshop.FieldEvents:
			stage(field, normalizeEvents(value))

		default:
			stage(field, value)
		}
	}

	stage("updatedAt", now)

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return nil, errors.NewInternalError("failed to build update expression").WithCause(err)
	}
	op.Expr = expr

	return op, nil
}

// coerceBoolString accepts a native boolean or the persisted literal form and
// returns the "true"/"false" string convention.
func coerceBoolString(field string, value interface{}) (string, error) {
	switch v := value.(type) {
	case bool:
		return boolString(v), nil
	case string:
		if v == "true" || v == "false" {
			return v, nil
		}
	}
	return "", errors.NewValidationError(
		fmt.Sprintf("field %q must be a boolean or \"true\"/\"false\"", field))
}

func coerceString(field string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", errors.NewValidationError(fmt.Sprintf("field %q must be a string", field))
	}
	return s, nil
}

// coerceStringSlice accepts []string or a JSON-decoded []interface{} of
// strings.
func coerceStringSlice(field string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, errors.NewValidationError(
					fmt.Sprintf("field %q must be a list of strings", field))
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.NewValidationError(fmt.Sprintf("field %q must be a list of strings", field))
}

// normalizeHours converts typed operating hours to the persisted item shape;
// JSON-decoded values already carry the persisted attribute names and pass
// through unchanged.
func normalizeHours(value interface{}) interface{} {
	hours, ok := value.([]bookshop.OperatingHours)
	if !ok {
		return value
	}
	items := make([]hoursItem, 0, len(hours))
	for _, h := range hours {
		items = append(items, hoursItem{
			ID:        h.ID,
			DayOfWeek: string(h.DayOfWeek),
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
		})
	}
	return items
}

func normalizeEvents(value interface{}) interface{} {
	events, ok := value.([]bookshop.Event)
	if !ok {
		return value
	}
	items := make([]eventItem, 0, len(events))
	for _, e := range events {
		items = append(items, eventItem{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Time:        e.Time,
			EndTime:     e.EndTime,
		})
	}
	return items
}
