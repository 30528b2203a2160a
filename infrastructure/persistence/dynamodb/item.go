package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"bookcrawl-backend/domain/bookshop"
)

// bookshopItem is the persisted layout of a record. Approved and Deleted are
// the literal strings "true"/"false" here; the ApprovalIndex partitions on
// the approved value, so it cannot be a native boolean.
type bookshopItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK string `dynamodbav:"GSI1SK,omitempty"`
	GSI2PK string `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK string `dynamodbav:"GSI2SK,omitempty"`

	EntityType string `dynamodbav:"EntityType"`

	ID          string  `dynamodbav:"id"`
	Name        string  `dynamodbav:"name"`
	Description string  `dynamodbav:"description,omitempty"`
	Address     string  `dynamodbav:"address,omitempty"`
	City        string  `dynamodbav:"city,omitempty"`
	State       string  `dynamodbav:"state,omitempty"`
	ZipCode     string  `dynamodbav:"zipCode,omitempty"`
	Latitude    float64 `dynamodbav:"latitude,omitempty"`
	Longitude   float64 `dynamodbav:"longitude,omitempty"`

	Hours      []hoursItem `dynamodbav:"hours,omitempty"`
	Events     []eventItem `dynamodbav:"events,omitempty"`
	Categories []string    `dynamodbav:"categories,omitempty"`

	Website   string `dynamodbav:"website,omitempty"`
	Instagram string `dynamodbav:"instagram,omitempty"`
	Facebook  string `dynamodbav:"facebook,omitempty"`
	Twitter   string `dynamodbav:"twitter,omitempty"`

	NameLower        string   `dynamodbav:"nameLower,omitempty"`
	DescriptionLower string   `dynamodbav:"descriptionLower,omitempty"`
	CityLower        string   `dynamodbav:"cityLower,omitempty"`
	CategoriesLower  []string `dynamodbav:"categoriesLower,omitempty"`

	Approved  string `dynamodbav:"approved"`
	Deleted   string `dynamodbav:"deleted"`
	DeletedAt string `dynamodbav:"deletedAt,omitempty"`
	DeletedBy string `dynamodbav:"deletedBy,omitempty"`

	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

type hoursItem struct {
	ID        string `dynamodbav:"id"`
	DayOfWeek string `dynamodbav:"dayOfWeek"`
	OpenTime  string `dynamodbav:"openTime"`
	CloseTime string `dynamodbav:"closeTime"`
}

type eventItem struct {
	ID          string `dynamodbav:"id"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description,omitempty"`
	Date        string `dynamodbav:"date"`
	Time        string `dynamodbav:"time,omitempty"`
	EndTime     string `dynamodbav:"endTime,omitempty"`
}

// toItem converts an in-memory record to its persisted attribute map,
// deriving the index key attributes from the record's current field values.
func toItem(b *bookshop.Bookshop) (map[string]types.AttributeValue, error) {
	pk, sk := EncodeKey(b.ID)

	item := bookshopItem{
		PK:         pk,
		SK:         sk,
		GSI1PK:     ApprovalKey(b.Approved),
		GSI1SK:     b.NameLower,
		GSI2SK:     b.NameLower,
		EntityType: entityBookshop,

		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		City:        b.City,
		State:       b.State,
		ZipCode:     b.ZipCode,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		Categories:  b.Categories,
		Website:     b.Website,
		Instagram:   b.Instagram,
		Facebook:    b.Facebook,
		Twitter:     b.Twitter,

		NameLower:        b.NameLower,
		DescriptionLower: b.DescriptionLower,
		CityLower:        b.CityLower,
		CategoriesLower:  b.CategoriesLower,

		Approved:  boolString(b.Approved),
		Deleted:   boolString(b.Deleted),
		DeletedAt: b.DeletedAt,
		DeletedBy: b.DeletedBy,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}

	if cat := b.PrimaryCategory(); cat != "" {
		item.GSI2PK = CategoryKey(cat)
	}

	for _, h := range b.Hours {
		item.Hours = append(item.Hours, hoursItem{
			ID:        h.ID,
			DayOfWeek: string(h.DayOfWeek),
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
		})
	}
	for _, e := range b.Events {
		item.Events = append(item.Events, eventItem{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Time:        e.Time,
			EndTime:     e.EndTime,
		})
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookshop item: %w", err)
	}
	return av, nil
}

// fromItem converts a persisted attribute map back to the in-memory record,
// parsing the string-typed flags into native booleans.
func fromItem(av map[string]types.AttributeValue) (*bookshop.Bookshop, error) {
	var item bookshopItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookshop item: %w", err)
	}

	b := &bookshop.Bookshop{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Address:     item.Address,
		City:        item.City,
		State:       item.State,
		ZipCode:     item.ZipCode,
		Latitude:    item.Latitude,
		Longitude:   item.Longitude,
		Categories:  item.Categories,
		Website:     item.Website,
		Instagram:   item.Instagram,
		Facebook:    item.Facebook,
		Twitter:     item.Twitter,

		NameLower:        item.NameLower,
		DescriptionLower: item.DescriptionLower,
		CityLower:        item.CityLower,
		CategoriesLower:  item.CategoriesLower,

		Approved:  parseBoolString(item.Approved),
		Deleted:   parseBoolString(item.Deleted),
		DeletedAt: item.DeletedAt,
		DeletedBy: item.DeletedBy,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}

	// Older items predate the PK attribute mirror of id.
	if b.ID == "" && item.PK != "" {
		id, err := DecodeKey(item.PK)
		if err != nil {
			return nil, err
		}
		b.ID = id
	}

	for _, h := range item.Hours {
		b.Hours = append(b.Hours, bookshop.OperatingHours{
			ID:        h.ID,
			DayOfWeek: bookshop.DayOfWeek(h.DayOfWeek),
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
		})
	}
	for _, e := range item.Events {
		b.Events = append(b.Events, bookshop.Event{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Time:        e.Time,
			EndTime:     e.EndTime,
		})
	}

	return b, nil
}
