package dynamodb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"bookcrawl-backend/domain/bookshop"
)

// Key scheme, one canonical version:
//
//	PK     = BOOKSHOP#<id>        SK     = METADATA#<id>
//	GSI1PK = APPROVED#<bool>      GSI1SK = <nameLower>   (ApprovalIndex)
//	GSI2PK = CATEGORY#<category>  GSI2SK = <nameLower>   (CategoryIndex)
//
// The category index is keyed on the record's first category; a single item
// carries a single GSI partition key, so secondary categories are not
// indexed.
const (
	entityBookshop = "BOOKSHOP"

	pkPrefix       = entityBookshop + "#"
	skPrefix       = "METADATA#"
	approvedPrefix = "APPROVED#"
	categoryPrefix = "CATEGORY#"
)

// EncodeKey maps a record id to its partition and sort key values.
func EncodeKey(id string) (pk, sk string) {
	return pkPrefix + id, skPrefix + id
}

// DecodeKey is the inverse of EncodeKey: it recovers the record id from a
// partition key value.
func DecodeKey(pk string) (string, error) {
	id, ok := strings.CutPrefix(pk, pkPrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("not a bookshop partition key: %q", pk)
	}
	return id, nil
}

// KeyAttributes builds the primary key attribute map for a record id.
func KeyAttributes(id string) map[string]types.AttributeValue {
	pk, sk := EncodeKey(id)
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// ApprovalKey is the ApprovalIndex partition key for a moderation state.
func ApprovalKey(approved bool) string {
	return approvedPrefix + boolString(approved)
}

// CategoryKey is the CategoryIndex partition key for a category value.
func CategoryKey(category string) string {
	return categoryPrefix + bookshop.Lower(category)
}

// boolString renders the persisted form of the string-typed moderation and
// soft-delete flags.
func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// parseBoolString reads the persisted "true"/"false" convention; anything
// other than the literal "true" (an absent attribute included) is false.
func parseBoolString(s string) bool {
	return s == "true"
}
