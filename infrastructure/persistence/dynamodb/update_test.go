package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcrawl-backend/domain/bookshop"
	apperrors "bookcrawl-backend/pkg/errors"
)

const testNow = "2026-08-28T10:00:00Z"

func TestBuildUpdateRejectsUnknownField(t *testing.T) {
	_, err := BuildUpdate("shop-1", map[string]interface{}{
		"name":       "Indy Reads",
		"ownerNotes": "not in the schema",
	}, testNow)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "ownerNotes")
}

func TestBuildUpdateRejectsStoreManagedFields(t *testing.T) {
	for _, field := range []string{"id", "createdAt", "updatedAt", "nameLower"} {
		_, err := BuildUpdate("shop-1", map[string]interface{}{field: "x"}, testNow)
		assert.True(t, apperrors.IsValidation(err), "expected %q to be rejected", field)
	}
}

func TestBuildUpdateSkipsNilValues(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{
		"name":        "Indy Reads",
		"description": nil,
	}, testNow)
	require.NoError(t, err)

	assert.Contains(t, op.Staged, "name")
	assert.NotContains(t, op.Staged, "description")
	assert.NotContains(t, op.Staged, "descriptionLower")
}

func TestBuildUpdateEmptyPayloadStagesOnlyUpdatedAt(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{}, testNow)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"updatedAt": testNow}, op.Staged)
	assert.Empty(t, op.Removed)
	assert.NotNil(t, op.Expr.Update())
	assert.NotNil(t, op.Expr.Condition(), "existence condition must always be present")
}

func TestBuildUpdateNameRestagesShadowAndIndexKeys(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{
		"name": "  New Chapter Books ",
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, "  New Chapter Books ", op.Staged["name"])
	assert.Equal(t, "new chapter books", op.Staged["nameLower"])
	assert.Equal(t, "new chapter books", op.Staged["GSI1SK"])
	assert.Equal(t, "new chapter books", op.Staged["GSI2SK"])
}

func TestBuildUpdateDescriptionAndCityShadows(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{
		"description": "A Cozy Shop",
		"city":        "Fort Wayne",
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, "a cozy shop", op.Staged["descriptionLower"])
	assert.Equal(t, "fort wayne", op.Staged["cityLower"])
}

func TestBuildUpdateApprovedCoercion(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{"approved": true}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "true", op.Staged["approved"])
	assert.Equal(t, "APPROVED#true", op.Staged["GSI1PK"])

	op, err = BuildUpdate("shop-1", map[string]interface{}{"approved": "false"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "false", op.Staged["approved"])
	assert.Equal(t, "APPROVED#false", op.Staged["GSI1PK"])

	_, err = BuildUpdate("shop-1", map[string]interface{}{"approved": "yes"}, testNow)
	assert.True(t, apperrors.IsValidation(err))

	_, err = BuildUpdate("shop-1", map[string]interface{}{"approved": 1}, testNow)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBuildUpdateCategoriesRestageCategoryIndex(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{
		"categories": []interface{}{"Poetry", "Used Books"},
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"Poetry", "Used Books"}, op.Staged["categories"])
	assert.Equal(t, []string{"poetry", "used books"}, op.Staged["categoriesLower"])
	assert.Equal(t, "CATEGORY#poetry", op.Staged["GSI2PK"])
	assert.Empty(t, op.Removed)
}

func TestBuildUpdateEmptyCategoriesRemoveCategoryIndexKey(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{
		"categories": []string{},
	}, testNow)
	require.NoError(t, err)

	assert.NotContains(t, op.Staged, "GSI2PK")
	assert.Contains(t, op.Removed, "GSI2PK")
	lowered, ok := op.Staged["categoriesLower"].([]string)
	require.True(t, ok)
	assert.NotNil(t, lowered)
	assert.Len(t, lowered, 0)
}

func TestBuildUpdateTypedHoursNormalized(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{
		"hours": []bookshop.OperatingHours{
			{ID: "h1", DayOfWeek: bookshop.Saturday, OpenTime: "10:00", CloseTime: "18:00"},
		},
	}, testNow)
	require.NoError(t, err)

	items, ok := op.Staged["hours"].([]hoursItem)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Saturday", items[0].DayOfWeek)
	assert.Equal(t, "10:00", items[0].OpenTime)
}

func TestBuildUpdateAlwaysStagesUpdatedAt(t *testing.T) {
	op, err := BuildUpdate("shop-1", map[string]interface{}{"state": "IN"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, op.Staged["updatedAt"])

	// The generated expression carries every staged attribute.
	update := aws.ToString(op.Expr.Update())
	assert.NotEmpty(t, update)
	assert.Contains(t, update, "SET")
}

func TestBuildUpdateKeyTargetsRecord(t *testing.T) {
	op, err := BuildUpdate("shop-7", nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, KeyAttributes("shop-7"), op.Key)
}
