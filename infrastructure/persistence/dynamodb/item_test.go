package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcrawl-backend/domain/bookshop"
)

func TestItemFlagsPersistAsStrings(t *testing.T) {
	b := &bookshop.Bookshop{ID: "shop-1", Name: "Indy Reads", Approved: true, Deleted: false,
		CreatedAt: "2026-08-28T10:00:00Z", UpdatedAt: "2026-08-28T10:00:00Z"}
	b.ApplyLowerFields()

	av, err := toItem(b)
	require.NoError(t, err)

	approved, ok := av["approved"].(*types.AttributeValueMemberS)
	require.True(t, ok, "flags must be string attributes, not booleans")
	assert.Equal(t, "true", approved.Value)

	deleted, ok := av["deleted"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "false", deleted.Value)

	parsed, err := fromItem(av)
	require.NoError(t, err)
	assert.True(t, parsed.Approved)
	assert.False(t, parsed.Deleted)
}

func TestItemIndexKeysDeriveFromRecord(t *testing.T) {
	b := &bookshop.Bookshop{ID: "shop-1", Name: "Indy Reads",
		Categories: []string{"Used Books", "Coffee"}}
	b.ApplyLowerFields()

	av, err := toItem(b)
	require.NoError(t, err)

	gsi1pk := av["GSI1PK"].(*types.AttributeValueMemberS)
	assert.Equal(t, "APPROVED#false", gsi1pk.Value)

	gsi2pk := av["GSI2PK"].(*types.AttributeValueMemberS)
	assert.Equal(t, "CATEGORY#used books", gsi2pk.Value, "only the first category is indexed")

	gsi1sk := av["GSI1SK"].(*types.AttributeValueMemberS)
	assert.Equal(t, "indy reads", gsi1sk.Value)
}

func TestItemUncategorizedOmitsCategoryKey(t *testing.T) {
	b := &bookshop.Bookshop{ID: "shop-1", Name: "Indy Reads"}
	b.ApplyLowerFields()

	av, err := toItem(b)
	require.NoError(t, err)
	assert.NotContains(t, av, "GSI2PK")
}

func TestFromItemRecoversIDFromLegacyKey(t *testing.T) {
	b := &bookshop.Bookshop{ID: "legacy-17", Name: "Old Stock"}
	b.ApplyLowerFields()
	av, err := toItem(b)
	require.NoError(t, err)

	// Older items carry the id only in the partition key.
	delete(av, "id")

	parsed, err := fromItem(av)
	require.NoError(t, err)
	assert.Equal(t, "legacy-17", parsed.ID)
}
