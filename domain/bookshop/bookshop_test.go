package bookshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveLowerFields(t *testing.T) {
	b := &Bookshop{
		Name:        "  Indy Reads  ",
		Description: "Community Bookstore",
		City:        "Indianapolis",
		Categories:  []string{"Used Books", "  Nonprofit "},
	}

	lf := DeriveLowerFields(b)

	assert.Equal(t, "indy reads", lf.NameLower)
	assert.Equal(t, "community bookstore", lf.DescriptionLower)
	assert.Equal(t, "indianapolis", lf.CityLower)
	assert.Equal(t, []string{"used books", "nonprofit"}, lf.CategoriesLower)
}

func TestDeriveLowerFields_AbsentSources(t *testing.T) {
	lf := DeriveLowerFields(&Bookshop{Name: "Books & Brews"})

	assert.Equal(t, "books & brews", lf.NameLower)
	assert.Empty(t, lf.DescriptionLower)
	assert.Empty(t, lf.CityLower)
	// The shadow list stays present even with no categories.
	assert.NotNil(t, lf.CategoriesLower)
	assert.Len(t, lf.CategoriesLower, 0)
}

func TestApplyLowerFields(t *testing.T) {
	b := &Bookshop{Name: "Vintage Vinyl & Pages", City: "Bloomington"}
	b.ApplyLowerFields()

	assert.Equal(t, "vintage vinyl & pages", b.NameLower)
	assert.Equal(t, "bloomington", b.CityLower)
}

func TestPrimaryCategory(t *testing.T) {
	assert.Empty(t, (&Bookshop{}).PrimaryCategory())
	assert.Equal(t, "used books",
		(&Bookshop{Categories: []string{"Used Books", "Coffee"}}).PrimaryCategory())
}

func TestDayOfWeekValid(t *testing.T) {
	for _, day := range Days {
		assert.True(t, day.Valid(), "expected %s to be valid", day)
	}
	assert.False(t, DayOfWeek("Funday").Valid())
	assert.False(t, DayOfWeek("monday").Valid(), "day names are case-sensitive")
	assert.False(t, DayOfWeek("").Valid())
}
