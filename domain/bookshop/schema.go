package bookshop

// Field names as they appear in update payloads and persisted items. The
// update builder only accepts attributes registered here; anything else is
// rejected rather than silently dropped.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldState       = "state"
	FieldZipCode     = "zipCode"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldHours       = "hours"
	FieldEvents      = "events"
	FieldCategories  = "categories"
	FieldWebsite     = "website"
	FieldInstagram   = "instagram"
	FieldFacebook    = "facebook"
	FieldTwitter     = "twitter"
	FieldApproved    = "approved"
	FieldDeleted     = "deleted"
	FieldDeletedAt   = "deletedAt"
	FieldDeletedBy   = "deletedBy"
)

// updatableFields is the record schema's writable surface. id, createdAt,
// updatedAt and the *Lower shadows are deliberately absent: id is immutable,
// timestamps are stamped by the store, and shadows are always recomputed
// from their source field.
var updatableFields = map[string]struct{}{
	FieldName:        {},
	FieldDescription: {},
	FieldAddress:     {},
	FieldCity:        {},
	FieldState:       {},
	FieldZipCode:     {},
	FieldLatitude:    {},
	FieldLongitude:   {},
	FieldHours:       {},
	FieldEvents:      {},
	FieldCategories:  {},
	FieldWebsite:     {},
	FieldInstagram:   {},
	FieldFacebook:    {},
	FieldTwitter:     {},
	FieldApproved:    {},
	FieldDeleted:     {},
	FieldDeletedAt:   {},
	FieldDeletedBy:   {},
}

// IsUpdatable reports whether field is part of the writable record schema.
func IsUpdatable(field string) bool {
	_, ok := updatableFields[field]
	return ok
}

// shadowOf maps a source field to its derived lowercase shadow attribute.
var shadowOf = map[string]string{
	FieldName:        "nameLower",
	FieldDescription: "descriptionLower",
	FieldCity:        "cityLower",
	FieldCategories:  "categoriesLower",
}

// ShadowField returns the shadow attribute name for a source field, if the
// field has a registered derivation rule.
func ShadowField(field string) (string, bool) {
	shadow, ok := shadowOf[field]
	return shadow, ok
}
