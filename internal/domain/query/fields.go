package query

// Indexed node fields addressable in clauses.
const (
	FieldID          = "id"
	FieldParent      = "parent"
	FieldAncestors   = "ancestors"
	FieldType        = "type"
	FieldAspects     = "aspects"
	FieldTags        = "tags"
	FieldCreator     = "creator"
	FieldModifier    = "modifier"
	FieldMimetype    = "mimetype"
	FieldName        = "name"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCreated     = "created"
	FieldModified    = "modified"
)
