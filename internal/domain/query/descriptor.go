package query

// Language selects how a stored or user-supplied query is interpreted.
type Language string

// Query languages.
const (
	LanguageStructured Language = "structured"
	LanguageFullText   Language = "fulltext"
)

// IsValid reports whether l is a known language.
func (l Language) IsValid() bool {
	return l == LanguageStructured || l == LanguageFullText
}

// DefaultNamespace is the namespace unprefixed field names resolve against.
const DefaultNamespace = "http://www.alfresco.org/model/content/1.0"

// DefaultTemplates expand full-text keywords into the indexed text fields.
func DefaultTemplates() map[string][]string {
	return map[string][]string{
		"keywords": {FieldName, FieldTitle, FieldDescription},
		"name":     {FieldName},
		"title":    {FieldTitle},
	}
}

// SortField is one (field, direction) pair of a sort spec.
type SortField struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}

// Descriptor is a fully built listing query.
type Descriptor struct {
	FilterID  string
	Query     Clause
	Language  Language
	Sort      []SortField
	Limit     int // 0 means no limit
	Namespace string
	Templates map[string][]string
	// Empty is set when the filter can match nothing, e.g. no favourites.
	Empty bool
}

// QueryString renders the query.
func (d Descriptor) QueryString() string { return Render(d.Query) }

// SortsBy reports whether the primary sort key is field.
func (d Descriptor) SortsBy(field string) bool {
	return len(d.Sort) > 0 && d.Sort[0].Field == field
}
