package node

import (
	"github.com/kailas-cloud/doclib/internal/db"
	"github.com/kailas-cloud/doclib/internal/domain"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/domain/query"
)

// IndexName is the FT index over all node documents.
const IndexName = domain.KeyPrefix + "nodes:idx"

// sortFields maps sortable properties to SORTABLE index fields.
var sortFields = map[string]string{
	domnode.PropName:     query.FieldName,
	domnode.PropCreated:  query.FieldCreated,
	domnode.PropModified: query.FieldModified,
	query.FieldName:      query.FieldName,
	query.FieldCreated:   query.FieldCreated,
	query.FieldModified:  query.FieldModified,
}

func buildIndex() *db.IndexDefinition {
	return db.NewIndex(IndexName).
		OnJSON().
		Prefix(nodePrefix).
		Tag("$.id").As(query.FieldID).
		Tag("$.parent").As(query.FieldParent).
		Tag("$.ancestors[*]").As(query.FieldAncestors).
		Tag("$.type").As(query.FieldType).
		Tag("$.aspects[*]").As(query.FieldAspects).
		Tag("$.tags[*]").As(query.FieldTags).
		Tag("$.creator").As(query.FieldCreator).
		Tag("$.modifier").As(query.FieldModifier).
		Tag("$.mimetype").As(query.FieldMimetype).
		Text("$.name").As(query.FieldName).Sortable().
		Text("$.title").As(query.FieldTitle).
		Text("$.description").As(query.FieldDescription).
		Numeric("$.created").As(query.FieldCreated).Sortable().
		Numeric("$.modified").As(query.FieldModified).Sortable().
		MustBuild()
}
