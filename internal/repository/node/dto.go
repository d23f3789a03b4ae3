package node

import (
	"time"

	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// nodeDoc is the JSON document stored per node. Title, description and
// mimetype are copied out of props so the index can reach them.
type nodeDoc struct {
	ID          string            `json:"id"`
	QName       string            `json:"qname"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Mimetype    string            `json:"mimetype"`
	Parent      string            `json:"parent"`
	Ancestors   []string          `json:"ancestors"`
	Aspects     []string          `json:"aspects"`
	Tags        []string          `json:"tags"`
	Props       map[string]string `json:"props"`
	Created     int64             `json:"created"`
	Modified    int64             `json:"modified"`
	Creator     string            `json:"creator"`
	Modifier    string            `json:"modifier"`
}

func toDoc(n domnode.Node) nodeDoc {
	return nodeDoc{
		ID:          n.ID(),
		QName:       n.QName(),
		Type:        n.Type(),
		Name:        n.Name(),
		Title:       n.Prop(domnode.PropTitle),
		Description: n.Prop(domnode.PropDescription),
		Mimetype:    n.Prop(domnode.PropMimetype),
		Parent:      n.ParentID(),
		Ancestors:   nonNil(n.Ancestors()),
		Aspects:     nonNil(n.Aspects()),
		Tags:        nonNil(n.Tags()),
		Props:       n.Properties(),
		Created:     n.Created().UnixMilli(),
		Modified:    n.Modified().UnixMilli(),
		Creator:     n.Creator(),
		Modifier:    n.Modifier(),
	}
}

func (d nodeDoc) toNode() domnode.Node {
	return domnode.Reconstruct(d.attrs())
}

func (d nodeDoc) attrs() domnode.Attrs {
	return domnode.Attrs{
		ID:         d.ID,
		QName:      d.QName,
		Type:       d.Type,
		Name:       d.Name,
		ParentID:   d.Parent,
		Ancestors:  d.Ancestors,
		Aspects:    d.Aspects,
		Properties: d.Props,
		Tags:       d.Tags,
		Created:    time.UnixMilli(d.Created),
		Modified:   time.UnixMilli(d.Modified),
		Creator:    d.Creator,
		Modifier:   d.Modifier,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
