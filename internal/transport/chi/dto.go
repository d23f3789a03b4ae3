package chi

import (
	"time"

	domaction "github.com/kailas-cloud/doclib/internal/domain/action"
	"github.com/kailas-cloud/doclib/internal/domain/directory"
	domlisting "github.com/kailas-cloud/doclib/internal/domain/listing"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/domain/query"
	listinguc "github.com/kailas-cloud/doclib/internal/usecase/listing"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// PersonResponse is a user as displayed in listings.
type PersonResponse struct {
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// PermissionsResponse are the current user's rights on an item.
type PermissionsResponse struct {
	Read   bool `json:"read"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// WorkingCopyResponse links a working copy and its source.
type WorkingCopyResponse struct {
	SourceNodeRef  string          `json:"sourceNodeRef,omitempty"`
	WorkingCopyRef string          `json:"workingCopyNodeRef,omitempty"`
	VersionLabel   string          `json:"versionLabel,omitempty"`
	Owner          *PersonResponse `json:"owner,omitempty"`
}

// LinkResponse describes a link target.
type LinkResponse struct {
	TargetNodeRef string `json:"targetNodeRef"`
	TargetName    string `json:"targetName,omitempty"`
	Broken        bool   `json:"broken"`
}

// ItemResponse is one evaluated node.
type ItemResponse struct {
	NodeRef     string               `json:"nodeRef"`
	Name        string               `json:"name"`
	Type        string               `json:"type"`
	Kind        string               `json:"kind"`
	IsFolder    bool                 `json:"isFolder"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Mimetype    string               `json:"mimetype,omitempty"`
	Status      string               `json:"status,omitempty"`
	Aspects     []string             `json:"aspects,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
	Created     time.Time            `json:"created"`
	Modified    time.Time            `json:"modified"`
	Creator     PersonResponse       `json:"creator"`
	Modifier    PersonResponse       `json:"modifier"`
	LockOwner   *PersonResponse      `json:"lockOwner,omitempty"`
	WorkingCopy *WorkingCopyResponse `json:"workingCopy,omitempty"`
	Link        *LinkResponse        `json:"link,omitempty"`
	Permissions PermissionsResponse  `json:"permissions"`
	Location    location.Descriptor  `json:"location"`
}

// DoclistMetadata describes the listing itself.
type DoclistMetadata struct {
	Parent   ItemResponse        `json:"parent"`
	Location location.Descriptor `json:"location"`
	FilterID string              `json:"filterId"`
	Query    string              `json:"query"`
	Language string              `json:"language"`
	Sort     []query.SortField   `json:"sort"`
	Limit    int                 `json:"limit,omitempty"`
}

// DoclistResponse is one page of a document listing.
type DoclistResponse struct {
	TotalRecords int             `json:"totalRecords"`
	PageSize     int             `json:"pageSize"`
	PageNo       int             `json:"pageNo"`
	StartIndex   int             `json:"startIndex"`
	Metadata     DoclistMetadata `json:"metadata"`
	Items        []ItemResponse  `json:"items"`
}

// NodeResponse is the body of GET /node.
type NodeResponse struct {
	Item     ItemResponse        `json:"item"`
	Location location.Descriptor `json:"location"`
}

// ActionRequest is the body of an action request.
type ActionRequest struct {
	NodeRefs []string `json:"nodeRefs"`
}

// ActionResultResponse is the outcome of one action item.
type ActionResultResponse struct {
	NodeRef string         `json:"nodeRef"`
	Name    string         `json:"name,omitempty"`
	ID      string         `json:"id,omitempty"`
	Success bool           `json:"success"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ActionResponse aggregates the items of an action.
type ActionResponse struct {
	OverallSuccess bool                   `json:"overallSuccess"`
	SuccessCount   int                    `json:"successCount"`
	FailureCount   int                    `json:"failureCount"`
	Results        []ActionResultResponse `json:"results"`
}

// FavouriteRequest is the body of POST /favourites.
type FavouriteRequest struct {
	NodeRef string `json:"nodeRef"`
}

// FavouritesResponse lists favourite node refs.
type FavouritesResponse struct {
	Items []string `json:"items"`
}

// CreateSiteRequest is the body of POST /sites.
type CreateSiteRequest struct {
	ShortName   string `json:"shortName"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"` // PUBLIC or PRIVATE
}

// SiteResponse describes a site.
type SiteResponse struct {
	ShortName   string `json:"shortName"`
	Title       string `json:"title"`
	Description string `json:"description"`
	NodeRef     string `json:"nodeRef"`
}

func personToResponse(p directory.Person) PersonResponse {
	return PersonResponse{
		UserName:    p.UserName,
		DisplayName: p.DisplayName(),
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
	}
}

func optionalPerson(p *directory.Person) *PersonResponse {
	if p == nil {
		return nil
	}
	resp := personToResponse(*p)
	return &resp
}

func itemToResponse(it domlisting.Item) ItemResponse {
	n := it.Node
	resp := ItemResponse{
		NodeRef:     it.Ref().String(),
		Name:        n.Name(),
		Type:        n.Type(),
		Kind:        string(it.Kind),
		IsFolder:    it.Kind.IsFolderLike(),
		Title:       n.Prop(domnode.PropTitle),
		Description: n.Prop(domnode.PropDescription),
		Mimetype:    n.Prop(domnode.PropMimetype),
		Status:      string(it.Status),
		Aspects:     n.Aspects(),
		Tags:        n.Tags(),
		Created:     n.Created().UTC(),
		Modified:    n.Modified().UTC(),
		Creator:     personToResponse(it.Creator),
		Modifier:    personToResponse(it.Modifier),
		LockOwner:   optionalPerson(it.LockOwner),
		Permissions: PermissionsResponse(it.Permissions),
		Location:    it.Location,
	}
	if wc := it.WorkingCopy; wc != nil {
		resp.WorkingCopy = &WorkingCopyResponse{
			SourceNodeRef:  wc.Source.String(),
			WorkingCopyRef: wc.Copy.String(),
			VersionLabel:   wc.VersionLabel,
			Owner:          optionalPerson(wc.Owner),
		}
	}
	if l := it.Link; l != nil {
		resp.Link = &LinkResponse{
			TargetNodeRef: l.Target.String(),
			TargetName:    l.TargetName,
			Broken:        l.Broken,
		}
	}
	return resp
}

func doclistToResponse(l listinguc.Listing) DoclistResponse {
	items := make([]ItemResponse, len(l.Items))
	for i, it := range l.Items {
		items[i] = itemToResponse(it)
	}
	sort := l.Query.Sort
	if sort == nil {
		sort = []query.SortField{}
	}
	return DoclistResponse{
		TotalRecords: l.Paging.TotalRecords,
		PageSize:     l.Paging.PageSize,
		PageNo:       l.Paging.PageNo,
		StartIndex:   l.Paging.StartIndex,
		Metadata: DoclistMetadata{
			Parent:   itemToResponse(l.Parent),
			Location: l.Location,
			FilterID: l.Query.FilterID,
			Query:    l.Query.QueryString(),
			Language: string(l.Query.Language),
			Sort:     sort,
			Limit:    l.Query.Limit,
		},
		Items: items,
	}
}

func summaryToResponse(s domaction.Summary) ActionResponse {
	results := make([]ActionResultResponse, len(s.Results))
	for i, r := range s.Results {
		results[i] = ActionResultResponse{
			NodeRef: r.NodeRef(),
			Name:    r.Name(),
			ID:      r.ID(),
			Success: r.Success(),
			Error:   itemError(r.Err()),
		}
	}
	return ActionResponse{
		OverallSuccess: s.OverallSuccess,
		SuccessCount:   s.SuccessCount,
		FailureCount:   s.FailureCount,
		Results:        results,
	}
}
