// Package site provisions collaboration sites.
package site

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/domain"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/logger"
)

// SitesFolder is the name of the folder holding every site node.
const SitesFolder = "Sites"

var shortNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// CreateRequest describes a new site.
type CreateRequest struct {
	ShortName   string
	Title       string
	Description string
	Public      bool
}

// Validate checks the short name and title.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ShortName, validation.Required, validation.Length(1, 72), validation.Match(shortNamePattern)),
		validation.Field(&r.Title, validation.Length(0, 256)),
		validation.Field(&r.Description, validation.Length(0, 1024)),
	)
}

// Service creates sites.
type Service struct {
	rootID string
	nodes  NodeRepository
	sites  SiteDirectory
	acl    Granter
}

// New creates a site service. rootID is the repository root holding the
// sites folder.
func New(rootID string, nodes NodeRepository, sites SiteDirectory, acl Granter) *Service {
	return &Service{rootID: rootID, nodes: nodes, sites: sites, acl: acl}
}

// Create provisions a site node, its directory record and its roles. The
// creator becomes site manager; public sites are readable by everyone.
func (s *Service) Create(ctx context.Context, req CreateRequest) (domdir.Site, error) {
	if err := req.Validate(); err != nil {
		return domdir.Site{}, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}
	user := domain.UserFromContext(ctx)
	if user == domain.Guest {
		return domdir.Site{}, fmt.Errorf("guest cannot create sites: %w", domain.ErrForbidden)
	}

	_, err := s.sites.Site(ctx, req.ShortName)
	switch {
	case err == nil:
		return domdir.Site{}, fmt.Errorf("site %s: %w", req.ShortName, domain.ErrAlreadyExists)
	case !errors.Is(err, domain.ErrNotFound):
		return domdir.Site{}, fmt.Errorf("lookup site %s: %w", req.ShortName, err)
	}

	folder, err := s.nodes.ChildByName(ctx, s.rootID, SitesFolder)
	if err != nil {
		return domdir.Site{}, fmt.Errorf("sites folder: %w", err)
	}

	title := req.Title
	if title == "" {
		title = req.ShortName
	}
	n, created, err := s.nodes.CreateChild(ctx, folder, domnode.Attrs{
		Type: domnode.TypeSite,
		Name: req.ShortName,
		Properties: map[string]string{
			domnode.PropTitle:       title,
			domnode.PropDescription: req.Description,
		},
		Creator: user,
	})
	if err != nil {
		return domdir.Site{}, fmt.Errorf("create site node %s: %w", req.ShortName, err)
	}
	if !created {
		return domdir.Site{}, fmt.Errorf("site node %s: %w", req.ShortName, domain.ErrAlreadyExists)
	}

	site := domdir.Site{
		ShortName:   req.ShortName,
		Title:       title,
		Description: req.Description,
		NodeID:      n.ID(),
	}
	if err := s.provision(ctx, site, user, req.Public); err != nil {
		s.rollback(ctx, n)
		return domdir.Site{}, err
	}

	logger.FromContext(ctx).Info("site created",
		zap.String("site", site.ShortName),
		zap.String("node_id", site.NodeID),
		zap.String("user", user),
		zap.Bool("public", req.Public),
	)
	return site, nil
}

func (s *Service) provision(ctx context.Context, site domdir.Site, user string, public bool) error {
	if err := s.acl.Grant(ctx, site.NodeID, user, listing.RoleSiteManager); err != nil {
		return err
	}
	if public {
		if err := s.acl.Grant(ctx, site.NodeID, domdir.EveryoneGroup, listing.RoleConsumer); err != nil {
			return err
		}
	}
	if err := s.sites.SaveSite(ctx, site); err != nil {
		return fmt.Errorf("save site %s: %w", site.ShortName, err)
	}
	return nil
}

// rollback removes a half-provisioned site node so the short name can be
// used again.
func (s *Service) rollback(ctx context.Context, n domnode.Node) {
	log := logger.FromContext(ctx)
	if err := s.acl.Clear(ctx, n.ID()); err != nil {
		log.Error("clear site roles", zap.String("node_id", n.ID()), zap.Error(err))
	}
	if err := s.nodes.Remove(ctx, n); err != nil {
		log.Error("remove site node", zap.String("node_id", n.ID()), zap.Error(err))
	}
}
