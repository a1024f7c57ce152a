package tools

import (
	"github.com/golovatskygroup/mcp-netlify/internal/netlify"
	"github.com/golovatskygroup/mcp-netlify/internal/registry"
)

// Request is the outbound request produced by a builder.
type Request = netlify.Request

// Tool names. The set is closed.
const (
	ToolCreateSiteFromGitHub = "createSiteFromGitHub"
	ToolListSites            = "listSites"
	ToolGetSite              = "getSite"
	ToolDeleteSite           = "deleteSite"
)

// handler binds the typed validator, builder and shaper of one tool. The
// typed input never leaves the closure returned by validate.
type handler[In any] struct {
	validate func(Args) (In, error)
	build    func(In) Request
	shape    func(In, []byte) (any, error)
	subject  func(In) string
}

func (h handler[In]) prepare(args map[string]any) (registry.Call, error) {
	in, err := h.validate(Args(args))
	if err != nil {
		return registry.Call{}, err
	}
	call := registry.Call{
		Build: func() netlify.Request { return h.build(in) },
		Shape: func(body []byte) (any, error) { return h.shape(in, body) },
	}
	if h.subject != nil {
		call.Subject = h.subject(in)
	}
	return call, nil
}

func siteSubject(in SiteRefInput) string { return in.SiteID }

// Specs returns the tool catalogue in discovery order.
func Specs() []registry.Spec {
	return []registry.Spec{
		{
			Name:        ToolCreateSiteFromGitHub,
			Description: "Create a new Netlify site from a GitHub repository",
			InputSchema: createSiteSchema,
			Operation:   "create site",
			Validate: handler[CreateSiteInput]{
				validate: validateCreateSite,
				build:    buildCreateSite,
				shape:    shapeCreateSite,
			}.prepare,
		},
		{
			Name:        ToolListSites,
			Description: "List Netlify sites",
			InputSchema: listSitesSchema,
			Operation:   "list sites",
			Validate: handler[ListSitesInput]{
				validate: validateListSites,
				build:    buildListSites,
				shape:    shapeListSites,
			}.prepare,
		},
		{
			Name:                  ToolGetSite,
			Description:           "Get details of a specific site",
			InputSchema:           siteRefSchema,
			Operation:             "get site",
			NotFoundIsCallerError: true,
			Validate: handler[SiteRefInput]{
				validate: validateSiteRef,
				build:    buildGetSite,
				shape:    shapeGetSite,
				subject:  siteSubject,
			}.prepare,
		},
		{
			Name:                  ToolDeleteSite,
			Description:           "Delete a site",
			InputSchema:           siteRefSchema,
			Operation:             "delete site",
			NotFoundIsCallerError: true,
			Validate: handler[SiteRefInput]{
				validate: validateSiteRef,
				build:    buildDeleteSite,
				shape:    shapeDeleteSite,
				subject:  siteSubject,
			}.prepare,
		},
	}
}

// NewRegistry builds the registry of all Netlify tools.
func NewRegistry() (*registry.Registry, error) {
	return registry.New(Specs()...)
}
