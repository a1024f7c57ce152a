package tools

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// maxPerPage is the largest page size the API honours; larger requests are
// clamped rather than rejected.
const maxPerPage = 100

var listSitesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"filter": {"type": "string", "enum": ["all", "owner", "guest"], "description": "Filter sites by access type (default: all)", "default": "all"},
		"page": {"type": "integer", "minimum": 1, "description": "Page number (1-based)"},
		"perPage": {"type": "integer", "minimum": 1, "description": "Items per page (max: 100, larger values are clamped)"}
	}
}`)

type ListSitesInput struct {
	Filter  string // empty when absent
	Page    int    // 0 when absent
	PerPage int    // 0 when absent, otherwise clamped to maxPerPage
}

type ListedSite struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	AdminURL        string `json:"admin_url"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	PublishedDeploy any    `json:"published_deploy"`
}

type ListSitesEnvelope struct {
	Success bool         `json:"success"`
	Sites   []ListedSite `json:"sites"`
	Count   int          `json:"count"`
}

func validateListSites(a Args) (ListSitesInput, error) {
	var in ListSitesInput

	filter, _, err := a.optionalEnum("filter", "all", "owner", "guest")
	if err != nil {
		return in, err
	}
	in.Filter = filter

	if in.Page, _, err = a.optionalPositiveInt("page"); err != nil {
		return in, err
	}

	perPage, ok, err := a.optionalPositiveInt("perPage")
	if err != nil {
		return in, err
	}
	if ok {
		in.PerPage = min(perPage, maxPerPage)
	}
	return in, nil
}

func buildListSites(in ListSitesInput) Request {
	q := url.Values{}
	if in.Filter != "" && in.Filter != "all" {
		q.Set("filter", in.Filter)
	}
	if in.Page > 0 {
		q.Set("page", strconv.Itoa(in.Page))
	}
	if in.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(in.PerPage))
	}
	return Request{Method: http.MethodGet, Path: "/sites", Query: q}
}

func shapeListSites(_ ListSitesInput, body []byte) (any, error) {
	var sites []ListedSite
	if err := json.Unmarshal(body, &sites); err != nil {
		return nil, err
	}
	if sites == nil {
		sites = []ListedSite{}
	}
	return ListSitesEnvelope{Success: true, Sites: sites, Count: len(sites)}, nil
}
