package tools

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// siteRefSchema is shared by every tool that addresses a single site.
var siteRefSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"siteId": {"type": "string", "minLength": 1, "description": "Site ID or site name"}
	},
	"required": ["siteId"]
}`)

// SiteRefInput addresses one site by id or by name; the API accepts both in
// the same path segment.
type SiteRefInput struct {
	SiteID string
}

type GetSiteEnvelope struct {
	Success bool `json:"success"`
	Site    any  `json:"site"`
}

func validateSiteRef(a Args) (SiteRefInput, error) {
	id, err := a.requiredString("siteId")
	if err != nil {
		return SiteRefInput{}, err
	}
	return SiteRefInput{SiteID: id}, nil
}

func sitePath(id string) string {
	return "/sites/" + url.PathEscape(id)
}

func buildGetSite(in SiteRefInput) Request {
	return Request{Method: http.MethodGet, Path: sitePath(in.SiteID)}
}

func shapeGetSite(_ SiteRefInput, body []byte) (any, error) {
	var site any
	if err := json.Unmarshal(body, &site); err != nil {
		return nil, err
	}
	return GetSiteEnvelope{Success: true, Site: site}, nil
}
