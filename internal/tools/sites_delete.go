package tools

import (
	"fmt"
	"net/http"
)

type DeleteSiteEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func buildDeleteSite(in SiteRefInput) Request {
	return Request{Method: http.MethodDelete, Path: sitePath(in.SiteID)}
}

// shapeDeleteSite ignores the body; the API answers 204 with nothing in it.
func shapeDeleteSite(in SiteRefInput, _ []byte) (any, error) {
	return DeleteSiteEnvelope{
		Success: true,
		Message: fmt.Sprintf("Site %s deleted successfully", in.SiteID),
	}, nil
}
