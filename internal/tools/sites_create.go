package tools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
)

const defaultBranch = "main"

// repoPattern accepts "<owner>/<repo>" where both tokens are word
// characters, dots or dashes.
var repoPattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

var createSiteSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1, "description": "Name for the new site"},
		"repo": {"type": "string", "pattern": "^[\\w.-]+/[\\w.-]+$", "description": "GitHub repository in format owner/repo"},
		"branch": {"type": "string", "description": "Branch to deploy from (default: main)", "default": "main"},
		"buildCommand": {"type": "string", "minLength": 1, "description": "Build command to run"},
		"publishDir": {"type": "string", "minLength": 1, "description": "Directory containing the built files to publish"},
		"envVars": {"type": "object", "additionalProperties": {"type": "string"}, "description": "Environment variables for the build"}
	},
	"required": ["name", "repo", "buildCommand", "publishDir"]
}`)

type CreateSiteInput struct {
	Name         string
	Repo         string
	Branch       string
	BuildCommand string
	PublishDir   string
	// EnvVars is nil when the caller did not supply envVars.
	EnvVars map[string]string
}

type SiteSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	AdminURL  string `json:"admin_url"`
	DeployURL string `json:"deploy_url"`
	CreatedAt string `json:"created_at"`
}

type CreateSiteEnvelope struct {
	Success bool        `json:"success"`
	Site    SiteSummary `json:"site"`
	Message string      `json:"message"`
}

func validateCreateSite(a Args) (CreateSiteInput, error) {
	var in CreateSiteInput
	var err error

	if in.Name, err = a.requiredString("name"); err != nil {
		return in, err
	}
	if in.Repo, err = a.requiredString("repo"); err != nil {
		return in, err
	}
	if !repoPattern.MatchString(in.Repo) {
		return in, fmt.Errorf("Invalid repo format: %q, expected owner/repo", in.Repo)
	}
	if in.BuildCommand, err = a.requiredString("buildCommand"); err != nil {
		return in, err
	}
	if in.PublishDir, err = a.requiredString("publishDir"); err != nil {
		return in, err
	}

	branch, ok, err := a.optionalString("branch")
	if err != nil {
		return in, err
	}
	in.Branch = defaultBranch
	if ok && branch != "" {
		in.Branch = branch
	}

	if in.EnvVars, _, err = a.optionalStringMap("envVars"); err != nil {
		return in, err
	}
	return in, nil
}

func buildCreateSite(in CreateSiteInput) Request {
	repo := map[string]any{
		"provider": "github",
		"repo":     in.Repo,
		"branch":   in.Branch,
		"cmd":      in.BuildCommand,
		"dir":      in.PublishDir,
	}
	if in.EnvVars != nil {
		repo["env"] = in.EnvVars
	}
	return Request{
		Method: http.MethodPost,
		Path:   "/sites",
		Body: map[string]any{
			"name": in.Name,
			"repo": repo,
		},
	}
}

func shapeCreateSite(in CreateSiteInput, body []byte) (any, error) {
	var site SiteSummary
	if err := json.Unmarshal(body, &site); err != nil {
		return nil, err
	}
	name := site.Name
	if name == "" {
		name = in.Name
	}
	return CreateSiteEnvelope{
		Success: true,
		Site:    site,
		Message: fmt.Sprintf("Site %s created successfully", name),
	}, nil
}
