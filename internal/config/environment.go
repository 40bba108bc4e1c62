package config

import (
	"fmt"
	"strings"
)

// SiteEnvironment is the resolved deployment target exposed to templates.
type SiteEnvironment struct {
	Name    Environment `json:"environment"`
	BaseURL string      `json:"baseUrl"`
	URL     string      `json:"url"`
}

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(string) string

// ResolveEnvironment computes the base URL and absolute site URL.
//
// Development always serves from / on localhost. Production builds on GitHub
// Actions derive the URL from GITHUB_REPOSITORY: a repository named
// <owner>.github.io is a user site served from /, anything else is a project
// site served from /<repo>/. Other production builds take SITE_URL and
// BASE_URL from the environment, falling back to the config file.
func (c *Config) ResolveEnvironment(getenv Getenv) SiteEnvironment {
	if !c.IsProduction() {
		port := c.Server.Port
		if port == 0 {
			port = 8080
		}
		return SiteEnvironment{
			Name:    EnvDevelopment,
			BaseURL: "/",
			URL:     fmt.Sprintf("http://localhost:%d", port),
		}
	}

	out := SiteEnvironment{Name: EnvProduction}

	if getenv("GITHUB_ACTIONS") == "true" {
		repository := getenv("GITHUB_REPOSITORY")
		if repository == "" {
			repository = "username/repository-name"
		}
		owner, repo, _ := strings.Cut(repository, "/")
		if repo == owner+".github.io" {
			out.URL = fmt.Sprintf("https://%s.github.io", owner)
			out.BaseURL = "/"
		} else {
			out.URL = fmt.Sprintf("https://%s.github.io/%s", owner, repo)
			out.BaseURL = "/" + repo + "/"
		}
		return out
	}

	out.URL = firstNonEmpty(getenv("SITE_URL"), c.URL, "https://example.com")
	out.BaseURL = normalizeBase(firstNonEmpty(getenv("BASE_URL"), c.BaseURL, "/"))
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalizeBase(base string) string {
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
