package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// configPath and returns it.
func RunWizard(configPath string) (*Config, error) {
	fmt.Println("Welcome to folio! Let's configure your portfolio site.")
	fmt.Println()

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite", configPath),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			return nil, fmt.Errorf("aborted: %s left unchanged", configPath)
		}
	}

	// 1. Site title.
	titlePrompt := promptui.Prompt{
		Label:   "Site title",
		Default: cfg.SiteTitle,
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site title: %w", err)
	}
	cfg.SiteTitle = strings.TrimSpace(title)

	// 2. Deployment target.
	envPrompt := promptui.Select{
		Label: "Default build environment",
		Items: []string{
			"development - local preview served from /",
			"production  - deployed site, URLs from SITE_URL or GitHub Pages",
		},
	}
	envIdx, _, err := envPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("environment selection: %w", err)
	}
	cfg.Environment = []Environment{EnvDevelopment, EnvProduction}[envIdx]

	// 3. Public URL.
	urlPrompt := promptui.Prompt{
		Label:   "Public site URL (blank to derive at build time)",
		Default: "",
	}
	siteURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site url: %w", err)
	}
	cfg.URL = strings.TrimSpace(siteURL)

	// 4. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for the generated site",
		Default: cfg.OutputDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	cfg.OutputDir = outputDir

	// 5. Extra content types.
	extraPrompt := promptui.Prompt{
		Label:   "Extra content types besides experience and work (comma-separated)",
		Default: "",
	}
	extraStr, err := extraPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content types: %w", err)
	}
	for _, name := range splitAndTrim(extraStr) {
		cfg.Collections = append(cfg.Collections, Collection{
			Name: name,
			Glob: path.Join("content", name, "*.md"),
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and drops blank entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
