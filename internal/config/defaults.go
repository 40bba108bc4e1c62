package config

// DefaultCollections are the content types shipped with a new site.
var DefaultCollections = []Collection{
	{Name: "experience", Glob: "content/experience/*.md"},
	{Name: "work", Glob: "content/work/*.md"},
}

// DefaultPassthrough maps source-relative directories to output-relative ones.
var DefaultPassthrough = map[string]string{
	"assets/images": "assets/images",
	"assets/js":     "assets/js",
	"static":        "static",
}

// DefaultHelpMessages is printed when a build fails validation.
var DefaultHelpMessages = HelpMessages{
	General: []string{
		"Every content file starts with a YAML frontmatter block between --- lines",
		"Required fields depend on the content type, see content-schemas.json",
		"Field types must match the schema (strings quoted when ambiguous, lists for arrays)",
	},
	Tags: []string{
		"Tags are a YAML list, for example: tags: [science, tech]",
		"Use only the tags listed under validation.tags.validValues",
		"Each entry needs at least one tag",
	},
	WorkTypes: []string{
		"Work items need a type field",
		"Use project for software and research projects",
		"Use publication for papers and articles",
	},
	Images: []string{
		"Image paths start with /, assets/ or static/",
		"Put images under src/assets/images or src/static",
		"Missing images are warnings in development and errors in production",
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	collections := make([]Collection, len(DefaultCollections))
	copy(collections, DefaultCollections)

	passthrough := make(map[string]string, len(DefaultPassthrough))
	for k, v := range DefaultPassthrough {
		passthrough[k] = v
	}

	return &Config{
		SiteTitle:   "Portfolio",
		SourceDir:   "src",
		OutputDir:   "_site",
		DataDir:     "_data",
		IncludesDir: "_includes",
		Environment: EnvDevelopment,
		BaseURL:     "/",
		Collections: collections,
		PagesGlob:   "pages/**/*.md",
		Passthrough: passthrough,
		CacheDir:    ".folio",
		Validation: ValidationConfig{
			Enabled:        true,
			FailOnWarnings: false,
			HelpMessages:   DefaultHelpMessages,
		},
		Server: ServerConfig{
			Port:       8080,
			LiveReload: true,
		},
		Verify: VerifyConfig{
			RequiredFiles: []string{
				"index.html",
				"assets/css/main.css",
				"assets/js/content-filter.js",
				"assets/js/theme-system.js",
			},
			SizeBudgetsKB: map[string]int{
				"assets/css/main.css":         100,
				"assets/js/content-filter.js": 50,
				"assets/js/theme-system.js":   20,
			},
			IndexMarkers: []string{
				"data-sidebar",
				"filter-button",
				"theme-system.js",
			},
		},
	}
}
