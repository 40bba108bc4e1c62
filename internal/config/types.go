package config

// Environment selects development or production build behaviour.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config is the top-level folio configuration, corresponding to folio.yml.
type Config struct {
	SiteTitle   string            `yaml:"site_title" koanf:"site_title"`
	SourceDir   string            `yaml:"source_dir" koanf:"source_dir"`
	OutputDir   string            `yaml:"output_dir" koanf:"output_dir"`
	DataDir     string            `yaml:"data_dir" koanf:"data_dir"`
	IncludesDir string            `yaml:"includes_dir" koanf:"includes_dir"`
	Environment Environment       `yaml:"environment" koanf:"environment"`
	BaseURL     string            `yaml:"base_url" koanf:"base_url"`
	URL         string            `yaml:"url" koanf:"url"`
	Collections []Collection      `yaml:"collections" koanf:"collections"`
	PagesGlob   string            `yaml:"pages_glob" koanf:"pages_glob"`
	Passthrough map[string]string `yaml:"passthrough" koanf:"passthrough"`
	CacheDir    string            `yaml:"cache_dir" koanf:"cache_dir"`
	Validation  ValidationConfig  `yaml:"validation" koanf:"validation"`
	Server      ServerConfig      `yaml:"server" koanf:"server"`
	Verify      VerifyConfig      `yaml:"verify" koanf:"verify"`
}

// Collection binds a content type to the glob that selects its files,
// relative to the source directory.
type Collection struct {
	Name string `yaml:"name" koanf:"name"`
	Glob string `yaml:"glob" koanf:"glob"`
}

// ValidationConfig controls pre-build validation.
type ValidationConfig struct {
	Enabled        bool         `yaml:"enabled" koanf:"enabled"`
	FailOnWarnings bool         `yaml:"fail_on_warnings" koanf:"fail_on_warnings"`
	HelpMessages   HelpMessages `yaml:"help_messages" koanf:"help_messages"`
}

// HelpMessages are printed when validation fails.
type HelpMessages struct {
	General   []string `yaml:"general" koanf:"general"`
	Tags      []string `yaml:"tags" koanf:"tags"`
	WorkTypes []string `yaml:"work_types" koanf:"work_types"`
	Images    []string `yaml:"images" koanf:"images"`
}

// ServerConfig holds dev server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	LiveReload      bool `yaml:"live_reload" koanf:"live_reload"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// VerifyConfig lists the deployment checks run by `folio verify`.
type VerifyConfig struct {
	RequiredFiles []string       `yaml:"required_files" koanf:"required_files"`
	RequiredPages []string       `yaml:"required_pages" koanf:"required_pages"`
	SizeBudgetsKB map[string]int `yaml:"size_budgets_kb" koanf:"size_budgets_kb"`
	IndexMarkers  []string       `yaml:"index_markers" koanf:"index_markers"`
}
