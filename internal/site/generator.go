package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/content"
	"github.com/qtpi-bonding/folio/internal/progress"
	"github.com/qtpi-bonding/folio/internal/theme"
)

// Generator renders a content library into a static site.
type Generator struct {
	Config   *config.Config
	Logger   *zap.Logger
	Reporter progress.Reporter

	// Cache, when set, lets unchanged files be skipped without hashing the
	// file on disk. Outputs are recorded against BuildID.
	Cache   OutputCache
	BuildID string

	// LiveReload injects the dev server reload script into every page.
	LiveReload bool

	Getenv config.Getenv
	Now    func() time.Time
}

// NewGenerator creates a Generator with no cache and no progress output.
func NewGenerator(cfg *config.Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		Config:   cfg,
		Logger:   logger,
		Reporter: progress.Nop{},
		Getenv:   os.Getenv,
		Now:      time.Now,
	}
}

// Result summarises one build.
type Result struct {
	Pages    int
	Written  int
	Skipped  int
	Duration time.Duration
}

// Section is one collection on the home page.
type Section struct {
	Name  string
	Title string
	Items []*content.Item
}

// pageData holds the data passed to the HTML templates for each page.
type pageData struct {
	Site        SiteData
	Navigation  Navigation
	Environment config.SiteEnvironment
	CacheBuster string
	Sidebar     theme.Sidebar
	LiveReload  bool

	Title   string
	Path    string
	Page    *content.Item
	Content template.HTML

	IsHome   bool
	Sections []Section
	Tags     []string
}

// NavHref resolves a navigation target. Fragment links point into the home
// page when rendered anywhere else.
func (p pageData) NavHref(href string) string {
	if strings.HasPrefix(href, "#") {
		if p.IsHome {
			return href
		}
		return JoinURL(p.Environment.BaseURL, "/") + href
	}
	return JoinURL(p.Environment.BaseURL, href)
}

// Description is the page summary, else the site description.
func (p pageData) Description() string {
	if p.Page != nil {
		if s := p.Page.Summary(); s != "" {
			return s
		}
	}
	return p.Site.Description
}

// Canonical is the absolute URL of the page.
func (p pageData) Canonical() string {
	return strings.TrimSuffix(p.Environment.URL, "/") + p.Path
}

// LoadLibrary loads the configured collections and standalone pages.
func LoadLibrary(cfg *config.Config) (*content.Library, error) {
	lib, err := content.Load(cfg.SourceDir, cfg.Collections)
	if err != nil {
		return nil, err
	}
	pages, err := content.LoadPages(cfg.SourceDir, cfg.PagesGlob)
	if err != nil {
		return nil, err
	}
	lib.Pages = pages
	return lib, nil
}

// Generate renders lib into the output directory.
func (g *Generator) Generate(ctx context.Context, lib *content.Library) (*Result, error) {
	start := g.Now()
	cfg := g.Config

	data, err := LoadData(cfg)
	if err != nil {
		return nil, err
	}
	env := cfg.ResolveEnvironment(g.Getenv)

	cacheBuster := "dev"
	if cfg.IsProduction() {
		cacheBuster = strconv.FormatInt(start.Unix(), 10)
	}

	tmpl, err := loadTemplates(cfg.IncludesPath(), funcMap(env.BaseURL, data.Variants))
	if err != nil {
		return nil, err
	}

	md := newMarkdown()
	for _, it := range append(lib.All(), lib.Pages...) {
		if it.Err != nil {
			continue
		}
		if err := renderMarkdown(md, it); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", it.RelPath, err)
		}
	}

	base := pageData{
		Site:        data.Site,
		Navigation:  data.Navigation,
		Environment: env,
		CacheBuster: cacheBuster,
		Sidebar:     data.Sidebar(),
		LiveReload:  g.LiveReload,
	}

	jobs, err := g.plan(lib, base)
	if err != nil {
		return nil, err
	}

	w := &writer{ctx: ctx, dir: cfg.OutputDir, cache: g.Cache, buildID: g.BuildID}

	g.Reporter.Start(len(jobs))
	for i, job := range jobs {
		t, err := layoutFor(tmpl, job.layout, job.fallback)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", job.source, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, job.data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", job.source, err)
		}
		if err := w.write(job.output, buf.Bytes()); err != nil {
			return nil, err
		}
		g.Logger.Debug("rendered page", zap.String("source", job.source), zap.String("output", job.output))
		g.Reporter.Update(i+1, job.output)
	}
	g.Reporter.Finish()

	if err := g.writeAssets(w, data); err != nil {
		return nil, err
	}

	index, err := MarshalSearchIndex(BuildSearchIndex(append(lib.All(), lib.Pages...)))
	if err != nil {
		return nil, fmt.Errorf("building search index: %w", err)
	}
	if err := w.write(SearchIndexFile, index); err != nil {
		return nil, fmt.Errorf("writing search index: %w", err)
	}

	return &Result{
		Pages:    len(jobs),
		Written:  w.written,
		Skipped:  w.skipped,
		Duration: g.Now().Sub(start),
	}, nil
}

type renderJob struct {
	source   string
	output   string
	layout   string
	fallback string
	data     pageData
}

// plan lists the pages to render: the home page, then collection items in
// collection order, then standalone pages. Two sources claiming the same
// output file is an error.
func (g *Generator) plan(lib *content.Library, base pageData) ([]renderJob, error) {
	all := lib.All()

	home := base
	home.IsHome = true
	home.Path = "/"
	home.Title = base.Site.Title
	home.Tags = content.AllTags(all)
	for _, name := range lib.Names {
		home.Sections = append(home.Sections, Section{Name: name, Title: TitleCase(name), Items: lib.Items(name)})
	}

	homeJob := renderJob{source: "home", output: "index.html", fallback: LayoutHome}
	var pages []*content.Item
	for _, p := range lib.Pages {
		if p.Err == nil && p.URL == "/" {
			home.Page = p
			home.Content = p.HTML
			if t := strings.TrimSpace(p.String("title")); t != "" {
				home.Title = t
			}
			homeJob.source = p.RelPath
			homeJob.layout = p.Layout()
			continue
		}
		pages = append(pages, p)
	}
	homeJob.data = home

	jobs := []renderJob{homeJob}
	claimed := map[string]string{homeJob.output: homeJob.source}

	add := func(it *content.Item, fallback string) error {
		if it.Err != nil {
			return nil
		}
		out := OutputPath(it.URL)
		if escapesOutput(out) {
			return fmt.Errorf("%s: permalink %s resolves outside the output directory", it.RelPath, it.URL)
		}
		if prev, ok := claimed[out]; ok {
			return fmt.Errorf("%s and %s both render to %s", prev, it.RelPath, out)
		}
		claimed[out] = it.RelPath

		d := base
		d.Title = it.Title()
		d.Path = it.URL
		d.Page = it
		d.Content = it.HTML
		jobs = append(jobs, renderJob{source: it.RelPath, output: out, layout: it.Layout(), fallback: fallback, data: d})
		return nil
	}

	for _, it := range all {
		if err := add(it, LayoutItem); err != nil {
			return nil, err
		}
	}
	for _, p := range pages {
		if err := add(p, LayoutPage); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// writeAssets writes the embedded stylesheets and scripts, the generated
// color tokens and the passthrough directories. Each output path is written
// once: a passthrough file replaces the built-in asset at the same path, and
// when two passthrough sources collide the later source in sorted order wins.
func (g *Generator) writeAssets(w *writer, data *Data) error {
	copies, err := g.passthrough()
	if err != nil {
		return err
	}

	assets, err := Assets()
	if err != nil {
		return fmt.Errorf("reading embedded assets: %w", err)
	}
	for _, a := range assets {
		if _, ok := copies[a.Path]; ok {
			g.Logger.Debug("built-in asset replaced by passthrough", zap.String("path", a.Path))
			continue
		}
		if err := w.write(a.Path, a.Data); err != nil {
			return err
		}
	}

	if _, ok := copies[theme.CSSPath]; !ok {
		if data.Theme != nil {
			if err := w.write(theme.CSSPath, []byte(theme.GenerateCSS(data.Theme))); err != nil {
				return err
			}
		} else {
			g.Logger.Warn("no theme file, skipping color tokens", zap.String("file", g.Config.DataPath(theme.FileName)))
		}
	}

	paths := make([]string, 0, len(copies))
	for p := range copies {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := w.write(p, copies[p]); err != nil {
			return err
		}
	}
	return nil
}

// passthrough reads the configured passthrough directories, keyed by
// output-relative path.
func (g *Generator) passthrough() (map[string][]byte, error) {
	from := make([]string, 0, len(g.Config.Passthrough))
	for src := range g.Config.Passthrough {
		from = append(from, src)
	}
	sort.Strings(from)

	copies := map[string][]byte{}
	for _, src := range from {
		dir := filepath.Join(g.Config.SourceDir, filepath.FromSlash(src))
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			g.Logger.Debug("passthrough source missing", zap.String("dir", dir))
			continue
		}
		files, err := readTree(dir, g.Config.Passthrough[src])
		if err != nil {
			return nil, fmt.Errorf("copying %s: %w", src, err)
		}
		for _, f := range files {
			copies[f.Path] = f.Data
		}
		g.Logger.Debug("read passthrough", zap.String("from", src), zap.Int("files", len(files)))
	}
	return copies, nil
}

// OutputPath maps a page URL to its cleaned output-relative file path:
// /work/a/ becomes work/a/index.html, /feed.xml stays feed.xml. A URL that
// climbs above the site root keeps its leading "../" elements; see
// escapesOutput.
func OutputPath(url string) string {
	p := strings.TrimPrefix(url, "/")
	switch {
	case p == "" || strings.HasSuffix(p, "/"):
		p += "index.html"
	case path.Ext(p) == "":
		p += "/index.html"
	}
	return path.Clean(p)
}

// escapesOutput reports whether a cleaned output-relative path points
// outside the output directory.
func escapesOutput(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel)
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

func renderMarkdown(md goldmark.Markdown, it *content.Item) error {
	var buf bytes.Buffer
	if err := md.Convert(it.Body, &buf); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	it.HTML = template.HTML(buf.String())
	return nil
}
