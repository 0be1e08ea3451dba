package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/starford/learnings/internal/checksum"
)

//go:embed assets
var assetFS embed.FS

// asset is an immutable in-memory file with a content-derived ETag.
type asset struct {
	name        string
	contentType string
	data        []byte
	etag        string
}

func newAsset(name, contentType string, data []byte) *asset {
	return &asset{
		name:        name,
		contentType: contentType,
		data:        data,
		etag:        checksum.ETag(data),
	}
}

func (a *asset) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("ETag", a.etag)
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, a.name, time.Time{}, bytes.NewReader(a.data))
}

// manifest is the web app manifest that makes the site installable.
type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Icons           []manifestIcon `json:"icons"`
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// shell holds the static assets served alongside the page.
type shell struct {
	static   map[string]*asset
	manifest *asset
	worker   *asset
	version  string
}

func loadShell(title string) (*shell, error) {
	read := func(name string) ([]byte, error) {
		data, err := assetFS.ReadFile("assets/" + name)
		if err != nil {
			return nil, fmt.Errorf("web: read asset %s: %w", name, err)
		}
		return data, nil
	}

	s := &shell{static: make(map[string]*asset)}
	var all [][]byte
	for _, f := range []struct{ name, ctype string }{
		{"app.css", "text/css; charset=utf-8"},
		{"app.js", "text/javascript; charset=utf-8"},
		{"icon.svg", "image/svg+xml"},
	} {
		data, err := read(f.name)
		if err != nil {
			return nil, err
		}
		s.static[f.name] = newAsset(f.name, f.ctype, data)
		all = append(all, data)
	}

	m, err := json.MarshalIndent(manifest{
		Name:            title,
		ShortName:       "Learnings",
		Description:     "Track what you learn each day",
		StartURL:        "/",
		Display:         "standalone",
		ThemeColor:      "#000000",
		BackgroundColor: "#ffffff",
		Icons: []manifestIcon{
			{Src: "/static/icon.svg", Sizes: "any", Type: "image/svg+xml"},
		},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("web: encode manifest: %w", err)
	}
	s.manifest = newAsset("manifest.webmanifest", "application/manifest+json", m)
	all = append(all, m)

	s.version = checksum.Version(all...)

	sw, err := read("sw.js")
	if err != nil {
		return nil, err
	}
	sw = []byte(strings.ReplaceAll(string(sw), "{{VERSION}}", s.version))
	s.worker = newAsset("sw.js", "text/javascript; charset=utf-8", sw)

	return s, nil
}
