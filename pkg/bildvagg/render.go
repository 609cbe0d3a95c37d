package bildvagg

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/manifest"
)

//go:embed assets/page.tmpl
var pageTmpl string

//go:embed assets/index.tmpl
var idxTmpl string

//go:embed assets/style.css
var styleText []byte

// DateFormat is how gallery dates are shown.
var DateFormat = "2006-01-02"

// wasmFiles are copied from Config.WasmDir into the shared asset directory.
var wasmFiles = []string{"wall.wasm", "wasm_exec.js"}

// Render writes the manifest and page shell of every gallery, the
// directory listings and the shared assets.
func Render(c *Config, a *Assembly) error {
	if err := copyAssets(c); err != nil {
		return fmt.Errorf("copyAssets: %w", err)
	}

	if err := writeGalleries(c, a.Galleries); err != nil {
		return fmt.Errorf("write galleries: %w", err)
	}

	if err := writeIndexes(c, a.Indexes); err != nil {
		return fmt.Errorf("write indexes: %w", err)
	}

	return nil
}

func copyAssets(c *Config) error {
	dir := filepath.Join(c.OutDir, thumbDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "style.css"), styleText, 0o644); err != nil {
		return err
	}

	if c.WasmDir == "" {
		klog.Warningf("no wasm directory configured, pages will not be interactive")
		return nil
	}
	for _, f := range wasmFiles {
		src := filepath.Join(c.WasmDir, f)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			klog.Warningf("%s is missing", src)
			continue
		}
		klog.V(1).Infof("copying %s", src)
		if err := copy.Copy(src, filepath.Join(dir, f)); err != nil {
			return err
		}
	}
	return nil
}

// Manifest converts g into the document the wall loads.
func Manifest(g *Gallery) *manifest.Gallery {
	mg := &manifest.Gallery{
		Info: manifest.Info{
			Title:    g.Title,
			Date:     g.Date.Format(DateFormat),
			Backlink: g.Backlink,
			Prev:     g.Prev,
			Next:     g.Next,
		},
		Items: make([]*manifest.Item, 0, len(g.Media)),
	}

	for i, m := range g.Media {
		it := &manifest.Item{
			Index:    i,
			Kind:     m.Kind,
			Src:      m.Basename + m.Ext,
			SrcSet:   srcSet(m),
			Width:    int(m.Width),
			Height:   int(m.Height),
			Caption:  m.Caption(),
			Basename: m.Basename,
		}
		if m.Poster != nil {
			it.Poster = posterSrc(m.Poster)
			if it.Width == 0 || it.Height == 0 {
				it.Width, it.Height = int(m.Poster.Width), int(m.Poster.Height)
			}
		}
		mg.Items = append(mg.Items, it)
	}
	return mg
}

// posterSrc prefers the smallest thumbnail of the still.
func posterSrc(p *Media) string {
	ss := srcSet(p)
	if len(ss) == 0 {
		return p.Basename + p.Ext
	}
	src, _, _ := strings.Cut(ss[0], " ")
	return src
}

func writeGalleries(c *Config, gs []*Gallery) error {
	klog.Infof("Writing out %d galleries ...", len(gs))
	for _, g := range gs {
		klog.V(1).Infof("rendering gallery %s [%s] with %d items ...", g.Title, g.OutPath, len(g.Media))
		mg := Manifest(g)

		if err := os.MkdirAll(g.OutPath, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		if err := manifest.Write(g.OutPath, mg); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}

		bs, err := renderPage(c, mg)
		if err != nil {
			return fmt.Errorf("render page: %w", err)
		}

		p := filepath.Join(g.OutPath, "index.html")
		klog.V(1).Infof("Writing gallery page to %s", p)
		if err := os.WriteFile(p, bs, 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
	}
	return nil
}

func writeIndexes(c *Config, is []*Index) error {
	for _, i := range is {
		klog.V(1).Infof("writing index %s with %d entries ...", i.OutPath, len(i.Entries))
		bs, err := renderIndex(c, i)
		if err != nil {
			return fmt.Errorf("render index: %w", err)
		}

		if err := os.MkdirAll(i.OutPath, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}

		p := filepath.Join(i.OutPath, "index.html")
		if err := os.WriteFile(p, bs, 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
	}
	return nil
}

func renderPage(c *Config, g *manifest.Gallery) ([]byte, error) {
	tmpl, err := template.New("page").Parse(pageTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	data := struct {
		Title       string
		Date        string
		Description string
		Root        string
		Items       []*manifest.Item
	}{
		Title:       g.Info.Title,
		Date:        g.Info.Date,
		Description: c.Description,
		Root:        c.Root,
		Items:       g.Items,
	}

	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}

func renderIndex(c *Config, i *Index) ([]byte, error) {
	tmpl, err := template.New("index").Parse(idxTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	data := struct {
		Title       string
		Description string
		Root        string
		Entries     []IndexEntry
	}{
		Title:   i.Title,
		Root:    c.Root,
		Entries: i.Entries,
	}
	if i.Dir == "." {
		data.Description = c.Description
	}

	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}
