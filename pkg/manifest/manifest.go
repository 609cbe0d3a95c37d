// Package manifest describes one gallery: its chrome and its media items.
//
// The builder writes a manifest as index.json next to each gallery page,
// and the wall fetches it at load time.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// FileName is the name of the manifest within a gallery directory.
const FileName = "index.json"

// ErrKind is returned when an item declares a kind we do not render.
var ErrKind = errors.New("unknown item kind")

// Kind tells images and videos apart.
type Kind string

const (
	Image Kind = "image"
	Video Kind = "video"
)

// Info describes the gallery chrome and its sibling navigation.
type Info struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Backlink bool   `json:"backlink"`
	Prev     string `json:"prev,omitempty"`
	Next     string `json:"next,omitempty"`
}

// Item is one photo or video. Index is assigned on decode.
type Item struct {
	Index    int      `json:"-"`
	Kind     Kind     `json:"kind"`
	Src      string   `json:"src"`
	SrcSet   []string `json:"srcset,omitempty"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Caption  string   `json:"caption,omitempty"`
	Poster   string   `json:"poster,omitempty"`
	Basename string   `json:"basename,omitempty"`
}

// Aspect returns width / height, or 1 when the dimensions are unknown.
func (i *Item) Aspect() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return 1
	}
	return float64(i.Width) / float64(i.Height)
}

// Browsable reports whether the item can be opened in single view.
func (i *Item) Browsable() bool {
	return i.Kind == Image
}

// Gallery is a decoded manifest.
type Gallery struct {
	Info  Info    `json:"info"`
	Items []*Item `json:"items"`
}

// Find returns the item with the given basename.
func (g *Gallery) Find(basename string) (*Item, bool) {
	if basename == "" {
		return nil, false
	}
	for _, i := range g.Items {
		if i.Basename == basename {
			return i, true
		}
	}
	return nil, false
}

// Number assigns Index in item order and settles each item's kind.
func (g *Gallery) Number() error {
	for n, i := range g.Items {
		if i == nil {
			return fmt.Errorf("item %d: empty record", n)
		}
		switch i.Kind {
		case "":
			i.Kind = Image
		case Image, Video:
		default:
			return fmt.Errorf("item %d: %w %q", n, ErrKind, i.Kind)
		}
		i.Index = n
	}
	return nil
}

// Decode reads a manifest and numbers its items.
func Decode(r io.Reader) (*Gallery, error) {
	g := &Gallery{}
	if err := json.NewDecoder(r).Decode(g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := g.Number(); err != nil {
		return nil, err
	}
	return g, nil
}

// Fetch retrieves and decodes the manifest at url.
func Fetch(ctx context.Context, c *http.Client, url string) (*Gallery, error) {
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: %s", url, resp.Status)
	}
	return Decode(resp.Body)
}

// Write stores g as the manifest of dir, replacing any previous one.
func Write(dir string, g *Gallery) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	bs, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	p := filepath.Join(dir, FileName)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, bs, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
