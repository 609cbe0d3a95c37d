package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/layout"
	"github.com/tstromberg/bildvagg/pkg/manifest"
)

// Packer arranges items of the given aspect ratios into rows.
type Packer func(aspects []float64, maxWidth float64, maxHeight float64, o layout.Options) ([][]layout.Box, error)

// Grid renders the packed photo wall into a container element.
type Grid struct {
	host      Host
	container Element
	pack      Packer
	margin    float64
	asset     func(string) string
	open      func(*manifest.Item)

	images map[int]Element
	first  Element
	subs   subscriptions
}

// Render lays out items and replaces the container's content with them.
// A packer error leaves the container untouched.
func (g *Grid) Render(items []*manifest.Item) error {
	_, vh := g.host.Viewport()
	width := g.container.Bounds().Width - 1

	aspects := make([]float64, len(items))
	for i, it := range items {
		aspects[i] = it.Aspect()
	}

	rows, err := g.pack(aspects, width, vh, layout.Options{Margin: g.margin})
	if err != nil {
		return fmt.Errorf("pack %d items into %gx%g: %w", len(items), width, vh, err)
	}

	g.subs.cancel()
	g.container.Clear()
	g.images = map[int]Element{}
	g.first = nil

	n := 0
	for _, row := range rows {
		for _, b := range row {
			g.container.Append(g.box(items[b.Index], b))
			n++
		}
	}
	klog.V(2).Infof("rendered %d boxes in %d rows at width %g", n, len(rows), width)
	return nil
}

func (g *Grid) box(it *manifest.Item, b layout.Box) Element {
	div := g.host.Create("div")
	div.AddClass("image")

	var content Element
	switch it.Kind {
	case manifest.Video:
		content = g.host.Create("video")
		content.SetAttr("controls", "")
		if it.Poster != "" {
			content.SetAttr("poster", g.asset(it.Poster))
		}
		src := g.host.Create("source")
		src.SetAttr("src", g.asset(it.Src))
		content.Append(src)
	default:
		content = g.host.Create("img")
		content.SetAttr("src", g.asset(it.Src))
		if len(it.SrcSet) > 0 {
			content.SetAttr("srcset", srcset(it.SrcSet, g.asset))
		}
		g.subs.add(content.OnClick(func(Pointer) { g.open(it) }))
		g.images[it.Index] = content
		if g.first == nil {
			g.first = content
		}
	}

	content.SetStyle("display", "block")
	content.SetAttr("width", px(b.Width))
	content.SetAttr("height", px(b.Height))
	content.SetAttr("data-n", strconv.Itoa(it.Index))
	div.Append(content)

	if it.Caption != "" {
		c := g.host.Create("div")
		c.AddClass("caption")
		c.SetText(it.Caption)
		div.Append(c)
	}
	return div
}

func srcset(ss []string, asset func(string) string) string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = asset(s)
	}
	return strings.Join(out, ", ")
}

// Lookup returns the rendered image element for the item at index.
func (g *Grid) Lookup(index int) (Element, bool) {
	el, ok := g.images[index]
	return el, ok
}

// First returns the first rendered image element, or nil.
func (g *Grid) First() Element {
	return g.first
}

func (g *Grid) close() {
	g.subs.cancel()
}

func px(v float64) string {
	return strconv.Itoa(int(math.Floor(v)))
}
