// Package view is the browser-side controller of the photo wall: it lays
// out a gallery as a packed grid, opens single items in an overlay, and
// keeps the layout in step with the viewport and the address bar.
//
// A Page is not safe for concurrent use. Every method, and every handler
// it installs, runs on the host's event thread.
package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/tstromberg/bildvagg/pkg/layout"
	"github.com/tstromberg/bildvagg/pkg/manifest"
	"github.com/tstromberg/bildvagg/pkg/throttle"
	"github.com/tstromberg/bildvagg/pkg/urlpath"
)

// Element ids the page shell must provide.
const (
	idTitle   = "title"
	idGallery = "gallery"
	idBrowse  = "browse"
	idHome    = "nav-home"
	idPrev    = "nav-prev"
	idNext    = "nav-next"
)

// fullscreenGuard is the number of resize notifications to ignore after
// leaving fullscreen video; browsers emit two redundant ones.
const fullscreenGuard = 2

// State is the active view.
type State int

const (
	StateGrid State = iota
	StateSingle
)

func (s State) String() string {
	if s == StateSingle {
		return "single"
	}
	return "grid"
}

// Config tunes a Page.
type Config struct {
	// BaseURL prefixes relative asset URLs. When empty and DeepLinking is
	// set, the gallery's own path is used.
	BaseURL string
	// DeepLinking makes every single item addressable as <base>i/<basename>/.
	DeepLinking bool
	// ResizeInterval throttles resize handling. Defaults to 200ms.
	ResizeInterval time.Duration
	// Margin between boxes. Defaults to 2.
	Margin float64
	// Packer defaults to layout.Pack.
	Packer Packer
	// Clock defaults to the real clock.
	Clock clock.WithDelayedExecution
	// Fetch retrieves a manifest. Defaults to manifest.Fetch over HTTP.
	Fetch func(ctx context.Context, url string) (*manifest.Gallery, error)
}

// Page owns a gallery page: the grid, the single view and the handlers
// that move between them.
type Page struct {
	host      Host
	cfg       Config
	base      string
	assetBase string
	startWith string

	gallery  *manifest.Gallery
	grid     *Grid
	single   *single
	captions bool
	inhibit  bool
	guard    int

	resize *throttle.Throttle[struct{}]
	subs   subscriptions
}

// New returns a Page for the address currently shown by h.
func New(h Host, c Config) *Page {
	if c.ResizeInterval <= 0 {
		c.ResizeInterval = 200 * time.Millisecond
	}
	if c.Margin <= 0 {
		c.Margin = 2
	}
	if c.Packer == nil {
		c.Packer = layout.Pack
	}
	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}
	if c.Fetch == nil {
		c.Fetch = func(ctx context.Context, url string) (*manifest.Gallery, error) {
			return manifest.Fetch(ctx, nil, url)
		}
	}

	p := &Page{host: h, cfg: c, captions: true}

	path := h.Path()
	if c.DeepLinking {
		base, name, ok := urlpath.ParseDeepLink(path)
		if ok {
			klog.V(1).Infof("deep link to %q in %s", name, base)
			path = base
			p.startWith = name
		}
	}
	path = strings.TrimSuffix(path, "index.html")
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	p.base = path

	switch {
	case c.BaseURL != "":
		p.assetBase = c.BaseURL
		if !strings.HasSuffix(p.assetBase, "/") {
			p.assetBase += "/"
		}
	case c.DeepLinking:
		p.assetBase = p.base
	}

	p.resize = throttle.New(c.Clock, c.ResizeInterval, func(struct{}) { p.reconcile() }, throttle.WithDispatch(h.Post))
	return p
}

// Load fetches the gallery manifest and sets up the page. On failure the
// error is shown in the title area and returned.
func (p *Page) Load(ctx context.Context) error {
	url := p.base + manifest.FileName
	klog.Infof("loading %s", url)

	g, err := p.cfg.Fetch(ctx, url)
	if err != nil {
		klog.Errorf("fetch %s: %v", url, err)
		p.showError(err)
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	return p.Setup(g)
}

// Setup renders g and installs the page-level handlers. If the address
// named an item, single view opens on it once the grid is in place.
func (p *Page) Setup(g *manifest.Gallery) error {
	container := p.host.Lookup(idGallery)
	if container == nil {
		return fmt.Errorf("missing #%s element", idGallery)
	}
	if err := g.Number(); err != nil {
		return fmt.Errorf("number items: %w", err)
	}

	p.gallery = g
	p.grid = &Grid{
		host:      p.host,
		container: container,
		pack:      p.cfg.Packer,
		margin:    p.cfg.Margin,
		asset:     p.asset,
		open:      p.Open,
	}

	p.renderChrome(g.Info)

	if err := p.grid.Render(g.Items); err != nil {
		klog.Warningf("initial layout: %v", err)
	}
	klog.Infof("%s: %d items", p.base, len(g.Items))

	p.subs.add(p.host.OnKeyDown(p.pageKey))
	p.subs.add(p.host.OnResize(p.Resize))
	p.Resize()

	if name := p.startWith; name != "" {
		p.startWith = ""
		it, ok := g.Find(name)
		if !ok || !it.Browsable() {
			klog.Warningf("%s has no image named %q", p.base, name)
			p.host.ReplacePath(p.base)
			return nil
		}
		p.Open(it)
	}
	return nil
}

// Close tears down single view and every page-level handler.
func (p *Page) Close() {
	p.closeSingle()
	p.subs.cancel()
	p.resize.Stop()
	if p.grid != nil {
		p.grid.close()
	}
}

// Resize requests a throttled layout pass.
func (p *Page) Resize() {
	p.resize.Call(struct{}{})
}

// reconcile re-lays out the grid unless a fullscreen video is, or just
// was, in the way.
func (p *Page) reconcile() {
	if p.host.Fullscreen() {
		p.guard = fullscreenGuard
		klog.V(2).Infof("fullscreen, skipping layout")
		return
	}
	if p.guard > 0 {
		p.guard--
		klog.V(2).Infof("left fullscreen, skipping layout (%d more)", p.guard)
		return
	}
	if p.grid == nil {
		return
	}

	if err := p.grid.Render(p.gallery.Items); err != nil {
		klog.Warningf("layout: %v", err)
	}
	if p.single != nil {
		p.single.reflow()
	}
}

func (p *Page) pageKey(k Key) bool {
	if p.inhibit {
		return false
	}

	k = NormalizeKey(k)
	switch k.Name {
	case KeyRight:
		p.activate(idPrev)
	case KeyLeft:
		p.activate(idNext)
	case KeyEscape:
		p.activate(idHome)
	case KeyZero:
		if el := p.grid.First(); el != nil {
			el.Click()
		}
	default:
		return false
	}
	return true
}

func (p *Page) activate(id string) {
	if el := p.host.Lookup(id); el != nil {
		el.Click()
	}
}

func (p *Page) renderChrome(info manifest.Info) {
	if t := p.host.Lookup(idTitle); t != nil {
		t.Clear()
		date := p.host.Create("span")
		date.AddClass("date")
		date.SetText(info.Date)
		title := p.host.Create("span")
		title.AddClass("title")
		title.SetText(info.Title)
		t.Append(date)
		t.Append(title)
	}
	p.host.SetTitle(info.Title + " / " + info.Date)

	if !info.Backlink {
		return
	}
	p.showNav(idHome, urlpath.Home(p.base))
	if info.Prev != "" {
		p.showNav(idPrev, urlpath.Sibling(p.base, info.Prev))
	}
	if info.Next != "" {
		p.showNav(idNext, urlpath.Sibling(p.base, info.Next))
	}
}

func (p *Page) showNav(id string, target string) {
	el := p.host.Lookup(id)
	if el == nil {
		return
	}
	el.SetStyle("display", "inline-block")
	p.subs.add(el.OnClick(func(Pointer) {
		klog.V(1).Infof("navigating to %s", target)
		p.host.Navigate(target)
	}))
}

func (p *Page) showError(err error) {
	t := p.host.Lookup(idTitle)
	if t == nil {
		return
	}
	t.Clear()
	msg := p.host.Create("span")
	msg.AddClass("error")
	msg.SetText(fmt.Sprintf("unable to load gallery: %v", err))
	t.Append(msg)
}

// asset resolves a manifest URL against the asset base.
func (p *Page) asset(src string) string {
	if p.assetBase == "" || src == "" || strings.HasPrefix(src, "/") || isExternal(src) {
		return src
	}
	return p.assetBase + src
}

func isExternal(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "//")
}

// State returns the active view.
func (p *Page) State() State {
	if p.single != nil {
		return StateSingle
	}
	return StateGrid
}

// Current returns the item shown in single view, or nil.
func (p *Page) Current() *manifest.Item {
	if p.single == nil {
		return nil
	}
	return p.single.item
}

// CaptionsVisible reports whether single view shows captions.
func (p *Page) CaptionsVisible() bool { return p.captions }

// KeysInhibited reports whether page-level keys are suspended.
func (p *Page) KeysInhibited() bool { return p.inhibit }

// Guard returns the number of resize notifications still to be ignored.
func (p *Page) Guard() int { return p.guard }

// Base returns the gallery's own address.
func (p *Page) Base() string { return p.base }

// Gallery returns the loaded manifest, or nil before Setup.
func (p *Page) Gallery() *manifest.Gallery { return p.gallery }
