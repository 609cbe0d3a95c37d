package view

import (
	"math"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/manifest"
	"github.com/tstromberg/bildvagg/pkg/urlpath"
)

// Action is the outcome of a click or key press in single view.
type Action int

const (
	Exit Action = iota
	Prev
	Next
)

func (a Action) String() string {
	switch a {
	case Prev:
		return "prev"
	case Next:
		return "next"
	default:
		return "exit"
	}
}

// Keyboard equivalents of a click position.
const (
	xposPrev = 1
	xposExit = 50
	xposNext = 99
)

// captionInset is the distance of the caption from the image's bottom left.
const captionInset = 16

// Nav maps a horizontal click position, in percent of the element width,
// to an action: the left third steps back, the right third steps forward
// and the middle returns to the grid.
func Nav(xpos int) Action {
	switch {
	case xpos < 33:
		return Prev
	case xpos > 66:
		return Next
	default:
		return Exit
	}
}

// Step returns the index to open after a click at xpos on the item at
// index, and false when the click exits to the grid.
func Step(xpos int, index int) (int, bool) {
	switch Nav(xpos) {
	case Prev:
		return index - 1, true
	case Next:
		return index + 1, true
	default:
		return index, false
	}
}

// xpos returns the position of p within r in whole percent.
func xpos(r Rect, p Pointer) int {
	if r.Width <= 0 {
		return xposExit
	}
	return int(math.Floor((p.ClientX - r.Left) / r.Width * 100))
}

// single is the overlay showing one item.
type single struct {
	page    *Page
	item    *manifest.Item
	browse  Element
	overlay Element
	caption Element
	subs    subscriptions
}

// Open enters single view for item. Items that cannot be browsed, such as
// videos, are ignored.
func (p *Page) Open(item *manifest.Item) {
	if item == nil || !item.Browsable() {
		return
	}
	browse := p.host.Lookup(idBrowse)
	if browse == nil {
		klog.Warningf("no #%s element, cannot open %s", idBrowse, item.Src)
		return
	}
	if p.single != nil {
		p.closeSingle()
	}

	klog.V(1).Infof("opening item %d (%s)", item.Index, item.Src)
	p.host.Body().SetStyle("overflow-y", "hidden")
	p.inhibit = true

	s := &single{page: p, item: item, browse: browse}
	s.overlay = p.host.Create("img")
	s.overlay.SetAttr("src", p.asset(item.Src))
	if len(item.SrcSet) > 0 {
		s.overlay.SetAttr("srcset", srcset(item.SrcSet, p.asset))
	}
	s.overlay.AddClass("overlay")

	s.subs.add(s.overlay.OnClick(func(ptr Pointer) {
		p.navigate(xpos(s.overlay.Bounds(), ptr))
	}))
	s.subs.add(browse.OnClick(func(ptr Pointer) {
		p.navigate(xpos(browse.Bounds(), ptr))
	}))
	s.subs.add(p.host.OnKeyDown(p.singleKey))
	s.subs.add(p.host.OnResize(s.reflow))

	if p.cfg.DeepLinking && item.Basename != "" {
		p.host.ReplacePath(urlpath.BuildDeepLink(p.base, item.Basename))
	}

	browse.SetStyle("display", "block")
	browse.Append(s.overlay)
	p.single = s

	s.renderCaption()
	s.reflow()
}

// Exit leaves single view and returns to the grid.
func (p *Page) Exit() {
	if p.single != nil {
		p.navigate(xposExit)
	}
}

// ToggleCaptions flips caption visibility and redraws the open caption.
func (p *Page) ToggleCaptions() {
	p.captions = !p.captions
	klog.V(1).Infof("captions visible: %v", p.captions)
	if p.single != nil {
		p.single.renderCaption()
	}
}

// navigate tears down single view, then opens the neighbour chosen by xpos
// if the grid has one.
func (p *Page) navigate(x int) {
	s := p.single
	if s == nil {
		return
	}

	target, step := Step(x, s.item.Index)
	klog.V(1).Infof("single view %s from item %d", Nav(x), s.item.Index)
	p.closeSingle()

	if step && p.grid != nil {
		if el, ok := p.grid.Lookup(target); ok {
			el.Click()
		} else {
			klog.V(1).Infof("no item %d to step to", target)
		}
	}

	// The scrollbar comes back, which changes the available width.
	p.Resize()
}

func (p *Page) singleKey(k Key) bool {
	if p.single == nil {
		return false
	}

	k = NormalizeKey(k)
	switch {
	case k.Name == KeyEscape:
		p.navigate(xposExit)
	case k.Name == KeyLeft:
		p.navigate(xposPrev)
	case k.Name == KeyRight:
		p.navigate(xposNext)
	case strings.EqualFold(k.Name, KeyInfo):
		p.ToggleCaptions()
	default:
		return false
	}
	return true
}

func (p *Page) closeSingle() {
	s := p.single
	if s == nil {
		return
	}
	p.single = nil

	s.subs.cancel()
	s.browse.SetStyle("display", "none")
	s.browse.Clear()
	s.caption = nil

	p.host.Body().SetStyle("overflow-y", "initial")
	p.inhibit = false

	if p.cfg.DeepLinking {
		p.host.ReplacePath(p.base)
	}
}

func (s *single) renderCaption() {
	if s.caption != nil {
		s.caption.Remove()
		s.caption = nil
	}
	if !s.page.captions || s.item.Caption == "" {
		return
	}

	c := s.page.host.Create("span")
	c.AddClass("caption")
	c.SetText(s.item.Caption)
	c.SetStyle("display", "inline")
	s.browse.Append(c)
	s.caption = c
	s.placeCaption()
}

// reflow picks the overlay orientation for the current viewport and pins
// the caption to the image.
func (s *single) reflow() {
	vw, vh := s.page.host.Viewport()
	if vh > 0 && vw/vh < s.item.Aspect() {
		s.overlay.RemoveClass("portrait")
		s.overlay.AddClass("landscape")
	} else {
		s.overlay.RemoveClass("landscape")
		s.overlay.AddClass("portrait")
	}
	s.placeCaption()
}

func (s *single) placeCaption() {
	if s.caption == nil {
		return
	}
	img := s.overlay.Bounds()
	c := s.caption.Bounds()
	s.caption.SetStyle("left", px(img.Left+captionInset)+"px")
	s.caption.SetStyle("top", px(img.Top+img.Height-c.Height-captionInset)+"px")
}
