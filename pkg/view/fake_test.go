package view

import (
	"strings"
)

// fakeElement is an in-memory stand-in for a DOM element.
type fakeElement struct {
	host     *fakeHost
	tag      string
	attrs    map[string]string
	styles   map[string]string
	classes  map[string]bool
	text     string
	parent   *fakeElement
	children []*fakeElement
	rect     Rect
	clicks   []*fakeSub[func(Pointer)]
}

type fakeSub[T any] struct {
	fn        T
	cancelled bool
}

func (s *fakeSub[T]) Cancel() { s.cancelled = true }

func (e *fakeElement) SetAttr(name, value string)  { e.attrs[name] = value }
func (e *fakeElement) Attr(name string) string     { return e.attrs[name] }
func (e *fakeElement) SetStyle(prop, value string) { e.styles[prop] = value }
func (e *fakeElement) SetText(text string)         { e.text = text }
func (e *fakeElement) AddClass(name string)        { e.classes[name] = true }
func (e *fakeElement) RemoveClass(name string)     { delete(e.classes, name) }
func (e *fakeElement) Bounds() Rect                { return e.rect }

func (e *fakeElement) Append(child Element) {
	c := child.(*fakeElement)
	if c.parent != nil {
		c.Remove()
	}
	c.parent = e
	e.children = append(e.children, c)
}

func (e *fakeElement) Clear() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

func (e *fakeElement) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

func (e *fakeElement) OnClick(fn func(Pointer)) Subscription {
	s := &fakeSub[func(Pointer)]{fn: fn}
	e.clicks = append(e.clicks, s)
	return s
}

func (e *fakeElement) Click() {
	e.clickAt(e.rect.Left + e.rect.Width/2)
}

// clickAt clicks at a horizontal viewport position.
func (e *fakeElement) clickAt(x float64) {
	for _, s := range append([]*fakeSub[func(Pointer)]{}, e.clicks...) {
		if !s.cancelled {
			s.fn(Pointer{ClientX: x})
		}
	}
}

// clickPercent clicks at pct percent of the element's width.
func (e *fakeElement) clickPercent(pct float64) {
	e.clickAt(e.rect.Left + e.rect.Width*pct/100)
}

func (e *fakeElement) activeClicks() int {
	n := 0
	for _, s := range e.clicks {
		if !s.cancelled {
			n++
		}
	}
	return n
}

// find returns descendants with the given tag, in document order.
func (e *fakeElement) find(tag string) []*fakeElement {
	var out []*fakeElement
	for _, c := range e.children {
		if c.tag == tag {
			out = append(out, c)
		}
		out = append(out, c.find(tag)...)
	}
	return out
}

func (e *fakeElement) findClass(class string) []*fakeElement {
	var out []*fakeElement
	for _, c := range e.children {
		if c.classes[class] {
			out = append(out, c)
		}
		out = append(out, c.findClass(class)...)
	}
	return out
}

// fakeHost is an in-memory page.
type fakeHost struct {
	ids        map[string]*fakeElement
	body       *fakeElement
	title      string
	width      float64
	height     float64
	fullscreen bool
	path       string
	replaced   []string
	navigated  []string
	keys       []*fakeSub[func(Key) bool]
	resizes    []*fakeSub[func()]
	posted     []func()
}

func newFakeHost(path string) *fakeHost {
	h := &fakeHost{ids: map[string]*fakeElement{}, width: 1200, height: 800, path: path}
	h.body = h.newElement("body")
	for _, id := range []string{idTitle, idGallery, idBrowse, idHome, idPrev, idNext} {
		el := h.newElement("div")
		h.ids[id] = el
		h.body.Append(el)
	}
	h.ids[idGallery].rect = Rect{Width: 1201, Height: 800}
	h.ids[idBrowse].rect = Rect{Width: 1200, Height: 800}
	return h
}

func (h *fakeHost) newElement(tag string) *fakeElement {
	return &fakeElement{
		host:    h,
		tag:     tag,
		attrs:   map[string]string{},
		styles:  map[string]string{},
		classes: map[string]bool{},
		rect:    Rect{Width: 100, Height: 100},
	}
}

func (h *fakeHost) Create(tag string) Element { return h.newElement(tag) }

func (h *fakeHost) Lookup(id string) Element {
	el, ok := h.ids[id]
	if !ok {
		return nil
	}
	return el
}

func (h *fakeHost) Body() Element     { return h.body }
func (h *fakeHost) SetTitle(t string) { h.title = t }
func (h *fakeHost) Fullscreen() bool  { return h.fullscreen }
func (h *fakeHost) Path() string      { return h.path }
func (h *fakeHost) Post(fn func())    { h.posted = append(h.posted, fn) }
func (h *fakeHost) Navigate(p string) { h.navigated = append(h.navigated, p) }
func (h *fakeHost) ReplacePath(p string) {
	h.path = p
	h.replaced = append(h.replaced, p)
}

func (h *fakeHost) Viewport() (float64, float64) { return h.width, h.height }

func (h *fakeHost) OnKeyDown(fn func(Key) bool) Subscription {
	s := &fakeSub[func(Key) bool]{fn: fn}
	h.keys = append(h.keys, s)
	return s
}

func (h *fakeHost) OnResize(fn func()) Subscription {
	s := &fakeSub[func()]{fn: fn}
	h.resizes = append(h.resizes, s)
	return s
}

// press dispatches a key to the handlers installed before the press.
func (h *fakeHost) press(k Key) bool {
	handled := false
	for _, s := range append([]*fakeSub[func(Key) bool]{}, h.keys...) {
		if !s.cancelled && s.fn(k) {
			handled = true
		}
	}
	return handled
}

func (h *fakeHost) resize() {
	for _, s := range append([]*fakeSub[func()]{}, h.resizes...) {
		if !s.cancelled {
			s.fn()
		}
	}
}

// drain runs posted callbacks.
func (h *fakeHost) drain() {
	for len(h.posted) > 0 {
		fn := h.posted[0]
		h.posted = h.posted[1:]
		fn()
	}
}

func (h *fakeHost) activeKeys() int {
	n := 0
	for _, s := range h.keys {
		if !s.cancelled {
			n++
		}
	}
	return n
}

func (h *fakeHost) activeResizes() int {
	n := 0
	for _, s := range h.resizes {
		if !s.cancelled {
			n++
		}
	}
	return n
}

func (h *fakeHost) gallery() *fakeElement { return h.ids[idGallery] }
func (h *fakeHost) browse() *fakeElement  { return h.ids[idBrowse] }

// overlay returns the mounted single view image, or nil.
func (h *fakeHost) overlay() *fakeElement {
	for _, c := range h.browse().children {
		if c.classes["overlay"] {
			return c
		}
	}
	return nil
}

func (h *fakeHost) captionText() string {
	var out []string
	for _, c := range h.browse().findClass("caption") {
		out = append(out, c.text)
	}
	return strings.Join(out, "|")
}
