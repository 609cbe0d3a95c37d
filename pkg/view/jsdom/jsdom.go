//go:build js && wasm

// Package jsdom implements view.Host on top of the browser DOM.
package jsdom

import (
	"sync"
	"syscall/js"

	"github.com/tstromberg/bildvagg/pkg/view"
)

// Host is the browser window the wall runs in.
type Host struct {
	window   js.Value
	document js.Value
}

// New returns a Host for the global window.
func New() *Host {
	w := js.Global().Get("window")
	return &Host{window: w, document: w.Get("document")}
}

// listener is an event handler installed with addEventListener.
type listener struct {
	once   sync.Once
	target js.Value
	event  string
	fn     js.Func
}

func listen(target js.Value, event string, fn func(e js.Value)) *listener {
	l := &listener{target: target, event: event}
	l.fn = js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		} else {
			fn(js.Undefined())
		}
		return nil
	})
	target.Call("addEventListener", event, l.fn)
	return l
}

func (l *listener) Cancel() {
	l.once.Do(func() {
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	})
}

// element wraps a DOM node.
type element struct {
	v js.Value
}

func wrap(v js.Value) view.Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &element{v: v}
}

func (e *element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }
func (e *element) SetText(text string)        { e.v.Set("textContent", text) }
func (e *element) AddClass(name string)       { e.v.Get("classList").Call("add", name) }
func (e *element) RemoveClass(name string)    { e.v.Get("classList").Call("remove", name) }
func (e *element) Append(child view.Element)  { e.v.Call("appendChild", child.(*element).v) }
func (e *element) Remove()                    { e.v.Call("remove") }
func (e *element) Click()                     { e.v.Call("click") }

func (e *element) Attr(name string) string {
	a := e.v.Call("getAttribute", name)
	if a.IsNull() {
		return ""
	}
	return a.String()
}

func (e *element) SetStyle(property, value string) {
	e.v.Get("style").Call("setProperty", property, value)
}

func (e *element) Clear() {
	for c := e.v.Get("firstChild"); !c.IsNull(); c = e.v.Get("firstChild") {
		e.v.Call("removeChild", c)
	}
}

func (e *element) Bounds() view.Rect {
	r := e.v.Call("getBoundingClientRect")
	return view.Rect{
		Left:   r.Get("left").Float(),
		Top:    r.Get("top").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

func (e *element) OnClick(fn func(view.Pointer)) view.Subscription {
	return listen(e.v, "click", func(ev js.Value) {
		p := view.Pointer{}
		if ev.Truthy() {
			ev.Call("stopPropagation")
			p.ClientX = ev.Get("clientX").Float()
			p.ClientY = ev.Get("clientY").Float()
		}
		// Synthetic clicks from element.click() carry no position.
		if p.ClientX == 0 && p.ClientY == 0 {
			b := e.Bounds()
			p.ClientX = b.Left + b.Width/2
			p.ClientY = b.Top + b.Height/2
		}
		fn(p)
	})
}

func (h *Host) Create(tag string) view.Element {
	return &element{v: h.document.Call("createElement", tag)}
}

func (h *Host) Lookup(id string) view.Element {
	return wrap(h.document.Call("getElementById", id))
}

func (h *Host) Body() view.Element { return &element{v: h.document.Get("body")} }

func (h *Host) SetTitle(title string) { h.document.Set("title", title) }

func (h *Host) OnKeyDown(fn func(view.Key) bool) view.Subscription {
	return listen(h.document, "keydown", func(ev js.Value) {
		k := view.Key{}
		// Older engines leave key unset and only report keyCode.
		if kv := ev.Get("key"); kv.Type() == js.TypeString {
			k.Name = kv.String()
		}
		if c := ev.Get("keyCode"); c.Type() == js.TypeNumber {
			k.Code = c.Int()
		}
		if fn(k) {
			ev.Call("preventDefault")
		}
	})
}

func (h *Host) OnResize(fn func()) view.Subscription {
	return listen(h.window, "resize", func(js.Value) { fn() })
}

func (h *Host) Viewport() (float64, float64) {
	return h.window.Get("innerWidth").Float(), h.window.Get("innerHeight").Float()
}

func (h *Host) Fullscreen() bool {
	return h.document.Get("fullscreenElement").Truthy()
}

func (h *Host) Path() string {
	return h.window.Get("location").Get("pathname").String()
}

func (h *Host) ReplacePath(path string) {
	h.window.Get("history").Call("replaceState", js.Null(), "", path)
}

func (h *Host) Navigate(path string) {
	h.window.Get("location").Call("assign", path)
}

func (h *Host) Post(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	h.window.Call("setTimeout", cb, 0)
}
