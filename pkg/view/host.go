package view

// Rect is an element's position and size relative to the viewport.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Pointer is a click or tap position relative to the viewport.
type Pointer struct {
	ClientX float64
	ClientY float64
}

// Subscription detaches a handler installed on the host.
// Cancel is safe to call more than once.
type Subscription interface {
	Cancel()
}

// Element is the slice of a DOM element the wall needs.
type Element interface {
	SetAttr(name, value string)
	Attr(name string) string
	SetStyle(property, value string)
	SetText(text string)
	AddClass(name string)
	RemoveClass(name string)
	Append(child Element)
	// Clear removes all children.
	Clear()
	// Remove detaches the element from its parent.
	Remove()
	Bounds() Rect
	// OnClick installs fn for clicks on the element. The event does not
	// propagate to ancestors.
	OnClick(fn func(Pointer)) Subscription
	// Click activates the element as if the user had clicked its center.
	Click()
}

// Host is the page environment: document, window, history and the
// fullscreen capability. All handlers run on the host's event thread.
type Host interface {
	Create(tag string) Element
	// Lookup returns the element with the given id, or nil.
	Lookup(id string) Element
	Body() Element
	SetTitle(title string)

	// OnKeyDown installs fn for key presses. fn reports whether it
	// handled the key, in which case the default action is suppressed.
	OnKeyDown(fn func(Key) bool) Subscription
	OnResize(fn func()) Subscription

	// Viewport returns the inner window size.
	Viewport() (width float64, height float64)
	Fullscreen() bool

	Path() string
	// ReplacePath swaps the current address without a history entry.
	ReplacePath(path string)
	// Navigate leaves the page for path.
	Navigate(path string)

	// Post queues fn on the event thread.
	Post(fn func())
}

type subscriptions []Subscription

func (s *subscriptions) add(sub Subscription) {
	if sub != nil {
		*s = append(*s, sub)
	}
}

func (s *subscriptions) cancel() {
	subs := *s
	*s = nil
	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Cancel()
	}
}
