package view

// Key is a keyboard event. Name is the modern key name ("Escape",
// "ArrowLeft", ...); Code is the legacy numeric key code.
type Key struct {
	Name string
	Code int
}

// Canonical key names the wall reacts to.
const (
	KeyEscape = "Escape"
	KeyLeft   = "ArrowLeft"
	KeyRight  = "ArrowRight"
	KeyZero   = "0"
	KeyInfo   = "i"
)

var legacyCodes = map[int]string{
	27: KeyEscape,
	37: KeyLeft,
	39: KeyRight,
	96: KeyZero,
	73: KeyInfo,
}

// NormalizeKey fills in Name from Code for hosts that only report legacy
// codes. Unknown codes leave Name empty, which means no action.
func NormalizeKey(k Key) Key {
	if k.Name != "" {
		return k
	}
	k.Name = legacyCodes[k.Code]
	return k
}
