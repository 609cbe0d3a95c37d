// Package urlpath derives gallery addresses from the current address.
//
// Gallery addresses are directory paths with a trailing slash, such as
// "/2023/lofoten/". A single item inside a gallery is addressed by a
// deep link of the form "/2023/lofoten/i/<basename>/".
package urlpath

import (
	"net/url"
	"strings"
)

// DeepLinkToken is the path segment that introduces an item basename.
const DeepLinkToken = "i"

// Parent drops the last two segments of path. For a gallery address with a
// trailing slash, that is the empty tail and the gallery's own directory.
func Parent(path string) string {
	segs := strings.Split(path, "/")
	if len(segs) < 2 {
		return ""
	}
	return strings.Join(segs[:len(segs)-2], "/")
}

// Home returns the address of the gallery one level up.
func Home(path string) string {
	return Parent(path) + "/"
}

// Sibling returns the address of dir next to the gallery at path.
func Sibling(path string, dir string) string {
	return Parent(path) + "/" + dir
}

// ExtractDeepLink reports whether segs ends in an item reference. If so,
// it returns the segments with the reference removed and the basename.
func ExtractDeepLink(segs []string) ([]string, string, bool) {
	l := len(segs)
	if l < 3 || segs[l-3] != DeepLinkToken {
		return segs, "", false
	}

	name := segs[l-2]
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}

	base := make([]string, 0, l-2)
	base = append(base, segs[:l-3]...)
	base = append(base, segs[l-1:]...)
	return base, name, true
}

// ParseDeepLink is ExtractDeepLink for a path string.
func ParseDeepLink(path string) (base string, basename string, ok bool) {
	segs, name, ok := ExtractDeepLink(strings.Split(path, "/"))
	if !ok {
		return path, "", false
	}
	return strings.Join(segs, "/"), name, true
}

// BuildDeepLink returns the address of the item basename within the gallery
// at base. base must end in a slash.
func BuildDeepLink(base string, basename string) string {
	return base + DeepLinkToken + "/" + url.PathEscape(basename) + "/"
}
