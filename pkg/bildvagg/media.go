package bildvagg

import (
	"time"

	"github.com/tstromberg/bildvagg/pkg/manifest"
)

// ThumbMeta describes a thumbnail.
type ThumbMeta struct {
	X       int
	Y       int
	RelPath string
	Path    string
}

// Media is a photo or video with its metadata.
type Media struct {
	Kind     manifest.Kind
	InPath   string
	RelPath  string
	Basename string
	Ext      string
	ModTime  time.Time
	Taken    time.Time

	Keywords    []string
	Title       string
	Description string

	Make  string
	Model string

	Width  int64
	Height int64

	Resize map[string]ThumbMeta
	// Poster is the still shown before a video plays.
	Poster *Media
}

// Caption is the text shown with the item.
func (m *Media) Caption() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Description
}

// EXIF tags holding the title and description of a photo.
const (
	HeadlineTag    = "Headline"
	DescriptionTag = "ImageDescription"
)

// CaptionTags are the EXIF tags Caption reads, in order of preference.
var CaptionTags = []string{HeadlineTag, DescriptionTag}

// SetCaption replaces the caption of m, including any existing headline.
func (m *Media) SetCaption(caption string) {
	m.Title = caption
	m.Description = caption
}

// Gallery is one output directory of media.
type Gallery struct {
	// Dir is the URL-safe path relative to the output root, "." for the root.
	Dir     string
	InPath  string
	OutPath string

	Title string
	Date  time.Time

	Media []*Media

	Prev     string
	Next     string
	Backlink bool
}
