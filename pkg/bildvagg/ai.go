// Package bildvagg builds photo wall galleries from a directory tree: it
// reads EXIF metadata, stages media and thumbnails, and writes a manifest
// and page shell for each gallery.
package bildvagg

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// CaptionModel is the default model used for captions.
var CaptionModel = "gemini-2.5-flash"

// CaptionThumb specifies which thumbnail to send for captioning.
var CaptionThumb = "Small"

var captionPrompt = "Write a caption for this photo in at most twelve words, the way a " +
	"travel photographer would label a print. Name the place if you recognize it. " +
	"Do not start with 'A photo of'. Reply with the caption only, without quotes."

// Caption asks the model for a one-line caption of m.
func Caption(ctx context.Context, client *genai.Client, model string, m *Media) (string, error) {
	src := m.InPath
	if t, ok := m.Resize[CaptionThumb]; ok {
		src = t.Path
	}
	bs, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	mime := "image/jpeg"
	if src == m.InPath {
		switch strings.ToLower(m.Ext) {
		case ".png":
			mime = "image/png"
		case ".webp":
			mime = "image/webp"
		}
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(bs, mime),
		genai.NewPartFromText(captionPrompt),
	}
	resp, err := client.Models.GenerateContent(ctx, model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return cleanCaption(resp.Text()), nil
}

func cleanCaption(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
