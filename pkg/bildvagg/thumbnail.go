package bildvagg

import (
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/manifest"

	// Registers the WebP decoder with image.Decode.
	_ "golang.org/x/image/webp"
)

// ModTimeFormat is part of every thumbnail name so edits bust caches.
var ModTimeFormat = "150405"

// thumbDir is the per-gallery directory holding thumbnails.
const thumbDir = "_"

// ThumbOpts are thumbnail options.
type ThumbOpts struct {
	X       int `yaml:"x"`
	Y       int `yaml:"y"`
	Quality int `yaml:"quality"`
}

var defaultThumbOpts = map[string]ThumbOpts{
	"Small":  {X: 640, Quality: 85},
	"Medium": {X: 1280, Quality: 85},
	"Large":  {X: 2048, Quality: 85},
}

// stage copies m into the gallery at dir and creates its thumbnails.
func stage(m *Media, outDir string, dir string, opts map[string]ThumbOpts) error {
	fullDest := filepath.Join(outDir, dir, m.Basename+m.Ext)
	updated, err := copyIfNewer(m.InPath, fullDest)
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if m.Kind != manifest.Image {
		return nil
	}

	m.Resize, err = thumbnails(m, outDir, dir, opts, updated)
	if err != nil {
		return fmt.Errorf("thumbnails: %w", err)
	}
	return nil
}

func copyIfNewer(src string, dest string) (bool, error) {
	sst, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}

	dst, err := os.Stat(dest)
	updated := false

	if err != nil {
		updated = true
		klog.V(1).Infof("updating %s: does not exist", dest)
	}

	if err == nil && sst.Size() != dst.Size() {
		updated = true
		klog.Infof("updating %s: size mismatch", dest)
	}

	if err == nil && sst.ModTime().After(dst.ModTime()) {
		klog.Infof("updating %s: source newer", dest)
		updated = true
	}

	if updated {
		if err := copy.Copy(src, dest); err != nil {
			return false, err
		}
	}
	return updated, nil
}

func thumbnails(m *Media, outDir string, dir string, opts map[string]ThumbOpts, updated bool) (map[string]ThumbMeta, error) {
	klog.V(1).Infof("creating thumbnails for %s in %s", m.InPath, dir)

	var img image.Image
	thumbs := map[string]ThumbMeta{}

	for name, t := range opts {
		if t.X > 0 && m.Width > 0 && int64(t.X) >= m.Width {
			klog.V(1).Infof("%s: skipping %s, source is only %d wide", m.InPath, name, m.Width)
			continue
		}
		if t.Y > 0 && m.Height > 0 && int64(t.Y) >= m.Height {
			klog.V(1).Infof("%s: skipping %s, source is only %d high", m.InPath, name, m.Height)
			continue
		}

		relPath := thumbRelPath(m, dir, t)
		fullPath := filepath.Join(outDir, relPath)

		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}

		st, err := os.Stat(fullPath)
		if err == nil && st.Size() > int64(128) && !updated {
			klog.V(1).Infof("%s exists (%d bytes)", fullPath, st.Size())
			rt, err := readThumb(fullPath)
			if err == nil {
				rt.RelPath = relPath
				thumbs[name] = *rt
				continue
			}
			klog.Warningf("unable to read thumb: %v", err)
		}

		if img == nil {
			img, err = imgio.Open(m.InPath)
			if err != nil {
				return nil, fmt.Errorf("imgio.Open: %w", err)
			}
		}

		ct, err := createThumb(img, fullPath, t)
		if err != nil {
			return nil, fmt.Errorf("create thumb: %w", err)
		}

		ct.RelPath = relPath
		thumbs[name] = *ct
		klog.V(1).Infof("created thumb: %+v", ct)
	}

	return thumbs, nil
}

func createThumb(i image.Image, path string, t ThumbOpts) (*ThumbMeta, error) {
	klog.Infof("creating %dx%d thumb: %s - %+v", t.X, t.Y, path, i.Bounds())
	x := t.X
	y := t.Y

	if i.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("no Y for %+v", i.Bounds())
	}

	if i.Bounds().Dx() == 0 {
		return nil, fmt.Errorf("no X for %+v", i.Bounds())
	}

	if t.X == 0 {
		scale := float64(i.Bounds().Dy()) / float64(t.Y)
		x = int(float64(i.Bounds().Dx()) / scale)
	}

	if t.Y == 0 {
		scale := float64(i.Bounds().Dx()) / float64(t.X)
		y = int(float64(i.Bounds().Dy()) / scale)
	}

	quality := t.Quality
	if quality == 0 {
		quality = 85
	}

	rimg := transform.Resize(i, x, y, transform.Lanczos)
	if err := imgio.Save(path, rimg, imgio.JPEGEncoder(quality)); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}

	return &ThumbMeta{X: rimg.Bounds().Dx(), Y: rimg.Bounds().Dy(), Path: path}, nil
}

func readThumb(path string) (*ThumbMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode: %w", err)
	}

	return &ThumbMeta{X: ic.Width, Y: ic.Height, Path: path}, nil
}

// thumbRelPath returns the output-relative path of a thumbnail of m in the
// gallery at dir.
func thumbRelPath(m *Media, dir string, t ThumbOpts) string {
	dimensions := ""
	if t.X != 0 {
		dimensions = fmt.Sprintf("x%d", t.X)
	}
	if t.Y != 0 {
		dimensions = fmt.Sprintf("y%d", t.Y)
	}

	name := fmt.Sprintf("%s@%s_%s.jpg", m.Basename, dimensions, m.ModTime.Format(ModTimeFormat))
	return path.Join(dir, thumbDir, name)
}

// srcSet lists the thumbnails of m relative to its gallery, narrowest first.
func srcSet(m *Media) []string {
	ts := make([]ThumbMeta, 0, len(m.Resize))
	for _, t := range m.Resize {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].X < ts[j].X })

	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, fmt.Sprintf("%s/%s %dw", thumbDir, path.Base(t.RelPath), t.X))
	}
	return out
}
