package bildvagg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/gosimple/slug"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/manifest"
)

var exifDate = "2006:01:02 15:04:05"

var kinds = map[string]manifest.Kind{
	".jpg":  manifest.Image,
	".jpeg": manifest.Image,
	".png":  manifest.Image,
	".webp": manifest.Image,
	".mp4":  manifest.Video,
	".m4v":  manifest.Video,
	".mov":  manifest.Video,
	".webm": manifest.Video,
}

// kindOf returns the media kind for a file name.
func kindOf(path string) (manifest.Kind, bool) {
	k, ok := kinds[strings.ToLower(filepath.Ext(path))]
	return k, ok
}

// urlSafeName slugs a file name, keeping its lowercased extension.
func urlSafeName(name string) string {
	ext := filepath.Ext(name)
	base := slug.Make(strings.TrimSuffix(name, ext))
	if base == "" {
		base = "_"
	}
	return base + strings.ToLower(ext)
}

// urlSafePath slugs every segment of a relative path.
func urlSafePath(rel string) string {
	if rel == "." || rel == "" {
		return "."
	}
	segs := strings.Split(filepath.ToSlash(rel), "/")
	for i, s := range segs {
		segs[i] = urlSafeName(s)
	}
	return strings.Join(segs, "/")
}

func read(path string, kind manifest.Kind, et *exiftool.Exiftool) (Media, error) {
	fis := et.ExtractMetadata(path)
	fi := fis[0]
	m := Media{Kind: kind}
	var err error

	if fi.Err != nil {
		return m, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	m.Make, err = fi.GetString("Make")
	if err != nil {
		klog.V(1).Infof("unable to get make for %s: %v", path, err)
	}

	m.Model, err = fi.GetString("Model")
	if err != nil {
		klog.V(1).Infof("unable to get model for %s: %v", path, err)
	}

	m.Height, err = fi.GetInt("ImageHeight")
	if err != nil {
		if kind == manifest.Image {
			return m, fmt.Errorf("get ImageHeight: %w", err)
		}
		klog.Warningf("unable to get height for %s: %v", path, err)
	}

	m.Width, err = fi.GetInt("ImageWidth")
	if err != nil {
		if kind == manifest.Image {
			return m, fmt.Errorf("get ImageWidth: %w", err)
		}
		klog.Warningf("unable to get width for %s: %v", path, err)
	}

	if kw, err := fi.GetStrings("Keywords"); err == nil {
		m.Keywords = kw
	}
	if d, err := fi.GetString(DescriptionTag); err == nil {
		m.Description = strings.TrimSpace(d)
	}

	m.Title, err = fi.GetString(HeadlineTag)
	if err != nil {
		klog.V(2).Infof("unable to get headline: %v", err)
	}

	ds, err := fi.GetString("DateTimeOriginal")
	if err != nil {
		ds, err = fi.GetString("CreateDate")
	}
	if err != nil {
		klog.V(1).Infof("unable to get date time for %s: %v", path, err)
		return m, nil
	}

	m.Taken, err = time.Parse(exifDate, ds)
	if err != nil {
		return m, fmt.Errorf("parse time %q: %w", ds, err)
	}

	return m, nil
}

// Find walks root and returns every photo and video below it.
func Find(root string, sidecars bool) ([]*Media, error) {
	found := []*Media{}

	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	defer et.Close()

	err = godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			base := filepath.Base(path)
			if path != root && (base[0] == '.' || base == "_") {
				if de.IsDir() {
					return godirwalk.SkipThis
				}
				return nil
			}
			if de.IsDir() {
				return nil
			}

			kind, ok := kindOf(path)
			if !ok {
				return nil
			}

			klog.Infof("found %s", path)
			m, err := read(path, kind, et)
			if err != nil {
				klog.Errorf("read failure: %v", err)
				return err
			}

			if err := describe(&m, path, root); err != nil {
				return err
			}

			if sidecars {
				if err := applySidecar(&m); err != nil {
					klog.Warningf("sidecar for %s: %v", path, err)
				}
			}

			found = append(found, &m)
			return nil
		},
	})

	return found, err
}

// describe fills in the path-derived fields of m.
func describe(m *Media, path string, root string) error {
	var err error
	m.InPath = path
	m.RelPath, err = filepath.Rel(root, path)
	if err != nil {
		return err
	}
	name := urlSafeName(filepath.Base(path))
	m.Ext = filepath.Ext(name)
	m.Basename = strings.TrimSuffix(name, m.Ext)

	fi, err := os.Stat(path)
	if err != nil {
		klog.Errorf("stat failure: %v", err)
		return err
	}
	m.ModTime = fi.ModTime()
	if m.Taken.IsZero() {
		m.Taken = m.ModTime
	}
	return nil
}
