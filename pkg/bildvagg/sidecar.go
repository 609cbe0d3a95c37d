package bildvagg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"k8s.io/klog/v2"
)

// sidecarPath returns the Takeout-style sidecar location for a media file.
func sidecarPath(path string) string {
	return path + ".json"
}

// applySidecar overrides metadata in m with its sidecar, if one exists.
func applySidecar(m *Media) error {
	bs, err := os.ReadFile(sidecarPath(m.InPath))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var sc TakeoutSidecar
	if err := json.Unmarshal(bs, &sc); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	klog.V(1).Infof("sidecar for %s: %+v", m.InPath, sc)

	// Takeout fills title with the file name when nothing better is known.
	if t := strings.TrimSpace(sc.Title); t != "" && !strings.EqualFold(t, filepath.Base(m.InPath)) {
		m.Title = t
	}
	if d := strings.TrimSpace(sc.Description); d != "" {
		m.Description = d
	}
	for _, t := range sc.Tags {
		if !slices.Contains(m.Keywords, t) {
			m.Keywords = append(m.Keywords, t)
		}
	}
	return nil
}

// WriteSidecar stores caption and tags for m next to its source file.
func WriteSidecar(m *Media, caption string, tags []string) error {
	sc := TakeoutSidecar{Title: m.Title, Description: caption, Tags: tags}
	bs, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return os.WriteFile(sidecarPath(m.InPath), bs, 0o644)
}
