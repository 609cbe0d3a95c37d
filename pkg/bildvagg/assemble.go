package bildvagg

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/manifest"
)

// an Assembly is an assembled collection of galleries.
type Assembly struct {
	Media     []*Media
	Galleries []*Gallery
	// Indexes list the galleries below directories that have no media of
	// their own, so that every home link leads somewhere.
	Indexes []*Index
}

// Index is a directory listing page.
type Index struct {
	Dir     string
	OutPath string
	Title   string
	Entries []IndexEntry
}

// IndexEntry is one child directory of an Index.
type IndexEntry struct {
	Name  string
	Title string
	Date  string
}

// Collect finds, stages and assembles every gallery below c.InDir.
func Collect(c *Config) (*Assembly, error) {
	klog.Infof("build: %s -> %s", c.InDir, c.OutDir)

	ms, err := Find(c.InDir, c.ProcessSidecars)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	a := Assemble(c, ms)
	for _, g := range a.Galleries {
		for _, m := range g.Media {
			if err := stage(m, c.OutDir, g.Dir, c.Thumbnails); err != nil {
				return nil, fmt.Errorf("stage %s: %w", m.InPath, err)
			}
			if m.Poster != nil {
				if err := stage(m.Poster, c.OutDir, g.Dir, c.Thumbnails); err != nil {
					return nil, fmt.Errorf("stage %s: %w", m.Poster.InPath, err)
				}
			}
		}
	}
	return a, nil
}

// Assemble groups media into galleries by directory and links siblings.
func Assemble(c *Config, ms []*Media) *Assembly {
	byDir := map[string]*Gallery{}
	for _, m := range ms {
		rd := filepath.Dir(m.RelPath)
		dir := urlSafePath(rd)
		if byDir[dir] == nil {
			title := filepath.Base(rd)
			if dir == "." {
				title = c.Collection
			}
			byDir[dir] = &Gallery{
				Dir:     dir,
				InPath:  rd,
				OutPath: filepath.Join(c.OutDir, filepath.FromSlash(dir)),
				Title:   title,
			}
		}
		byDir[dir].Media = append(byDir[dir].Media, m)
	}

	gs := []*Gallery{}
	for _, g := range byDir {
		g.Media = pairPosters(g.Media)
		sort.SliceStable(g.Media, func(i, j int) bool {
			if g.Media[i].Taken.Equal(g.Media[j].Taken) {
				return g.Media[i].Basename < g.Media[j].Basename
			}
			return g.Media[i].Taken.Before(g.Media[j].Taken)
		})
		for _, m := range g.Media {
			if g.Date.IsZero() || m.Taken.Before(g.Date) {
				g.Date = m.Taken
			}
		}
		g.Backlink = c.Backlink && g.Dir != "."
		gs = append(gs, g)
	}
	sort.Slice(gs, func(i, j int) bool {
		return gs[i].Dir < gs[j].Dir
	})

	linkSiblings(gs)

	return &Assembly{
		Media:     ms,
		Galleries: gs,
		Indexes:   indexes(c, gs),
	}
}

// pairPosters attaches a still image to the video sharing its basename,
// and drops the still from the listing.
func pairPosters(ms []*Media) []*Media {
	stills := map[string]*Media{}
	for _, m := range ms {
		if m.Kind == manifest.Image {
			stills[m.Basename] = m
		}
	}

	used := map[*Media]bool{}
	for _, m := range ms {
		if m.Kind != manifest.Video {
			continue
		}
		if s, ok := stills[m.Basename]; ok {
			klog.V(1).Infof("poster for %s: %s", m.InPath, s.InPath)
			m.Poster = s
			used[s] = true
		}
	}

	out := make([]*Media, 0, len(ms))
	for _, m := range ms {
		if !used[m] {
			out = append(out, m)
		}
	}
	return out
}

// linkSiblings points every gallery at its neighbours under the same parent.
func linkSiblings(gs []*Gallery) {
	byParent := map[string][]*Gallery{}
	for _, g := range gs {
		if g.Dir == "." {
			continue
		}
		p := path.Dir(g.Dir)
		byParent[p] = append(byParent[p], g)
	}

	for _, sibs := range byParent {
		for i, g := range sibs {
			if i > 0 {
				g.Prev = path.Base(sibs[i-1].Dir)
			}
			if i < len(sibs)-1 {
				g.Next = path.Base(sibs[i+1].Dir)
			}
		}
	}
}

// indexes returns listings for every ancestor directory that is not itself
// a gallery.
func indexes(c *Config, gs []*Gallery) []*Index {
	galleries := map[string]*Gallery{}
	for _, g := range gs {
		galleries[g.Dir] = g
	}

	idx := map[string]*Index{}
	for _, g := range gs {
		child := g.Dir
		for child != "." {
			parent := path.Dir(child)
			if _, ok := galleries[parent]; ok {
				break
			}
			if idx[parent] == nil {
				title := path.Base(parent)
				if parent == "." {
					title = c.Collection
				}
				idx[parent] = &Index{
					Dir:     parent,
					OutPath: filepath.Join(c.OutDir, filepath.FromSlash(parent)),
					Title:   title,
				}
			}
			addEntry(idx[parent], child, galleries[child])
			child = parent
		}
	}

	out := []*Index{}
	for _, i := range idx {
		sort.Slice(i.Entries, func(a, b int) bool {
			return i.Entries[a].Name < i.Entries[b].Name
		})
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].Dir < out[b].Dir
	})
	return out
}

func addEntry(i *Index, child string, g *Gallery) {
	name := path.Base(child)
	for _, e := range i.Entries {
		if e.Name == name {
			return
		}
	}
	e := IndexEntry{Name: name, Title: strings.ReplaceAll(name, "-", " ")}
	if g != nil {
		e.Title = g.Title
		e.Date = g.Date.Format(DateFormat)
	}
	i.Entries = append(i.Entries, e)
}
