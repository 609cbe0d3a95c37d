package bildvagg

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tstromberg/bildvagg/pkg/manifest"
)

func media(rel string, kind manifest.Kind, taken string) *Media {
	ts, err := time.Parse(time.DateTime, taken)
	if err != nil {
		panic(err)
	}
	name := urlSafeName(filepath.Base(rel))
	ext := filepath.Ext(name)
	return &Media{
		Kind:     kind,
		InPath:   filepath.Join("/in", rel),
		RelPath:  rel,
		Basename: name[:len(name)-len(ext)],
		Ext:      ext,
		Taken:    ts,
		Width:    300,
		Height:   200,
	}
}

func testAssembly() *Assembly {
	c := &Config{Collection: "Travels", OutDir: "/out", Backlink: true}
	return Assemble(c, []*Media{
		media("2023/Lofoten/b.jpg", manifest.Image, "2023-06-02 10:00:00"),
		media("2023/Lofoten/a.jpg", manifest.Image, "2023-06-01 10:00:00"),
		media("2023/Lofoten/clip.mp4", manifest.Video, "2023-06-03 10:00:00"),
		media("2023/Lofoten/clip.jpg", manifest.Image, "2023-06-03 10:00:00"),
		media("2023/Bergen/x.jpg", manifest.Image, "2023-05-01 10:00:00"),
		media("2023/Tromso/y.jpg", manifest.Image, "2023-07-01 10:00:00"),
		media("2022/Rome/z.jpg", manifest.Image, "2022-03-01 10:00:00"),
	})
}

func TestAssembleGalleries(t *testing.T) {
	a := testAssembly()

	type summary struct {
		Dir, Title, Prev, Next, Date string
		Backlink                     bool
		Media                        []string
	}
	var got []summary
	for _, g := range a.Galleries {
		s := summary{Dir: g.Dir, Title: g.Title, Prev: g.Prev, Next: g.Next, Date: g.Date.Format(DateFormat), Backlink: g.Backlink}
		for _, m := range g.Media {
			s.Media = append(s.Media, m.Basename+m.Ext)
		}
		got = append(got, s)
	}

	want := []summary{
		{Dir: "2022/rome", Title: "Rome", Date: "2022-03-01", Backlink: true, Media: []string{"z.jpg"}},
		{Dir: "2023/bergen", Title: "Bergen", Next: "lofoten", Date: "2023-05-01", Backlink: true, Media: []string{"x.jpg"}},
		{Dir: "2023/lofoten", Title: "Lofoten", Prev: "bergen", Next: "tromso", Date: "2023-06-01", Backlink: true, Media: []string{"a.jpg", "b.jpg", "clip.mp4"}},
		{Dir: "2023/tromso", Title: "Tromso", Prev: "lofoten", Date: "2023-07-01", Backlink: true, Media: []string{"y.jpg"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("galleries mismatch (-want +got):\n%s", diff)
	}

	lofoten := a.Galleries[2]
	if lofoten.OutPath != filepath.Join("/out", "2023", "lofoten") {
		t.Errorf("OutPath = %q", lofoten.OutPath)
	}
	clip := lofoten.Media[2]
	if clip.Poster == nil || clip.Poster.Basename != "clip" || clip.Poster.Kind != manifest.Image {
		t.Errorf("clip poster = %+v", clip.Poster)
	}
}

func TestAssembleIndexes(t *testing.T) {
	a := testAssembly()

	var got []string
	for _, i := range a.Indexes {
		for _, e := range i.Entries {
			got = append(got, fmt.Sprintf("%s/%s %q %s", i.Dir, e.Name, e.Title, e.Date))
		}
	}
	want := []string{
		`./2022 "2022" `,
		`./2023 "2023" `,
		`2022/rome "Rome" 2022-03-01`,
		`2023/bergen "Bergen" 2023-05-01`,
		`2023/lofoten "Lofoten" 2023-06-01`,
		`2023/tromso "Tromso" 2023-07-01`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("indexes mismatch (-want +got):\n%s", diff)
	}
	if a.Indexes[0].Title != "Travels" {
		t.Errorf("root index title = %q", a.Indexes[0].Title)
	}
}

func TestAssembleRootGallery(t *testing.T) {
	c := &Config{Collection: "Loose", OutDir: "/out", Backlink: true}
	a := Assemble(c, []*Media{
		media("a.jpg", manifest.Image, "2024-01-01 00:00:00"),
		media("trip/b.jpg", manifest.Image, "2024-02-01 00:00:00"),
	})

	if len(a.Galleries) != 2 {
		t.Fatalf("got %d galleries, want 2", len(a.Galleries))
	}
	root := a.Galleries[0]
	if root.Dir != "." || root.Title != "Loose" || root.Backlink {
		t.Errorf("root gallery = %+v", root)
	}
	if len(a.Indexes) != 0 {
		t.Errorf("a root gallery needs no index, got %d", len(a.Indexes))
	}
	if trip := a.Galleries[1]; trip.Prev != "" || trip.Next != "" || !trip.Backlink {
		t.Errorf("trip gallery = %+v", trip)
	}
}

func TestPairPostersKeepsLoneStills(t *testing.T) {
	ms := []*Media{
		media("a/clip.mp4", manifest.Video, "2024-01-01 00:00:00"),
		media("a/other.jpg", manifest.Image, "2024-01-01 00:00:00"),
	}
	out := pairPosters(ms)
	if len(out) != 2 || ms[0].Poster != nil {
		t.Errorf("pairPosters = %d items, poster %+v", len(out), ms[0].Poster)
	}
}
