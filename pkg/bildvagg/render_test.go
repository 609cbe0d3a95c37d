package bildvagg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tstromberg/bildvagg/pkg/manifest"
)

func TestManifest(t *testing.T) {
	a := testAssembly()
	lofoten := a.Galleries[2]
	lofoten.Media[0].Title = "Reine"
	lofoten.Media[0].Resize = map[string]ThumbMeta{
		"Medium": {X: 1280, RelPath: "2023/lofoten/_/a@x1280_100000.jpg"},
		"Small":  {X: 640, RelPath: "2023/lofoten/_/a@x640_100000.jpg"},
	}
	lofoten.Media[2].Poster.Resize = map[string]ThumbMeta{
		"Small": {X: 640, RelPath: "2023/lofoten/_/clip@x640_100000.jpg"},
	}

	got := Manifest(lofoten)
	want := &manifest.Gallery{
		Info: manifest.Info{Title: "Lofoten", Date: "2023-06-01", Backlink: true, Prev: "bergen", Next: "tromso"},
		Items: []*manifest.Item{
			{
				Index: 0, Kind: manifest.Image, Src: "a.jpg", Width: 300, Height: 200, Caption: "Reine", Basename: "a",
				SrcSet: []string{"_/a@x640_100000.jpg 640w", "_/a@x1280_100000.jpg 1280w"},
			},
			{Index: 1, Kind: manifest.Image, Src: "b.jpg", SrcSet: []string{}, Width: 300, Height: 200, Basename: "b"},
			{
				Index: 2, Kind: manifest.Video, Src: "clip.mp4", SrcSet: []string{}, Width: 300, Height: 200, Basename: "clip",
				Poster: "_/clip@x640_100000.jpg",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	out := t.TempDir()
	wasm := t.TempDir()
	if err := os.WriteFile(filepath.Join(wasm, "wall.wasm"), []byte("\x00asm"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := &Config{Collection: "Travels", OutDir: out, Root: "/photos/", WasmDir: wasm, Backlink: true, Description: "north"}
	ms := []*Media{
		media("2023/Lofoten/a.jpg", manifest.Image, "2023-06-01 10:00:00"),
		media("2023/Bergen/x.jpg", manifest.Image, "2023-05-01 10:00:00"),
	}
	a := Assemble(c, ms)
	if err := Render(c, a); err != nil {
		t.Fatalf("Render: %v", err)
	}

	f, err := os.Open(filepath.Join(out, "2023", "lofoten", manifest.FileName))
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer f.Close()
	g, err := manifest.Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.Info.Prev != "bergen" || len(g.Items) != 1 || g.Items[0].Src != "a.jpg" {
		t.Errorf("manifest = %+v", g)
	}

	page := readFile(t, filepath.Join(out, "2023", "lofoten", "index.html"))
	for _, want := range []string{
		`id="gallery"`, `id="browse"`, `id="title"`, `id="nav-home"`, `id="nav-prev"`, `id="nav-next"`,
		`href="/photos/_/style.css"`, `src="/photos/_/wasm_exec.js"`, `<title>Lofoten / 2023-06-01</title>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("gallery page lacks %s", want)
		}
	}

	root := readFile(t, filepath.Join(out, "index.html"))
	if !strings.Contains(root, `href="2023/"`) || !strings.Contains(root, "north") {
		t.Errorf("root index = %s", root)
	}
	year := readFile(t, filepath.Join(out, "2023", "index.html"))
	if !strings.Contains(year, `href="bergen/"`) || !strings.Contains(year, `href="lofoten/"`) {
		t.Errorf("year index = %s", year)
	}

	for _, f := range []string{"style.css", "wall.wasm"} {
		if _, err := os.Stat(filepath.Join(out, "_", f)); err != nil {
			t.Errorf("shared asset %s: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "_", "wasm_exec.js")); err == nil {
		t.Errorf("missing wasm_exec.js was invented")
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(bs)
}
