// reorg moves gallery directories under a directory named after the year
// their earliest photo was taken, giving the <year>/<gallery> layout that
// sibling navigation expects.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/bildvagg"
)

var dryRun = flag.Bool("n", false, "dry-run mode, don't move things")

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if flag.NArg() != 1 {
		klog.Exitf("usage: %s [-n] <input_dir>", os.Args[0])
	}
	in := flag.Arg(0)

	ms, err := bildvagg.Find(in, false)
	if err != nil {
		klog.Exitf("unable to find media: %v", err)
	}

	c := bildvagg.DefaultConfig()
	c.InDir = in
	a := bildvagg.Assemble(c, ms)

	for _, g := range a.Galleries {
		if g.Date.IsZero() || g.InPath == "." {
			klog.Infof("skipping %s", g.InPath)
			continue
		}
		year := fmt.Sprint(g.Date.Year())
		if strings.HasPrefix(g.InPath, year+string(filepath.Separator)) {
			continue
		}

		base := filepath.Base(g.InPath)
		// fix bad apostrophes
		base = strings.ReplaceAll(base, "_s ", "'s ")

		from := filepath.Join(in, g.InPath)
		to := filepath.Join(in, year, base)
		klog.Infof("%s -> %s", from, to)
		if *dryRun {
			continue
		}
		if _, err := os.Stat(to); err == nil {
			klog.Warningf("%s exists, leaving %s alone", to, from)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			klog.Exitf("mkdir: %v", err)
		}
		if err := os.Rename(from, to); err != nil {
			klog.Exitf("rename: %v", err)
		}
	}
}
