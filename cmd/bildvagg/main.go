// bildvagg builds photo wall galleries from a directory of photos and
// videos, and optionally serves, watches or publishes the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/bildvagg"
	"github.com/tstromberg/bildvagg/pkg/publish"
	"github.com/tstromberg/bildvagg/pkg/serve"
)

var (
	configFile  = flag.String("config", "", "YAML configuration file")
	inDir       = flag.String("in", "", "Location of input directory")
	outDir      = flag.String("out", "", "Location of output directory")
	title       = flag.String("title", "", "Title of photo collection")
	description = flag.String("description", "", "description of photo collection")
	root        = flag.String("root", "", "URL path the output is served from")
	wasmDir     = flag.String("wasm", "", "directory holding wall.wasm and wasm_exec.js")
	sidecars    = flag.Bool("sidecars", false, "read Takeout-style JSON sidecars")
	listen      = flag.Bool("listen", false, "serve content via HTTP")
	addr        = flag.String("addr", "localhost:12800", "host:port to bind to in listen mode")
	watchFlag   = flag.Bool("watch", false, "watch for changes to inDir and rebuild")
	publishFlag = flag.Bool("publish", false, "upload the output directory to the configured bucket")
)

func config() (*bildvagg.Config, error) {
	c := bildvagg.DefaultConfig()
	if *configFile != "" {
		var err error
		c, err = bildvagg.LoadConfig(*configFile)
		if err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			c.InDir = *inDir
		case "out":
			c.OutDir = *outDir
		case "title":
			c.Collection = *title
		case "description":
			c.Description = *description
		case "root":
			c.Root = *root
		case "wasm":
			c.WasmDir = *wasmDir
		case "sidecars":
			c.ProcessSidecars = *sidecars
		}
	})

	c.Normalize()

	if c.InDir == "" {
		return nil, fmt.Errorf("--in is a required flag")
	}
	if c.OutDir == "" {
		return nil, fmt.Errorf("--out is a required flag")
	}
	return c, nil
}

func build(c *bildvagg.Config) (*bildvagg.Assembly, error) {
	a, err := bildvagg.Collect(c)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	if err := bildvagg.Render(c, a); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	klog.Infof("built %d galleries with %d items", len(a.Galleries), len(a.Media))
	return a, nil
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	c, err := config()
	if err != nil {
		klog.Exitf("config: %v", err)
	}

	a, err := build(c)
	if err != nil {
		klog.Exitf("build failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *publishFlag {
		if err := upload(ctx, c); err != nil {
			klog.Exitf("publish failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	if *watchFlag {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watch(ctx, c, a); err != nil {
				klog.Errorf("watch: %v", err)
			}
		}()
	}

	if *listen {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serve.New(c.OutDir).ListenAndServe(ctx, *addr); err != nil {
				klog.Exitf("listen failed: %v", err)
			}
		}()
	}

	wg.Wait()
}

func upload(ctx context.Context, c *bildvagg.Config) error {
	pc := publish.Config{
		Endpoint:       c.Publish.Endpoint,
		Region:         c.Publish.Region,
		ForcePathStyle: c.Publish.ForcePathStyle,
		Bucket:         c.Publish.Bucket,
		Prefix:         c.Publish.Prefix,
		AccessKey:      c.Publish.AccessKey,
		SecretKey:      c.Publish.SecretKey,
	}
	if pc.Bucket == "" {
		return fmt.Errorf("no publish bucket configured")
	}
	client, err := publish.NewClient(ctx, pc)
	if err != nil {
		return err
	}
	_, err = publish.Publish(ctx, client, pc, c.OutDir)
	return err
}

// watch rebuilds whenever the input tree changes, until ctx is done.
func watch(ctx context.Context, c *bildvagg.Config, a *bildvagg.Assembly) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs := []string{c.InDir}
	for _, g := range a.Galleries {
		d := filepath.Join(c.InDir, g.InPath)
		dirs = append(dirs, d, filepath.Dir(d))
	}
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	klog.Infof("watching %d dirs ...", len(dirs))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %v", event)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if _, err := build(c); err != nil {
				klog.Errorf("rebuild failed: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Warningf("watch error: %v", err)
		}
	}
}
