// captions adds AI-written captions to photos using the Gemini API.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/barasher/go-exiftool"
	"google.golang.org/genai"
	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/bildvagg"
	"github.com/tstromberg/bildvagg/pkg/manifest"
)

var (
	dryRun    = flag.Bool("n", false, "dry-run mode, don't write captions")
	overwrite = flag.Bool("o", false, "overwrite existing captions")
	sidecar   = flag.Bool("sidecar", false, "write captions to JSON sidecars instead of EXIF")
	outDir    = flag.String("out", "", "Location of output directory for thumbnails and cache")
	model     = flag.String("model", bildvagg.CaptionModel, "model used to write captions")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) == 0 {
		klog.Exitf("No input directories provided. Usage: %s -out <output_dir> <input_dir1> [input_dir2 ...]", os.Args[0])
	}

	if *outDir == "" {
		klog.Exitf("please give me an out directory for thumbnails")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: os.Getenv("GOOGLE_AI_API_KEY"),
	})
	if err != nil {
		klog.Exitf("genai: %v", err)
	}

	e, err := exiftool.NewExiftool()
	if err != nil {
		klog.Exitf("exiftool: %v", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			klog.Errorf("Failed to close exiftool: %v", err)
		}
	}()

	total := 0
	for _, in := range flag.Args() {
		c := bildvagg.DefaultConfig()
		c.InDir = in
		c.OutDir = *outDir
		c.ProcessSidecars = *sidecar
		c.Thumbnails = map[string]bildvagg.ThumbOpts{
			bildvagg.CaptionThumb: {X: 640, Quality: 80},
		}

		a, err := bildvagg.Collect(c)
		if err != nil {
			klog.Exitf("unable to collect %s: %v", in, err)
		}

		for _, m := range a.Media {
			if m.Kind != manifest.Image {
				continue
			}
			if !*overwrite && m.Caption() != "" {
				klog.Infof("%s has a caption: %q", m.InPath, m.Caption())
				continue
			}

			caption, err := bildvagg.Caption(ctx, client, *model, m)
			if err != nil {
				klog.Errorf("caption %s: %v", m.InPath, err)
				continue
			}
			klog.Infof("%s: %q", m.InPath, caption)
			total++
			if *dryRun {
				continue
			}

			m.SetCaption(caption)
			if *sidecar {
				if err := bildvagg.WriteSidecar(m, caption, m.Keywords); err != nil {
					klog.Errorf("Failed to write sidecar for %s: %v", m.InPath, err)
				}
				continue
			}

			o := e.ExtractMetadata(m.InPath)
			for _, tag := range bildvagg.CaptionTags {
				o[0].SetString(tag, caption)
			}
			e.WriteMetadata(o)
			if o[0].Err != nil {
				klog.Errorf("Failed to write metadata for %s: %v", m.InPath, o[0].Err)
			}
		}
	}

	klog.Infof("captions completed: %d captions written", total)
}
