//go:build js && wasm

// wall is the browser half of bildvagg: it loads a gallery's manifest and
// runs the photo wall until the page goes away.
package main

import (
	"context"
	"flag"

	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/view"
	"github.com/tstromberg/bildvagg/pkg/view/jsdom"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	h := jsdom.New()
	p := view.New(h, view.Config{DeepLinking: true})
	if err := p.Load(context.Background()); err != nil {
		klog.Errorf("load: %v", err)
	}

	select {}
}
