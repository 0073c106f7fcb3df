package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/decibelcooper/d0z0"
	"github.com/decibelcooper/d0z0/layout"
	"github.com/decibelcooper/d0z0/plots"
	"github.com/decibelcooper/d0z0/points"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] -d <detector>...

Draws one heat map of the resolution over theta and momentum per detector
and impact parameter.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var detectors d0z0.StringArrayFlags
	flag.Var(&detectors, "d", "detector to map (repeatable)")
	var (
		estimator = flag.String("p", "sigma", "record field to plot")
		inputDir  = flag.String("i", ".", "directory where the detector folders are")
		zMax      = flag.Float64("max", 0, "top of the colour scale in µm (0: largest value)")
	)
	flag.Usage = printUsage
	flag.Parse()
	if len(detectors.Array) == 0 || flag.NArg() != 0 {
		printUsage()
		log.Fatal("Invalid arguments")
	}
	if err := points.CheckEstimator(*estimator); err != nil {
		log.Fatal(err)
	}
	if err := layout.PlotDirs(*inputDir); err != nil {
		log.Fatal(err)
	}

	for _, param := range layout.Params {
		data, err := points.GatherByDetector(*inputDir, detectors.Array, param.Name, *estimator)
		if err != nil {
			log.Fatal(err)
		}
		for _, det := range detectors.Array {
			title := fmt.Sprintf("%s %s for %s", param.Name, *estimator, det)
			out := filepath.Join(*inputDir, param.Name+"_plots", det+"_"+param.Name+"_map")
			if err := plots.ResolutionMap(data[det], title, *estimator+" (µm)", *zMax, out); err != nil {
				log.Fatal(err)
			}
		}
	}
}
