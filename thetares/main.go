package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/decibelcooper/d0z0"
	"github.com/decibelcooper/d0z0/layout"
	"github.com/decibelcooper/d0z0/plots"
	"github.com/decibelcooper/d0z0/points"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] -d <detector>... [-pair <A>/<B>]...

Plots each detector's resolution against theta, with theta and momentum
taken from the record file names, and the ratio A/B of each pair.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var detectors, pairs d0z0.StringArrayFlags
	flag.Var(&detectors, "d", "detector to plot (repeatable)")
	flag.Var(&pairs, "pair", "detectors A/B to take the ratio of (repeatable)")
	var (
		estimator = flag.String("p", "sigma", "record field to plot")
		inputDir  = flag.String("i", ".", "directory where the detector folders are")
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

	ratios := make([][2]string, 0, len(pairs.Array))
	for _, pair := range pairs.Array {
		a, b, ok := strings.Cut(pair, "/")
		if !ok || a == "" || b == "" {
			log.Fatalf("invalid pair %q, expected A/B", pair)
		}
		ratios = append(ratios, [2]string{a, b})
	}

	if err := layout.PlotDirs(*inputDir); err != nil {
		log.Fatal(err)
	}

	for _, param := range layout.Params {
		outDir := filepath.Join(*inputDir, param.Name+"_plots")
		data := make(map[string]points.Series)
		get := func(det string) points.Series {
			s, ok := data[det]
			if !ok {
				var err error
				if s, err = points.GatherByName(layout.RecordDir(*inputDir, det, param.Name), *estimator); err != nil {
					log.Fatal(err)
				}
				data[det] = s
			}
			return s
		}

		for _, det := range detectors.Array {
			title := fmt.Sprintf("%s resolution vs θ", strings.ToUpper(param.Name))
			ylabel := fmt.Sprintf("σ(Δ%s) (µm)", param.Name)
			if err := plots.ThetaScan(get(det), title, ylabel, filepath.Join(outDir, param.Name+"_"+det)); err != nil {
				log.Fatal(err)
			}
		}
		for _, r := range ratios {
			title := fmt.Sprintf("%s / %s: %s resolution ratio", r[0], r[1], strings.ToUpper(param.Name))
			out := filepath.Join(outDir, fmt.Sprintf("%s_%s_%s_ratio", param.Name, r[0], r[1]))
			if err := plots.ThetaRatio(get(r[0]), get(r[1]), r[0], r[1], title, out); err != nil {
				log.Fatal(err)
			}
		}
	}
}
