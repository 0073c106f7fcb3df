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

var (
	detectors d0z0.StringArrayFlags
	momenta   d0z0.FloatArrayFlags

	estimator  = flag.String("p", "", "record field to plot (e.g. sigma, res_quantile)")
	inputDir   = flag.String("i", ".", "directory where the detector folders are")
	refDet     = flag.String("def", "IDEA_base25", "detector that every detector is compared to")
	showParams = flag.Bool("params", false, "only print the fields to choose from")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] -d <detector> [-d <detector>]... -p <field>

Plots each detector's resolution against cos(theta) and its ratio to the
reference detector, for both d0 and z0.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Var(&detectors, "d", "detector to plot and compare to the reference (repeatable)")
	flag.Var(&momenta, "mom", "only plot these momenta in GeV (repeatable)")
	flag.Usage = printUsage
	flag.Parse()

	if *showParams {
		points.PrintEstimators(os.Stdout)
		return
	}
	if len(detectors.Array) == 0 || *estimator == "" || flag.NArg() != 0 {
		printUsage()
		log.Fatal("Invalid arguments")
	}
	if err := points.CheckEstimator(*estimator); err != nil {
		log.Fatal(err)
	}
	if err := layout.PlotDirs(*inputDir); err != nil {
		log.Fatal(err)
	}

	all := append(append([]string(nil), detectors.Array...), *refDet)
	for _, param := range layout.Params {
		data, err := points.GatherByDetector(*inputDir, all, param.Name, *estimator)
		if err != nil {
			log.Fatal(err)
		}
		for _, s := range data {
			filter(s)
		}
		fmt.Printf("\nParameter: %s\n", param.Name)
		data.Dump(os.Stdout)

		outDir := filepath.Join(*inputDir, param.Name+"_plots")
		ylabel := fmt.Sprintf("%s (Δ%s) (µm)", *estimator, param.Name)
		for _, det := range all {
			title := fmt.Sprintf("%s resolution vs cos θ for %s", param.Name, det)
			out := filepath.Join(outDir, det+"_"+param.Name+"_individual")
			if err := plots.Individual(data[det], title, ylabel, out); err != nil {
				log.Fatal(err)
			}
		}
		for _, det := range detectors.Array {
			if det == *refDet {
				continue
			}
			title := fmt.Sprintf("%s resolution: %s vs %s", param.Name, det, *refDet)
			out := filepath.Join(outDir, fmt.Sprintf("%s_ratio_%s_over_%s", param.Name, det, *refDet))
			if err := plots.Comparison(data[det], data[*refDet], det, *refDet, title, ylabel, out); err != nil {
				log.Fatal(err)
			}
		}
	}
}

func filter(s points.Series) {
	for mom := range s {
		if !momenta.Contains(mom) {
			delete(s, mom)
		}
	}
}
