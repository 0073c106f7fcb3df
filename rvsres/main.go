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
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] -d <detector> [-d <detector>]... -p <field>

Plots, for every polar angle, the change of the resolution with respect to
the reference detector against the radius of the scanned layer.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var detectors d0z0.StringArrayFlags
	flag.Var(&detectors, "d", "detector of the radius scan (repeatable)")
	var (
		estimator  = flag.String("p", "", "record field to plot (e.g. sigma, res_quantile)")
		inputDir   = flag.String("i", "VTXIB_r1", "directory where the detector folders are")
		refDet     = flag.String("def", "IDEA_base25", "detector that every detector is compared to")
		xlabel     = flag.String("xlabel", "VTXIB layer 1 radius (mm)", "x axis label")
		showParams = flag.Bool("params", false, "only print the fields to choose from")
	)
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

	for _, param := range layout.Params {
		all, refs, err := points.GatherByTheta(*inputDir, detectors.Array, *refDet, param.Name, *estimator)
		if err != nil {
			log.Fatal(err)
		}
		refRadius, err := points.ReferenceRadius(*inputDir, *refDet, param.Name)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nParameter: %s\n", param.Name)
		all.Dump(os.Stdout)
		fmt.Printf("\nReference: %s\n", *refDet)
		refs.Dump(os.Stdout)

		ylabel := fmt.Sprintf("%s (Δ%s - Δ%s ref) / Δ%s ref (%%)", *estimator, param.Name, param.Name, param.Name)
		for _, theta := range all.Thetas() {
			title := fmt.Sprintf("%s resolution vs radius for theta %g deg", param.Name, theta)
			out := filepath.Join(*inputDir, param.Name+"_plots", fmt.Sprintf("%s_theta_%g_vs_res", param.Name, theta))
			if err := plots.RadiusScan(all[theta], refs, refRadius, title, *xlabel, ylabel, out); err != nil {
				log.Fatal(err)
			}
		}
	}
}
