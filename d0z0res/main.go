package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/decibelcooper/d0z0"
	"github.com/decibelcooper/d0z0/resolution"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options]

Extracts the resolution estimators of one residual histogram and writes
<output>.json, <output>.png and <output>.pdf.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var (
		input     = flag.String("input", "", "ROOT file written by the tracking analysis")
		output    = flag.String("output", "", "output file base name")
		cardPath  = flag.String("card", "", ".input file where the gun configuration is stored")
		hist      = flag.String("hist", "", "histogram to extract")
		abbrev    = flag.String("abbrev", "", "short name of the histogram for the plot axis (default -hist)")
		subsystem = flag.String("subsystem", "", "detector subsystem the file is from (e.g. VTXIB)")
		layer     = flag.Int("layer", 0, "layer of the detector subsystem")
		radius    = flag.Float64("radius", math.NaN(), "radius of the layer in mm")
		noPlots   = flag.Bool("noplots", false, "only write the record")
		verbose   = flag.Bool("v", false, "debug logging")
		prof      = flag.Bool("profile", false, "write a CPU profile")
	)
	flag.Usage = printUsage
	flag.Parse()
	if *input == "" || *output == "" || *cardPath == "" || *hist == "" || *subsystem == "" || math.IsNaN(*radius) || flag.NArg() != 0 {
		printUsage()
		log.Fatal("Invalid arguments")
	}
	label := *abbrev
	if label == "" {
		label = *hist
	}
	job := resolution.Job{
		Input:     *input,
		Hist:      *hist,
		Card:      *cardPath,
		Output:    *output,
		Label:     label,
		Subsystem: *subsystem,
		Layer:     *layer,
		Radius:    *radius,
	}

	if err := run(job, *verbose, *noPlots, *prof); err != nil {
		log.Fatal(err)
	}
}

// run holds the deferred profile and logger flushes, which log.Fatal in
// main would skip.
func run(job resolution.Job, verbose, noPlots, prof bool) error {
	if prof {
		defer profile.Start().Stop()
	}

	logger, err := d0z0.NewLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ext := &resolution.Extractor{Log: logger, NoPlots: noPlots}
	res, err := ext.Do(job)
	if err != nil {
		logger.Error("extraction failed", zap.Error(err))
		return err
	}

	fmt.Printf("rms = %g +- %g\n", res.RMS, res.RMSErr)
	fmt.Printf("sigma = %g +- %g\n", res.Fit.Sigma, res.Fit.SigmaErr)
	fmt.Printf("res_quantile = %g\n", res.ResQuantile)
	fmt.Printf("FWHM = %g\n", res.FWHM)
	return nil
}
