// Package points reads resolution records back as plottable data points
// and groups them the ways the comparison tools need.
package points

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/decibelcooper/d0z0/card"
	"github.com/decibelcooper/d0z0/layout"
	"github.com/decibelcooper/d0z0/record"
)

// Point is one estimator value of one sample.
type Point struct {
	P        float64 // GeV
	Theta    float64 // degrees
	CosTheta float64

	Subsystem string
	Layer     int
	Radius    float64 // mm

	Value float64 // µm
	Err   float64 // NaN when the record has no error for the estimator
}

func (p Point) String() string {
	return fmt.Sprintf("p = %g; theta = %g; cosTheta = %g; subsystem = %s; layer: %d; radius: %g; param: %g",
		p.P, p.Theta, p.CosTheta, p.Subsystem, p.Layer, p.Radius, p.Value)
}

// Estimator is a record field that can be plotted.
type Estimator struct {
	Key         string
	Description string
}

// Estimators lists the plottable record fields.
var Estimators = []Estimator{
	{record.KeyRMS, "root-mean-square width"},
	{record.KeySigma, "gaussian fit sigma"},
	{record.KeyResQuantile, "resolution by quantiles"},
	{record.KeySigmaFWHM, "full width half maximum sigma"},
}

// PrintEstimators writes the estimator keys and their meaning.
func PrintEstimators(w io.Writer) {
	fmt.Fprintln(w)
	for _, e := range Estimators {
		fmt.Fprintf(w, "%q: %s\n", e.Key, e.Description)
	}
	fmt.Fprintln(w)
}

// CheckEstimator reports whether key is a known estimator.
func CheckEstimator(key string) error {
	for _, e := range Estimators {
		if e.Key == key {
			return nil
		}
	}
	return fmt.Errorf("points: unknown estimator %q", key)
}

// FromRecord builds the point of estimator from a record. Theta and
// momentum are the first elements of the card ranges.
func FromRecord(rec *record.Record, estimator string) (Point, error) {
	var (
		pt  Point
		err error
	)
	if pt.Theta, err = rec.Float(card.KeyTheta); err != nil {
		return pt, err
	}
	if pt.P, err = rec.Float(card.KeyMom); err != nil {
		return pt, err
	}
	pt.CosTheta = math.Cos(pt.Theta * math.Pi / 180)

	if pt.Value, err = rec.Float(estimator); err != nil {
		return pt, err
	}
	pt.Err = math.NaN()
	if _, ok := rec.Get(estimator + "_err"); ok {
		if pt.Err, err = rec.Float(estimator + "_err"); err != nil {
			return pt, err
		}
	}

	// provenance is optional, records from older runs lack it
	if _, ok := rec.Get(record.KeySubsystem); ok {
		pt.Subsystem, _ = rec.String(record.KeySubsystem)
	}
	if _, ok := rec.Get(record.KeyLayer); ok {
		if pt.Layer, err = rec.Int(record.KeyLayer); err != nil {
			return pt, err
		}
	}
	pt.Radius = math.NaN()
	if _, ok := rec.Get(record.KeyRadius); ok {
		if pt.Radius, err = rec.Float(record.KeyRadius); err != nil {
			return pt, err
		}
	}
	return pt, nil
}

// Read returns the points of every record in dir.
func Read(dir, estimator string) ([]Point, error) {
	paths, err := layout.Records(dir)
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	pts := make([]Point, 0, len(paths))
	for _, path := range paths {
		rec, err := record.ReadFile(path)
		if err != nil {
			return nil, err
		}
		pt, err := FromRecord(rec, estimator)
		if err != nil {
			return nil, fmt.Errorf("points: %s: %w", path, err)
		}
		pts = append(pts, pt)
	}
	return pts, nil
}

// Series groups points by momentum.
type Series map[float64][]Point

// Momenta returns the momenta in increasing order.
func (s Series) Momenta() []float64 {
	out := make([]float64, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Float64s(out)
	return out
}

func (s Series) add(pt Point) { s[pt.P] = append(s[pt.P], pt) }

func (s Series) sortBy(less func(a, b Point) bool) {
	for _, pts := range s {
		sort.SliceStable(pts, func(i, j int) bool { return less(pts[i], pts[j]) })
	}
}

func (s Series) dump(w io.Writer, indent string) {
	for _, p := range s.Momenta() {
		fmt.Fprintf(w, "%sMomentum: %g GeV\n", indent, p)
		for _, pt := range s[p] {
			fmt.Fprintf(w, "%s  %v\n", indent, pt)
		}
	}
}

// ByDetector maps detector names to their series.
type ByDetector map[string]Series

// GatherByDetector reads the param records of each detector under
// studyDir, with points sorted by cos(theta).
func GatherByDetector(studyDir string, detectors []string, param, estimator string) (ByDetector, error) {
	out := make(ByDetector, len(detectors))
	for _, det := range detectors {
		pts, err := Read(layout.RecordDir(studyDir, det, param), estimator)
		if err != nil {
			return nil, err
		}
		s := make(Series)
		for _, pt := range pts {
			s.add(pt)
		}
		s.sortBy(func(a, b Point) bool { return a.CosTheta < b.CosTheta })
		out[det] = s
	}
	return out, nil
}

// Dump prints every point, detectors in name order.
func (b ByDetector) Dump(w io.Writer) {
	names := make([]string, 0, len(b))
	for n := range b {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  Detector: %s\n", n)
		b[n].dump(w, "    ")
	}
}

// ByTheta maps polar angles to series.
type ByTheta map[float64]Series

// Thetas returns the angles in increasing order.
func (b ByTheta) Thetas() []float64 {
	out := make([]float64, 0, len(b))
	for t := range b {
		out = append(out, t)
	}
	sort.Float64s(out)
	return out
}

func (b ByTheta) add(pt Point) {
	s, ok := b[pt.Theta]
	if !ok {
		s = make(Series)
		b[pt.Theta] = s
	}
	s.add(pt)
}

// Dump prints every point, angles in increasing order.
func (b ByTheta) Dump(w io.Writer) {
	for _, t := range b.Thetas() {
		fmt.Fprintf(w, "  Theta: %g deg\n", t)
		b[t].dump(w, "    ")
	}
}

// Reference returns the reference point at (theta, p).
func (b ByTheta) Reference(theta, p float64) (Point, bool) {
	pts := b[theta][p]
	if len(pts) == 0 {
		return Point{}, false
	}
	return pts[0], true
}

// GatherByTheta reads the param records of the detectors and of ref, all
// grouped by theta then momentum and sorted by layer radius. The points of
// ref alone are returned as well.
func GatherByTheta(studyDir string, detectors []string, ref, param, estimator string) (all, refs ByTheta, err error) {
	all, refs = make(ByTheta), make(ByTheta)
	for _, det := range append(append([]string(nil), detectors...), ref) {
		pts, err := Read(layout.RecordDir(studyDir, det, param), estimator)
		if err != nil {
			return nil, nil, err
		}
		for _, pt := range pts {
			all.add(pt)
			if det == ref {
				refs.add(pt)
			}
		}
	}
	for _, s := range all {
		s.sortBy(func(a, b Point) bool { return a.Radius < b.Radius })
	}
	return all, refs, nil
}

// ReferenceRadius returns the layer radius recorded by ref.
func ReferenceRadius(studyDir, ref, param string) (float64, error) {
	paths, err := layout.Records(layout.RecordDir(studyDir, ref, param))
	if err != nil {
		return 0, fmt.Errorf("points: %w", err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("points: no records for %s", ref)
	}
	rec, err := record.ReadFile(paths[0])
	if err != nil {
		return 0, err
	}
	return rec.Float(record.KeyRadius)
}

// GatherByName reads the records in dir taking theta and momentum from
// the file names, with points sorted by theta.
func GatherByName(dir, estimator string) (Series, error) {
	paths, err := layout.Records(dir)
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	s := make(Series)
	for _, path := range paths {
		sample, err := card.ParseSampleName(path)
		if err != nil {
			return nil, err
		}
		rec, err := record.ReadFile(path)
		if err != nil {
			return nil, err
		}
		v, err := rec.Float(estimator)
		if err != nil {
			return nil, fmt.Errorf("points: %s: %w", path, err)
		}
		s.add(Point{
			P:        sample.Mom,
			Theta:    sample.Theta,
			CosTheta: math.Cos(sample.Theta * math.Pi / 180),
			Value:    v,
			Err:      math.NaN(),
			Radius:   math.NaN(),
		})
	}
	s.sortBy(func(a, b Point) bool { return a.Theta < b.Theta })
	return s, nil
}
