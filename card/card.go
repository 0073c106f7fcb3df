// Package card reads and writes particle-gun configuration cards.
//
// A card is a plain text file with one "key value" pair per line, e.g.
//
//	npart 1
//	theta_range 10.0,10.0
//	mom_range 5.0,5.0
//	pid_list 13
//	nevents 100000
//
// Keys are kept in file order and are not schema checked.
package card

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	KeyNPart   = "npart"
	KeyTheta   = "theta_range"
	KeyMom     = "mom_range"
	KeyPIDs    = "pid_list"
	KeyNEvents = "nevents"
)

// Entry is a single line of a card.
type Entry struct {
	Key   string
	Value string
}

// Card is an ordered list of key/value entries.
type Card struct {
	Entries []Entry
}

// New returns the canonical single-value card for one (theta, momentum)
// sample.
func New(npart int, theta, mom float64, pid, nevents int) *Card {
	c := &Card{}
	c.Set(KeyNPart, strconv.Itoa(npart))
	c.Set(KeyTheta, formatRange(theta))
	c.Set(KeyMom, formatRange(mom))
	c.Set(KeyPIDs, strconv.Itoa(pid))
	c.Set(KeyNEvents, strconv.Itoa(nevents))
	return c
}

func formatRange(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "," + s
}

// Parse reads a card. Each non-blank line is split at its first space; a
// line without a space is an error.
func Parse(r io.Reader) (*Card, error) {
	c := &Card{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		key, value, ok := strings.Cut(text, " ")
		if !ok {
			return nil, fmt.Errorf("card: line %d: missing value for key %q", line, text)
		}
		c.Entries = append(c.Entries, Entry{Key: key, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("card: %w", err)
	}
	return c, nil
}

// ReadFile parses the card stored at path.
func ReadFile(path string) (*Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Get returns the value stored under key.
func (c *Card) Get(key string) (string, bool) {
	for _, e := range c.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key or appends a new entry.
func (c *Card) Set(key, value string) {
	for i := range c.Entries {
		if c.Entries[i].Key == key {
			c.Entries[i].Value = value
			return
		}
	}
	c.Entries = append(c.Entries, Entry{Key: key, Value: value})
}

// Range parses a "min,max" value.
func (c *Card) Range(key string) (min, max float64, err error) {
	v, ok := c.Get(key)
	if !ok {
		return 0, 0, fmt.Errorf("card: no %q entry", key)
	}
	return ParseRange(v)
}

// ParseRange parses a "min,max" string. A single number is accepted as a
// degenerate range.
func ParseRange(v string) (min, max float64, err error) {
	lo, hi, ok := strings.Cut(v, ",")
	if !ok {
		hi = lo
	}
	if min, err = strconv.ParseFloat(strings.TrimSpace(lo), 64); err != nil {
		return 0, 0, fmt.Errorf("card: bad range %q: %w", v, err)
	}
	if max, err = strconv.ParseFloat(strings.TrimSpace(hi), 64); err != nil {
		return 0, 0, fmt.Errorf("card: bad range %q: %w", v, err)
	}
	return min, max, nil
}

// Theta returns the lower edge of the polar angle range in degrees. Only
// single-value ranges are meaningful for resolution studies.
func (c *Card) Theta() (float64, error) {
	min, _, err := c.Range(KeyTheta)
	return min, err
}

// Momentum returns the lower edge of the momentum range in GeV.
func (c *Card) Momentum() (float64, error) {
	min, _, err := c.Range(KeyMom)
	return min, err
}

// WriteTo writes the card, one entry per line.
func (c *Card) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, e := range c.Entries {
		fmt.Fprintf(&buf, "%s %s\n", e.Key, e.Value)
	}
	return buf.WriteTo(w)
}

// WriteFile writes the card to path.
func (c *Card) WriteFile(path string) error {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
