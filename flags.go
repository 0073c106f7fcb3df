package d0z0

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatArrayFlags collects a repeatable float flag such as -mom 1 -mom 5 or
// -mom 1,5. The first Set replaces any default value.
type FloatArrayFlags struct {
	Array   []float64
	beenSet bool
}

func (f *FloatArrayFlags) Set(valueStr string) error {
	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}

	for _, field := range splitList(valueStr) {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		f.Array = append(f.Array, value)
	}
	return nil
}

func (f *FloatArrayFlags) String() string {
	return fmt.Sprint(f.Array)
}

// Contains reports whether v was given, or whether no value was given at all.
func (f *FloatArrayFlags) Contains(v float64) bool {
	if len(f.Array) == 0 {
		return true
	}
	for _, a := range f.Array {
		if a == v {
			return true
		}
	}
	return false
}

// StringArrayFlags is the string counterpart of FloatArrayFlags.
type StringArrayFlags struct {
	Array   []string
	beenSet bool
}

func (f *StringArrayFlags) Set(valueStr string) error {
	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}

	f.Array = append(f.Array, splitList(valueStr)...)
	return nil
}

func (f *StringArrayFlags) String() string {
	return strings.Join(f.Array, ",")
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
