package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// InvalidWindowFormatError reports an accumulation window string that does
// not parse as an integer followed by a unit letter.
type InvalidWindowFormatError struct {
	Window string
}

func (e *InvalidWindowFormatError) Error() string {
	return fmt.Sprintf("invalid accumulation window %q: use a format like 6h, 24h, or 7d", e.Window)
}

// UnsupportedUnitError reports a window unit the parser does not handle.
type UnsupportedUnitError struct {
	Window string
	Unit   string
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("unsupported unit %q in accumulation window %q", e.Unit, e.Window)
}

var windowRe = regexp.MustCompile(`^(\d+)([hd])$`)

// ParseWindowSteps converts a window string like "6h", "24h", or "7d" into a
// rolling step count.
//
// The conversion assumes 3-hourly data spacing (h: value/3, d: value*8)
// rather than reading the dataset's real spacing. That is a known
// limitation kept for parity with existing consumers; deriving the count
// from actual coordinate differences would change results on non-3-hourly
// data.
func ParseWindowSteps(window string) (int, error) {
	m := windowRe.FindStringSubmatch(strings.ToLower(window))
	if m == nil {
		return 0, &InvalidWindowFormatError{Window: window}
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &InvalidWindowFormatError{Window: window}
	}
	switch m[2] {
	case "h":
		return value / 3, nil
	case "d":
		return value * 8, nil
	}
	return 0, &UnsupportedUnitError{Window: window, Unit: m[2]}
}

// Accumulate converts an instantaneous precipitation rate (mm/s, i.e.
// kg m-2 s-1) into accumulated depth (mm).
//
// Per-step durations come from the actual lead-time coordinate differences;
// the first step, having no predecessor, is assigned the second step's
// duration. Stepwise accumulation is rate x duration_seconds. An empty
// window returns the stepwise result; otherwise the window is parsed with
// ParseWindowSteps and a trailing rolling sum is applied, with a minimum of
// one valid step (leading outputs are partial sums, not missing).
func Accumulate(rate *Array, window string) (*Array, error) {
	stepName, err := Resolve(rate, RoleStep)
	if err != nil {
		return nil, err
	}
	step := rate.Coords[stepName]
	if len(step.Durs) < 2 {
		return nil, fmt.Errorf("accumulation needs at least two lead-time steps, got %d", len(step.Durs))
	}

	secs := make([]float64, len(step.Durs))
	for i := 1; i < len(step.Durs); i++ {
		secs[i] = (step.Durs[i] - step.Durs[i-1]).Seconds()
	}
	secs[0] = secs[1]

	axis, ok := rate.AxisIndex(step.Dims[0])
	if !ok {
		return nil, fmt.Errorf("array %s has no dimension %q", rate.Name, step.Dims[0])
	}

	out := rate.shallowCopy()
	out.Data = make([]float64, len(rate.Data))
	out.Units = "mm"

	st := strides(rate.Shape)
	stepStride := st[axis]
	stepLen := rate.Shape[axis]
	for i, v := range rate.Data {
		pos := (i / stepStride) % stepLen
		out.Data[i] = v * secs[pos]
	}

	if window == "" {
		return out, nil
	}

	steps, err := ParseWindowSteps(window)
	if err != nil {
		return nil, err
	}
	if steps < 1 {
		return nil, fmt.Errorf("accumulation window %q is shorter than one step", window)
	}
	rollingSum(out.Data, rate.Shape, axis, steps)
	return out, nil
}

// rollingSum replaces data in place with a trailing windowed sum along axis.
// Missing values are skipped; a window with no finite value yields NaN.
func rollingSum(data []float64, shape []int, axis, window int) {
	st := strides(shape)
	stepStride := st[axis]
	stepLen := shape[axis]
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}

	buf := make([]float64, stepLen)
	for o := 0; o < outer; o++ {
		for in := 0; in < stepStride; in++ {
			base := o*stepLen*stepStride + in
			for k := 0; k < stepLen; k++ {
				buf[k] = data[base+k*stepStride]
			}
			for k := stepLen - 1; k >= 0; k-- {
				sum := 0.0
				count := 0
				for j := k; j > k-window && j >= 0; j-- {
					if !math.IsNaN(buf[j]) {
						sum += buf[j]
						count++
					}
				}
				if count == 0 {
					data[base+k*stepStride] = math.NaN()
				} else {
					data[base+k*stepStride] = sum
				}
			}
		}
	}
}
