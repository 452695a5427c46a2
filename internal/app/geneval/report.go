package geneval

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Report is the score table of one run. Metric names keep the order they
// were computed in. The dirs are the ones actually read, ground truth may
// have been redirected to a resized sibling.
type Report struct {
	GTDir   string
	PredDir string
	names   []string
	values  []string
}

// add formats a score to four decimal places and appends the column.
func (r *Report) add(name string, value float64) {
	r.names = append(r.names, name)
	r.values = append(r.values, fmt.Sprintf("%.4f", value))
}

// Names returns the column names in presentation order.
func (r *Report) Names() []string {
	return r.names
}

// Value returns the formatted score for the named metric.
func (r *Report) Value(name string) (string, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return "", false
}

// Render writes the source dirs and the score table.
func (r *Report) Render(w io.Writer) error {
	fmt.Fprintln(w, "GT Folder:  ", r.GTDir)
	fmt.Fprintln(w, "Pred Folder:", r.PredDir)

	var tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(r.names, "\t"))
	fmt.Fprintln(tw, strings.Join(r.values, "\t"))
	return tw.Flush()
}
