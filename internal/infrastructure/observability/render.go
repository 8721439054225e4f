package observability

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// WriteText writes the exposition-format rendering of every family: HELP and
// TYPE headers, then one line per series. Families appear in registration
// order, series sorted by label values, so output is deterministic.
func (r *Registry) WriteText(w io.Writer) error {
	for _, fam := range r.snapshot() {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n", fam.name, escapeHelp(fam.help)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "# TYPE %s %s\n", fam.name, fam.typ); err != nil {
			return err
		}
		for _, s := range fam.sortedSeries() {
			if err := writeSeries(w, fam, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderText is WriteText into a string.
func (r *Registry) RenderText() (string, error) {
	var b strings.Builder
	if err := r.WriteText(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeSeries(w io.Writer, fam *family, s *series) error {
	if fam.typ != typeHistogram {
		_, err := fmt.Fprintf(w, "%s%s %s\n",
			fam.name, labelPairs(fam.labelNames, s.labelValues, "", ""), formatValue(s.value))
		return err
	}

	for i, upper := range fam.buckets {
		_, err := fmt.Fprintf(w, "%s_bucket%s %d\n",
			fam.name, labelPairs(fam.labelNames, s.labelValues, "le", formatValue(upper)), s.bucketCounts[i])
		if err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n",
		fam.name, labelPairs(fam.labelNames, s.labelValues, "le", "+Inf"), s.count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s_sum%s %s\n",
		fam.name, labelPairs(fam.labelNames, s.labelValues, "", ""), formatValue(s.sum)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s_count%s %d\n",
		fam.name, labelPairs(fam.labelNames, s.labelValues, "", ""), s.count)
	return err
}

func labelPairs(names, values []string, extraName, extraValue string) string {
	if len(names) == 0 && extraName == "" {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", name, escapeLabel(values[i]))
	}
	if extraName != "" {
		if len(names) > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", extraName, extraValue)
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func escapeHelp(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// Snapshot is the JSON rendering of the registry: every family with at least
// one observed series, grouped by name.
type Snapshot struct {
	Timestamp time.Time                 `json:"timestamp"`
	Metrics   map[string]MetricSnapshot `json:"metrics"`
}

type MetricSnapshot struct {
	Help   string        `json:"help"`
	Type   string        `json:"type"`
	Values []SampleValue `json:"values"`
}

// SampleValue is one series sample. Histogram series expand into le-labeled
// bucket samples plus _sum and _count samples carrying MetricName.
type SampleValue struct {
	Value      float64           `json:"value"`
	Labels     map[string]string `json:"labels"`
	MetricName string            `json:"metricName,omitempty"`
}

// RenderJSON returns the structured snapshot. Families with no observed
// series are omitted.
func (r *Registry) RenderJSON() Snapshot {
	snap := Snapshot{
		Timestamp: time.Now().UTC(),
		Metrics:   make(map[string]MetricSnapshot),
	}

	for _, fam := range r.snapshot() {
		all := fam.sortedSeries()
		if len(all) == 0 {
			continue
		}

		ms := MetricSnapshot{Help: fam.help, Type: string(fam.typ)}
		for _, s := range all {
			ms.Values = append(ms.Values, sampleValues(fam, s)...)
		}
		snap.Metrics[fam.name] = ms
	}
	return snap
}

func sampleValues(fam *family, s *series) []SampleValue {
	base := func() map[string]string {
		labels := make(map[string]string, len(fam.labelNames)+1)
		for i, name := range fam.labelNames {
			labels[name] = s.labelValues[i]
		}
		return labels
	}

	if fam.typ != typeHistogram {
		return []SampleValue{{Value: s.value, Labels: base()}}
	}

	out := make([]SampleValue, 0, len(fam.buckets)+3)
	for i, upper := range fam.buckets {
		labels := base()
		labels["le"] = formatValue(upper)
		out = append(out, SampleValue{
			Value:      float64(s.bucketCounts[i]),
			Labels:     labels,
			MetricName: fam.name + "_bucket",
		})
	}
	infLabels := base()
	infLabels["le"] = "+Inf"
	out = append(out,
		SampleValue{Value: float64(s.count), Labels: infLabels, MetricName: fam.name + "_bucket"},
		SampleValue{Value: s.sum, Labels: base(), MetricName: fam.name + "_sum"},
		SampleValue{Value: float64(s.count), Labels: base(), MetricName: fam.name + "_count"},
	)
	return out
}
