package ldap

import (
	"strings"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
)

// StatisticsCollector exports a Statistics as Prometheus counters, one
// metric per counter, labelled with the statistics name.
type StatisticsCollector struct {
	stats *Statistics
	descs [numCounters]*prometheus.Desc
}

var _ prometheus.Collector = (*StatisticsCollector)(nil)

// NewStatisticsCollector returns a collector for stats. Metric names are
// namespace_ldap_<counter>_total, with the counter name in snake case.
func NewStatisticsCollector(stats *Statistics, namespace string) *StatisticsCollector {
	c := &StatisticsCollector{stats: stats}
	for i, n := range counterNames {
		c.descs[i] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ldap", snakeCase(n)+"_total"),
			"LDAP "+n+" counter.",
			nil,
			prometheus.Labels{"scope": stats.Name()},
		)
	}
	return c
}

func (c *StatisticsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *StatisticsCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	for i, d := range c.descs {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(snap.values[i]))
	}
}

// snakeCase turns "modifyDNRequests" into "modify_dn_requests".
func snakeCase(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
