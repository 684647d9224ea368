package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/metrics/export/internaldefs"
)

// Source is what the exporter reads. *otpauth.Engine satisfies it.
type Source interface {
	MetricsSnapshot() otpauth.MetricsSnapshot
	DeliverySent() uint64
	DeliveryDropped() uint64
	DeliveryFailed() uint64
}

// Exporter renders engine metrics on every scrape.
type Exporter struct {
	source Source
}

func NewExporter(engine *otpauth.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource builds an exporter over any [Source].
func NewExporterFromSource(source Source) *Exporter {
	return &Exporter{source: source}
}

func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics, or "" when metrics are disabled and no
// delivery has been attempted.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	sent := p.source.DeliverySent()
	dropped := p.source.DeliveryDropped()
	failed := p.source.DeliveryFailed()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && sent == 0 && dropped == 0 && failed == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(8192)

	for _, def := range internaldefs.CounterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}

	for _, def := range internaldefs.HistogramDefs {
		nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		cumulative := internaldefs.CumulativeBuckets(nonCumulative)
		writeHistogram(&b, def.Name, def.Help, cumulative)
	}

	writeCounter(&b, "otpauth_delivery_sent_total", "OTP messages handed to the mail sender.", sent)
	writeCounter(&b, "otpauth_delivery_dropped_total", "OTP messages dropped because the delivery queue was full.", dropped)
	writeCounter(&b, "otpauth_delivery_failed_total", "OTP messages the sender failed to deliver.", failed)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeHistogram(b *strings.Builder, name, help string, cumulative [8]uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" histogram\n")

	for i, le := range internaldefs.HistogramBounds {
		b.WriteString(name)
		b.WriteString("_bucket{le=\"")
		b.WriteString(le)
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(cumulative[i], 10))
		b.WriteByte('\n')
	}

	count := cumulative[len(cumulative)-1]
	b.WriteString(name)
	b.WriteString("_count ")
	b.WriteString(strconv.FormatUint(count, 10))
	b.WriteByte('\n')

	// Snapshots carry no sum.
	b.WriteString(name)
	b.WriteString("_sum 0\n")
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
