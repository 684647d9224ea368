// Package internaldefs holds the metric names and bucket bounds used by the
// exporters, so every exporter renders the same names.
//
// This package performs no I/O.
package internaldefs
