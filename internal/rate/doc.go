// Package rate implements the gateway's per-client request budget as a
// Redis fixed-window counter: INCR, with EXPIRE applied on the first hit of
// each window.
package rate
