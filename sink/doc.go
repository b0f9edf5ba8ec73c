// Package sink drains pipelines into results: a file, a count, a frequency
// table, a ranking or a printable report.
//
// Sinks pull their input to the end. When a pull fails the sink returns the
// error and no partial result.
package sink
