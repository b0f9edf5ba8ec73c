// Package stage holds the filter and transform stages that sit between a
// source and a sink.
//
// Every stage takes one lazy pipeline and returns another. Nothing is read
// until the result is pulled, and each pull consumes only as much upstream
// input as it needs. Constructors that take patterns, templates or split
// strategies validate them up front and return a MISCONFIGURATION error.
package stage
