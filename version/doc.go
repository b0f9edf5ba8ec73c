// Package version reports the sawmill build version.
//
// Release builds set the variables with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/sawmill/version.Version=1.0.0"
package version
