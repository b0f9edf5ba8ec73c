// Package recipe wires sources, stages and sinks into ready-made pipelines
// for web-server access logs.
//
//	records, err := recipe.NginxLogs()
//	top, err := recipe.TopRequests(ctx, records, 10)
//
// Lines are split into fields with shell-word rules, which approximates
// the Common Log Format: the quoted request stays one field, but a
// bracketed timestamp containing a space becomes two.
package recipe
