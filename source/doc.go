// Package source adapts files, gzip files, directory listings and child
// processes into lazy pipelines.
//
// Line sources yield each line with its terminator, if it had one. Nothing
// is opened until the pipeline is pulled, and every file, directory handle
// and process a source acquires is released when its iterator is exhausted
// or closed, whichever comes first.
//
//	lines := source.AutoCat(stage.Files(source.ListDir("/var/log/nginx")))
//	n, err := sink.Count(ctx, lines)
package source
