package stage

import (
	"os"

	"github.com/kbukum/sawmill/pipeline"
)

// Files keeps the paths that are regular files when pulled. Paths that
// cannot be stat'ed are skipped.
func Files(p *pipeline.Pipeline[string]) *pipeline.Pipeline[string] {
	return pipeline.Filter(p, func(path string) bool {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	})
}

// Dirs keeps the paths that are directories when pulled. Paths that cannot
// be stat'ed are skipped.
func Dirs(p *pipeline.Pipeline[string]) *pipeline.Pipeline[string] {
	return pipeline.Filter(p, func(path string) bool {
		info, err := os.Stat(path)
		return err == nil && info.IsDir()
	})
}
