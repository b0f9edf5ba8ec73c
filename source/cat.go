package source

import (
	"context"
	"strings"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
	"github.com/kbukum/sawmill/pipeline"
)

// Cat yields every line of every origin in order. Paths are opened when
// first pulled and closed when exhausted or when the chain is closed.
// Streams are read as they are and left open.
func Cat(origins *pipeline.Pipeline[Origin]) *pipeline.Pipeline[string] {
	return catWith("cat", origins, func(string) opener { return openPlain })
}

// GzCat is Cat for gzip-compressed paths.
func GzCat(origins *pipeline.Pipeline[Origin]) *pipeline.Pipeline[string] {
	return catWith("gzcat", origins, func(string) opener { return openGzip })
}

// AutoCat reads each path through GzCat when its name ends in ".gz" and
// through Cat otherwise, yielding one flattened sequence of lines.
func AutoCat(paths *pipeline.Pipeline[string]) *pipeline.Pipeline[string] {
	return catWith("autocat", Paths(paths), func(path string) opener {
		if strings.HasSuffix(path, ".gz") {
			return openGzip
		}
		return openPlain
	})
}

func catWith(stage string, origins *pipeline.Pipeline[Origin], pick func(path string) opener) *pipeline.Pipeline[string] {
	log := logger.WithStage(stage)
	return pipeline.FlatMap(origins, func(_ context.Context, o Origin) (pipeline.Iterator[string], error) {
		switch o.kind {
		case KindStream:
			return newLineIter(o.name, o.stream, nil), nil
		case KindPath:
			r, closer, err := pick(o.path)(o.path)
			if err != nil {
				return nil, err
			}
			log.Debug("opened", logger.Fields(logger.FieldPath, o.path))
			return newLineIter(o.path, r, closer), nil
		default:
			return nil, errors.Misconfiguration("origin", stage+" cannot read a "+o.kind.String()+" origin; use SystemStdout")
		}
	})
}
