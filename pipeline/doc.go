// Package pipeline provides composable, pull-based data pipeline operators.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, ForEach or All. Each stage pulls from the previous stage on demand,
// so a consumer that stops early never causes upstream work it did not ask
// for. Every run builds a fresh iterator chain, which makes a Pipeline value
// a reusable description rather than a one-shot stream.
//
// Closing the outermost iterator closes the whole chain. Sources that hold
// files or processes release them in Close.
//
// # Operators
//
//   - Map: transform each value
//   - FlatMap: transform each value into multiple values
//   - Filter, TryFilter: keep values matching a predicate
//   - Tap: side-effect without altering the value (logging, metrics)
//   - Take: stop after n values
//   - Reduce: accumulate all values into one result
//   - Concat: join pipelines sequentially
//
// # Usage
//
//	src := pipeline.FromSlice([]int{1, 2, 3, 4, 5})
//	doubled := pipeline.Map(src, func(_ context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//	evens := pipeline.Filter(doubled, func(n int) bool { return n%2 == 0 })
//	results, _ := pipeline.Collect(ctx, evens)
package pipeline
