// Package errors provides the error taxonomy shared by every sawmill stage.
//
// All failures raised by sources, stages and sinks are *AppError values
// carrying a machine-readable ErrorCode, a human-readable message, optional
// details and the underlying cause. Nothing in sawmill retries or recovers:
// errors propagate to whoever pulled the failing stage.
//
//	lines, err := pipeline.Collect(ctx, source.Cat(origins))
//	if errors.HasCode(err, errors.ErrCodeResourceAcquisition) {
//	    // missing file, permission denied, ...
//	}
package errors
