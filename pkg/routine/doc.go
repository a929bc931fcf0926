// Package routine executes interruptible, time-limited bodies outside the
// state-machine runtime.
//
// A Routine repeats its body until it produces an output, pausing between
// iterations. Errors from the body are recorded as failures and retried. The
// whole run is one abortable region:
//
//   - a graceful stop ends the loop at the next iteration with domain.ErrInterrupted;
//   - an elapsed time limit cancels the body context and yields domain.ErrTimeout;
//   - a forced stop cancels the body context and yields domain.ErrAborted, which
//     wins over a timeout hitting at the same time.
//
// Finalize runs after the region resolved, whatever the outcome.
//
// A Task is the one-shot variant: its body runs once inside the same region.
package routine
