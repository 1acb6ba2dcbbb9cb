// Package retry provides classified, backed-off retrying for channel sends,
// split into a synchronous and an asynchronous half.
//
// The Controller wraps one send with in-line retries: exponential backoff
// with ±10% jitter between attempts, permanent failures (invalid input,
// unauthorized, forbidden, not found) aborting immediately, and the backoff
// sleep interruptible by context cancellation.
//
//	ctrl := retry.NewController(retry.DefaultConfig())
//	outcome, err := ctrl.Execute(ctx, func(ctx context.Context) error {
//	    return sender.Send(ctx, userID, content)
//	})
//
// When Execute exhausts its attempts (errors.Is(err, retry.ErrExhausted)),
// the caller hands the send off to the Processor, which persists a retry
// record with a computed next-retry time. A background sweep re-executes due
// records; a record that reaches its attempt cap is closed as failed and
// copied verbatim into the dead letter store for manual inspection — it is
// never silently dropped.
package retry
