// Package async runs functions in the background and exposes their results
// as futures.
//
//	f := async.Go(ctx, func(ctx context.Context) (string, error) {
//		return identity.Token(ctx)
//	})
//	token, err := f.Await()
//
// A panic inside the function is recovered and reported as an error wrapping
// ErrPanic, so an awaiting caller always gets a result.
package async
