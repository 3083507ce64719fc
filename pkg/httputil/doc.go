// Package httputil provides HTTP retry utilities for package registry clients.
//
// # Overview
//
// This package provides the retry infrastructure used by registry API
// clients:
//
//   - [Retry]: Automatic retry with exponential backoff
//   - [RetryableError]: Marker wrapper for transient failures
//
// # Retry
//
// [Retry] executes an operation up to a fixed number of attempts, doubling
// the delay after each failure. Only errors wrapped in [RetryableError] are
// retried; anything else is returned immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 500 {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    return nil
//	})
//
// Permanent failures (404 responses, malformed payloads) should be returned
// unwrapped so the loop stops on the first attempt.
//
// # Configuration
//
// [RetryWithBackoff] applies the default policy suitable for most registry
// requests:
//
//   - Max attempts: 3
//   - Base backoff: 1 second, doubling each retry
package httputil
