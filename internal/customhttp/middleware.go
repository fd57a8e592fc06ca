package customhttp

import (
	"net/http"
	"time"
)

type middleware func(next httpCommandFunc) httpCommandFunc

var retryBaseDelay = 250 * time.Millisecond

func chainMiddleware(m ...middleware) middleware {
	return func(final httpCommandFunc) httpCommandFunc {
		last := final
		for i := len(m) - 1; i >= 0; i-- {
			last = m[i](last)
		}

		return func(req *http.Request) (resp *http.Response, err error) {
			return last(req)
		}
	}
}

func noOpsMiddleware() middleware {
	return func(next httpCommandFunc) httpCommandFunc {
		return func(req *http.Request) (resp *http.Response, err error) {
			return next(req)
		}
	}
}

// retryMiddleware retries network-level failures and 5xx/429 responses with a
// doubling delay. Auth failures (400/401) pass straight through; recovering
// from those is the token refresh protocol's job, not the transport's.
func retryMiddleware(maxRetries int) middleware {
	return func(next httpCommandFunc) httpCommandFunc {
		return func(req *http.Request) (resp *http.Response, err error) {
			delay := retryBaseDelay
			for attempt := 0; ; attempt++ {
				resp, err = next(req)
				if !shouldRetry(resp, err) || attempt >= maxRetries {
					return resp, err
				}
				if resp != nil {
					resp.Body.Close()
				}
				if req.Body != nil && req.GetBody != nil {
					if req.Body, err = req.GetBody(); err != nil {
						return nil, err
					}
				}

				select {
				case <-time.After(delay):
				case <-req.Context().Done():
					return nil, req.Context().Err()
				}
				delay *= 2
			}
		}
	}
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError ||
		resp.StatusCode == http.StatusTooManyRequests
}
