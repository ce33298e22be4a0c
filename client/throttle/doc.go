// Package throttle provides an [http.RoundTripper] that rate-limits calls
// to the Nylas API using a token bucket from [golang.org/x/time/rate].
//
// The client package installs it when built with client.WithThrottle:
//
//	c, err := client.Build(
//		client.WithAPIKey(key),
//		client.WithThrottle(10, 5),
//	)
//
// When the bucket is empty, requests block until a token is available or
// the request context ends. Nylas answers an exhausted quota with 429, so
// throttling on the client side keeps a busy Pool below that limit.
package throttle
