// Package riot is the single gateway for outbound calls to the Riot Games API
// and the Data Dragon CDN.
//
// All requests flow through Client.request, which provides:
//   - bounded concurrency (global admission semaphore)
//   - a short-TTL response cache for GET requests
//   - retry with exponential backoff and jitter
//   - rate-limit compliance driven by upstream headers
//
// Upstream 404s are not errors here: endpoint wrappers return (zero, false)
// so callers can treat absence as a legitimate answer.
package riot
