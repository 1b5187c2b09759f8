// Package github provides the rate-limited GitHub REST gateway used by the
// collection pipeline.
//
// # Overview
//
// [Client] wraps authenticated JSON-over-HTTPS GETs with strict request
// pacing (see pkg/httputil), maps transport failures onto the shared error
// taxonomy (see pkg/errs), and keeps an optional single-entry deep-copy
// cache of the most recent parsed response.
//
// On top of that transport, the gateway exposes the domain operations the
// collector needs: repository lookup, tree-at-ref lookup, repository search
// with full-pagination fan-out, release listing with stable filtering and
// time-spaced sampling, and cheap item counting based on pagination
// metadata (a per_page=1 probe whose rel="last" page number equals the
// total item count).
//
// # Failure semantics
//
// Transport and decode failures propagate uncaught; there is no per-call
// retry. The collection driver decides whether a failed call abandons just
// the current repository or the whole query.
package github
