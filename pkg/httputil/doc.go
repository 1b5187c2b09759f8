// Package httputil provides the HTTP plumbing shared by the GitHub client:
// request pacing against an hourly budget and pagination-boundary discovery
// from Link response headers.
//
// # Pacing
//
// [Pacer] enforces a strict minimum spacing between successive requests equal
// to the reciprocal of the hourly budget (3600s / limit). This is not a
// sliding-window counter: every call waits out the full interval since the
// previous one, which keeps a long-running collection job under the budget
// without ever bursting.
//
// # Pagination
//
// GitHub paginates list endpoints via a Link response header carrying
// rel="first|prev|next|last" relations. [LastPage] extracts the page number
// from the rel="last" URL, which doubles as a cheap item counter when a list
// is requested with per_page=1.
package httputil
