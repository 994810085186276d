// Package lookup performs rate-limited external queries for entity
// liveness.
//
// The package owns three concerns: the Service interface consumed
// from the platform (resolve by id, username or invite), the closed
// classification of raw platform failures into error kinds, and the
// Pacer that serializes every call through a single next-allowed-call
// cursor with flood-wait suspension. Callers must treat a query as
// synchronously blocking for up to the platform's reported wait time;
// there is no hidden retry loop beyond the single flood-wait retry.
package lookup
