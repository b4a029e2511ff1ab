// Package billing contains the invoice lifecycle aggregate and its
// supporting value objects: the document state machine, the content-hash
// based change detection used to keep expensive PDF rendering idempotent,
// the sequential document numbering contract, deferred send jobs, and the
// per-tenant billing settings.
//
// The Invoice aggregate buffers its side-effect events in memory (see
// shared.BaseAggregateRoot); the persistence adapter flushes them into the
// transactional outbox after a successful save.
package billing
