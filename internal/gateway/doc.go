// Package gateway implements the channel-authorization and event-broadcast
// core: the client resolver, the channel authorizer and the broadcast
// dispatcher.
//
// The resolver caches one broker client keyed by a fingerprint of the
// current credentials and rebuilds it transparently when the config
// rotates. The authorizer proves possession of the shared broker secret
// for a socket+channel pair. The dispatcher fans typed domain events out
// onto deterministically named channels, best-effort: a failed publish is
// logged and swallowed, never surfaced to the business operation that
// triggered it.
package gateway
