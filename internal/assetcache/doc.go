// Package assetcache keeps a local, TTL-bounded copy of the webinar
// asset so repeated CLI invocations and daemon polls do not hammer the
// backend. It also derives the read views the commands render: concept
// candidates, grouped email sequences, promotional media, and the
// video state. Concept references carry the asset's concept generation
// so a selection made against a stale list is rejected instead of
// silently picking the wrong concept.
package assetcache
