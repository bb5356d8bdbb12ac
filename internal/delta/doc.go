// Package delta implements the live price-delta multiplexer.
//
// One Mux serves one sport namespace. It tracks the set of entity ids of
// interest, issues subscribe/unsubscribe control messages as that set
// changes, re-subscribes the current set on every reconnect, and
// demultiplexes inbound delta events into a per-entity result map.
//
// Wire quirk, preserved for server compatibility: football and NBA
// subscriptions key on playerId(s), F1 on driverId(s).
package delta
