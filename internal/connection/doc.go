// Package connection implements the connection registry for the realtime
// pricing feed.
//
// The registry owns at most one multiplexed websocket per backend origin
// and one logical channel per sport namespace. Channels are created lazily
// and cached, so repeated consumers share the same physical connection.
// Reconnection is handled by the connection itself (bounded attempts,
// fixed backoff); a reconnect clears server-side subscription state, so
// every channel consumer must re-issue its subscriptions from the connect
// hook.
package connection
