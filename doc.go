// Package pantry is the client-side data loading core for a neighborhood
// food-sharing app: a prefetch queue with device-aware admission control, a
// Markov navigation predictor that feeds it priority hints, and cursor/offset
// pagination state managers for scrolling feeds.
//
// The package owns no I/O. Fetching is delegated to a caller-supplied
// FetchFunc, page loads to a PageLoader, and device snapshots to a
// DeviceStateFunc. Its job is deciding whether and when to admit speculative
// work, and keeping paginated result windows consistent under bidirectional
// scroll and realtime mutation.
package pantry
