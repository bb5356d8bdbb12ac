// Package schedule implements progressive subscription growth.
//
// Subscribing a large candidate list to individual delta feeds at once is
// a thundering-herd risk. The scheduler exposes an active window that
// starts at one batch and grows by one batch per delay tick until it
// covers the whole list, trading latency-to-full-coverage for bounded
// concurrent subscription volume. A single timer chain runs per
// candidate-list identity; Reset and Stop cancel it without residue.
package schedule
