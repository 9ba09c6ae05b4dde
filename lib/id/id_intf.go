package id

// NanoIDGen returns a new URL-safe random ID on each call. It is safe
// for concurrent use.
type NanoIDGen func() string
