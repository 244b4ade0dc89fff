// Package shard protects sealed envelopes with Reed-Solomon erasure coding.
//
// A frame is split into data shards plus parity shards; any parity-count of
// shards may be lost (set to nil) and Join still returns the original frame.
// Encoding uses the klauspost/reedsolomon library.
package shard
