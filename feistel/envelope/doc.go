// Package envelope wraps Feistel output in self-describing frames.
//
// The raw transform zero-pads the last block and records nothing about it.
// A sealed frame carries the round count, block size and unpadded payload
// length, so Open can return exactly the bytes given to Seal. Payloads may
// be LZ4-compressed before the transform.
package envelope
