// Package feistel implements a generic keyed Feistel-network block transform.
//
// The same routine encrypts and decrypts: the input is framed into blocks of
// twice the key length (the last one zero-padded), and every block runs the
// round sequence forward for Encrypt or backward for Decrypt.
//
// Design notes:
//   - The round function is a trivial byte mix; this is not a secure cipher
//   - By default every round reuses the caller's key (RepeatKey); a stronger
//     KeySchedule such as HKDFSchedule can be plugged in
//   - Padding is plain zero-fill with no length marker; see package envelope
//     for self-describing frames
//   - Blocks are independent, so Cipher.TransformContext may process them in parallel
package feistel
