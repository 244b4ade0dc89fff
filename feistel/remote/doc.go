// Package remote serves the Feistel transform over QUIC.
//
// Each request travels on its own bidirectional stream: the client writes one
// request and closes its side, the server answers with one response and closes.
// The key is sent in the clear inside the QUIC/TLS tunnel; the service is
// meant for demonstrations and tests, not for protecting secrets.
package remote
