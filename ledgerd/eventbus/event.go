// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eventbus

// BusEvent is a peer behaviour reported on TopicConnEvent.
type BusEvent int64

const (
	// ConnTimeOutEvent indicates a dial or handshake timed out.
	ConnTimeOutEvent BusEvent = iota

	// BadBlockEvent indicates the peer served a block that failed validation.
	BadBlockEvent

	// BadTxEvent indicates the peer relayed a malformed or unprovable tx.
	BadTxEvent

	// ProtocolViolationEvent indicates bad framing, magic or checksum.
	ProtocolViolationEvent

	// RateLimitEvent indicates a message dropped by the rate limiter.
	RateLimitEvent

	// EquivocationEvent indicates a second proposal for one round.
	EquivocationEvent

	// HeartBeatEvent indicates a pong or other sign of life.
	HeartBeatEvent

	// NoHeartBeatEvent indicates the peer stayed silent too long.
	NoHeartBeatEvent

	// SyncMsgEvent indicates a useful sync response.
	SyncMsgEvent

	// PeerConnEvent indicates the peer finished the handshake.
	PeerConnEvent

	// PeerDisconnEvent indicates the connection closed.
	PeerDisconnEvent
)

var busEventNames = [...]string{
	"ConnTimeOut", "BadBlock", "BadTx", "ProtocolViolation", "RateLimit",
	"Equivocation", "HeartBeat", "NoHeartBeat", "SyncMsg", "PeerConn", "PeerDisconn",
}

func (e BusEvent) String() string {
	if e >= 0 && int(e) < len(busEventNames) {
		return busEventNames[e]
	}
	return "Unknown"
}
