// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import "errors"

// error defined
var (
	// network errors, retried with backoff by the router
	ErrPeerGone      = errors.New("peer is not connected")
	ErrConnectFailed = errors.New("failed to connect peer")
	ErrBanned        = errors.New("peer is banned")

	//conn.go
	ErrMagic               = errors.New("magic is error")
	ErrExceedMaxDataLength = errors.New("exceed max data length")
	ErrBodyCheckSum        = errors.New("body checksum is error")
	ErrMessageDataContent  = errors.New("Invalid message data content")
	ErrQueueFull           = errors.New("outbound queue is full")
	ErrHandshake           = errors.New("handshake failed")
	ErrGenesisMismatch     = errors.New("genesis hash mismatch")
	ErrSelfConnection      = errors.New("connection to self")
	ErrTooManyPeers        = errors.New("too many peers")
	ErrDuplicateConnection = errors.New("peer already connected")
	ErrIllegalTransition   = errors.New("illegal peer state transition")

	//message.go
	ErrFromProtoMessageMessage = errors.New("Invalid proto message")
	ErrUnknownAddress          = errors.New("unknown transport address")
)
