// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	proto "github.com/gogo/protobuf/proto"
	peer "github.com/libp2p/go-libp2p-peer"
)

// Message Define message interface
type Message interface {
	Code() uint32
	Body() []byte
	From() peer.ID
}

// Net is what services see of the router.
type Net interface {
	ID() peer.ID
	Send(pid peer.ID, code uint32, msg conv.Serializable) error
	Broadcast(code uint32, msg conv.Serializable, exclude map[peer.ID]struct{}) error
	Subscribe(*Notifiee)
	UnSubscribe(*Notifiee)
	Peers() []PeerRecord
}

type protoBody struct {
	proto.Message
}

// ProtoBody adapts a proto message to conv.Serializable.
func ProtoBody(msg proto.Message) conv.Serializable {
	return &protoBody{msg}
}

func (b *protoBody) Marshal() ([]byte, error) {
	return proto.Marshal(b.Message)
}

func (b *protoBody) Unmarshal(data []byte) error {
	return proto.Unmarshal(data, b.Message)
}

// Exclude builds an exclusion set for Broadcast.
func Exclude(pids ...peer.ID) map[peer.ID]struct{} {
	set := make(map[peer.ID]struct{}, len(pids))
	for _, pid := range pids {
		set[pid] = struct{}{}
	}
	return set
}
