// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2ppb

import (
	proto "github.com/gogo/protobuf/proto"
)

// MessageHeader precedes every message body on the wire.
type MessageHeader struct {
	Magic        uint32 `protobuf:"varint,1,opt,name=magic,proto3" json:"magic,omitempty"`
	Code         uint32 `protobuf:"varint,2,opt,name=code,proto3" json:"code,omitempty"`
	DataLength   uint32 `protobuf:"varint,3,opt,name=data_length,json=dataLength,proto3" json:"data_length,omitempty"`
	DataChecksum uint32 `protobuf:"varint,4,opt,name=data_checksum,json=dataChecksum,proto3" json:"data_checksum,omitempty"`
	Reserved     []byte `protobuf:"bytes,5,opt,name=reserved,proto3" json:"reserved,omitempty"`
}

func (m *MessageHeader) Reset()         { *m = MessageHeader{} }
func (m *MessageHeader) String() string { return proto.CompactTextString(m) }
func (*MessageHeader) ProtoMessage()    {}

// Handshake is the first message on a new connection, in both directions.
type Handshake struct {
	Magic      uint32 `protobuf:"varint,1,opt,name=magic,proto3" json:"magic,omitempty"`
	Genesis    []byte `protobuf:"bytes,2,opt,name=genesis,proto3" json:"genesis,omitempty"`
	PeerId     string `protobuf:"bytes,3,opt,name=peer_id,json=peerId,proto3" json:"peer_id,omitempty"`
	Height     uint64 `protobuf:"varint,4,opt,name=height,proto3" json:"height,omitempty"`
	ListenAddr string `protobuf:"bytes,5,opt,name=listen_addr,json=listenAddr,proto3" json:"listen_addr,omitempty"`
}

func (m *Handshake) Reset()         { *m = Handshake{} }
func (m *Handshake) String() string { return proto.CompactTextString(m) }
func (*Handshake) ProtoMessage()    {}

// Ping carries a nonce echoed back by Pong.
type Ping struct {
	Nonce uint64 `protobuf:"varint,1,opt,name=nonce,proto3" json:"nonce,omitempty"`
}

func (m *Ping) Reset()         { *m = Ping{} }
func (m *Ping) String() string { return proto.CompactTextString(m) }
func (*Ping) ProtoMessage()    {}
