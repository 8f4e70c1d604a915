// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpcpb

import (
	proto "github.com/golang/protobuf/proto"
)

// BaseResponse is the reply of calls that carry no data.
type BaseResponse struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *BaseResponse) Reset()         { *m = BaseResponse{} }
func (m *BaseResponse) String() string { return proto.CompactTextString(m) }
func (*BaseResponse) ProtoMessage()    {}

// DebugLevelRequest sets the log level of the node.
type DebugLevelRequest struct {
	Level string `protobuf:"bytes,1,opt,name=level,proto3" json:"level,omitempty"`
}

func (m *DebugLevelRequest) Reset()         { *m = DebugLevelRequest{} }
func (m *DebugLevelRequest) String() string { return proto.CompactTextString(m) }
func (*DebugLevelRequest) ProtoMessage()    {}

// NodeInfoRequest asks for the state of the node services.
type NodeInfoRequest struct {
}

func (m *NodeInfoRequest) Reset()         { *m = NodeInfoRequest{} }
func (m *NodeInfoRequest) String() string { return proto.CompactTextString(m) }
func (*NodeInfoRequest) ProtoMessage()    {}

// PeerInfo describes one connected peer.
type PeerInfo struct {
	Id      string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Addr    string `protobuf:"bytes,2,opt,name=addr,proto3" json:"addr,omitempty"`
	Height  uint64 `protobuf:"varint,3,opt,name=height,proto3" json:"height,omitempty"`
	State   string `protobuf:"bytes,4,opt,name=state,proto3" json:"state,omitempty"`
	Score   int64  `protobuf:"varint,5,opt,name=score,proto3" json:"score,omitempty"`
	Inbound bool   `protobuf:"varint,6,opt,name=inbound,proto3" json:"inbound,omitempty"`
}

func (m *PeerInfo) Reset()         { *m = PeerInfo{} }
func (m *PeerInfo) String() string { return proto.CompactTextString(m) }
func (*PeerInfo) ProtoMessage()    {}

// NodeInfoResponse is a snapshot of the node services.
type NodeInfoResponse struct {
	Code           int32       `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message        string      `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	Id             string      `protobuf:"bytes,3,opt,name=id,proto3" json:"id,omitempty"`
	Height         uint64      `protobuf:"varint,4,opt,name=height,proto3" json:"height,omitempty"`
	SyncStatus     string      `protobuf:"bytes,5,opt,name=sync_status,json=syncStatus,proto3" json:"sync_status,omitempty"`
	ConsensusState string      `protobuf:"bytes,6,opt,name=consensus_state,json=consensusState,proto3" json:"consensus_state,omitempty"`
	Round          uint32      `protobuf:"varint,7,opt,name=round,proto3" json:"round,omitempty"`
	Halted         bool        `protobuf:"varint,8,opt,name=halted,proto3" json:"halted,omitempty"`
	Peers          []*PeerInfo `protobuf:"bytes,9,rep,name=peers" json:"peers,omitempty"`
}

func (m *NodeInfoResponse) Reset()         { *m = NodeInfoResponse{} }
func (m *NodeInfoResponse) String() string { return proto.CompactTextString(m) }
func (*NodeInfoResponse) ProtoMessage()    {}

func init() {
	proto.RegisterType((*BaseResponse)(nil), "rpcpb.BaseResponse")
	proto.RegisterType((*DebugLevelRequest)(nil), "rpcpb.DebugLevelRequest")
	proto.RegisterType((*NodeInfoRequest)(nil), "rpcpb.NodeInfoRequest")
	proto.RegisterType((*PeerInfo)(nil), "rpcpb.PeerInfo")
	proto.RegisterType((*NodeInfoResponse)(nil), "rpcpb.NodeInfoResponse")
}
