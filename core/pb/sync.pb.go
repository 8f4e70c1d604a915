// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package corepb

import (
	proto "github.com/gogo/protobuf/proto"
)

// HeightAnnouncement advertises the sender's committed head.
type HeightAnnouncement struct {
	Height uint64 `protobuf:"varint,1,opt,name=height,proto3" json:"height,omitempty"`
	Hash   []byte `protobuf:"bytes,2,opt,name=hash,proto3" json:"hash,omitempty"`
}

func (m *HeightAnnouncement) Reset()         { *m = HeightAnnouncement{} }
func (m *HeightAnnouncement) String() string { return proto.CompactTextString(m) }
func (*HeightAnnouncement) ProtoMessage()    {}

// BlockRequest asks for committed blocks in [Start, End].
type BlockRequest struct {
	Start uint64 `protobuf:"varint,1,opt,name=start,proto3" json:"start,omitempty"`
	End   uint64 `protobuf:"varint,2,opt,name=end,proto3" json:"end,omitempty"`
}

func (m *BlockRequest) Reset()         { *m = BlockRequest{} }
func (m *BlockRequest) String() string { return proto.CompactTextString(m) }
func (*BlockRequest) ProtoMessage()    {}

// BlockResponse carries consecutive blocks starting at Start.
type BlockResponse struct {
	Start  uint64   `protobuf:"varint,1,opt,name=start,proto3" json:"start,omitempty"`
	Blocks []*Block `protobuf:"bytes,2,rep,name=blocks" json:"blocks,omitempty"`
}

func (m *BlockResponse) Reset()         { *m = BlockResponse{} }
func (m *BlockResponse) String() string { return proto.CompactTextString(m) }
func (*BlockResponse) ProtoMessage()    {}
