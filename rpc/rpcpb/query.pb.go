// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpcpb

import (
	proto "github.com/golang/protobuf/proto"
)

// HeadRequest asks for the committed head.
type HeadRequest struct {
}

func (m *HeadRequest) Reset()         { *m = HeadRequest{} }
func (m *HeadRequest) String() string { return proto.CompactTextString(m) }
func (*HeadRequest) ProtoMessage()    {}

// HeadResponse carries the committed head.
type HeadResponse struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	Height  uint64 `protobuf:"varint,3,opt,name=height,proto3" json:"height,omitempty"`
	Hash    string `protobuf:"bytes,4,opt,name=hash,proto3" json:"hash,omitempty"`
}

func (m *HeadResponse) Reset()         { *m = HeadResponse{} }
func (m *HeadResponse) String() string { return proto.CompactTextString(m) }
func (*HeadResponse) ProtoMessage()    {}

// GetBlockRequest selects a block by hex hash, or by height when Hash is
// empty.
type GetBlockRequest struct {
	Height uint64 `protobuf:"varint,1,opt,name=height,proto3" json:"height,omitempty"`
	Hash   string `protobuf:"bytes,2,opt,name=hash,proto3" json:"hash,omitempty"`
}

func (m *GetBlockRequest) Reset()         { *m = GetBlockRequest{} }
func (m *GetBlockRequest) String() string { return proto.CompactTextString(m) }
func (*GetBlockRequest) ProtoMessage()    {}

// GetBlockResponse carries one block in its wire encoding.
type GetBlockResponse struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	Block   []byte `protobuf:"bytes,3,opt,name=block,proto3" json:"block,omitempty"`
}

func (m *GetBlockResponse) Reset()         { *m = GetBlockResponse{} }
func (m *GetBlockResponse) String() string { return proto.CompactTextString(m) }
func (*GetBlockResponse) ProtoMessage()    {}

// GetBlocksRequest asks for the committed blocks in [Start, End].
type GetBlocksRequest struct {
	Start uint64 `protobuf:"varint,1,opt,name=start,proto3" json:"start,omitempty"`
	End   uint64 `protobuf:"varint,2,opt,name=end,proto3" json:"end,omitempty"`
}

func (m *GetBlocksRequest) Reset()         { *m = GetBlocksRequest{} }
func (m *GetBlocksRequest) String() string { return proto.CompactTextString(m) }
func (*GetBlocksRequest) ProtoMessage()    {}

// GetBlocksResponse carries blocks in height order.
type GetBlocksResponse struct {
	Code    int32    `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string   `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	Blocks  [][]byte `protobuf:"bytes,3,rep,name=blocks,proto3" json:"blocks,omitempty"`
}

func (m *GetBlocksResponse) Reset()         { *m = GetBlocksResponse{} }
func (m *GetBlocksResponse) String() string { return proto.CompactTextString(m) }
func (*GetBlocksResponse) ProtoMessage()    {}

// GetTransactionStatusRequest selects a transaction by hex hash.
type GetTransactionStatusRequest struct {
	Hash string `protobuf:"bytes,1,opt,name=hash,proto3" json:"hash,omitempty"`
}

func (m *GetTransactionStatusRequest) Reset()         { *m = GetTransactionStatusRequest{} }
func (m *GetTransactionStatusRequest) String() string { return proto.CompactTextString(m) }
func (*GetTransactionStatusRequest) ProtoMessage()    {}

// GetTransactionStatusResponse locates a transaction. State is one of
// Unknown, Pending and Committed.
type GetTransactionStatusResponse struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	State   string `protobuf:"bytes,3,opt,name=state,proto3" json:"state,omitempty"`
	Height  uint64 `protobuf:"varint,4,opt,name=height,proto3" json:"height,omitempty"`
	Index   uint32 `protobuf:"varint,5,opt,name=index,proto3" json:"index,omitempty"`
}

func (m *GetTransactionStatusResponse) Reset()         { *m = GetTransactionStatusResponse{} }
func (m *GetTransactionStatusResponse) String() string { return proto.CompactTextString(m) }
func (*GetTransactionStatusResponse) ProtoMessage()    {}

// MempoolSizeRequest asks for the number of pending transactions.
type MempoolSizeRequest struct {
}

func (m *MempoolSizeRequest) Reset()         { *m = MempoolSizeRequest{} }
func (m *MempoolSizeRequest) String() string { return proto.CompactTextString(m) }
func (*MempoolSizeRequest) ProtoMessage()    {}

// MempoolSizeResponse carries the number of pending transactions.
type MempoolSizeResponse struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	Size    uint32 `protobuf:"varint,3,opt,name=size,proto3" json:"size,omitempty"`
}

func (m *MempoolSizeResponse) Reset()         { *m = MempoolSizeResponse{} }
func (m *MempoolSizeResponse) String() string { return proto.CompactTextString(m) }
func (*MempoolSizeResponse) ProtoMessage()    {}

// SubmitTransactionRequest carries a transaction in its wire encoding.
type SubmitTransactionRequest struct {
	Tx []byte `protobuf:"bytes,1,opt,name=tx,proto3" json:"tx,omitempty"`
}

func (m *SubmitTransactionRequest) Reset()         { *m = SubmitTransactionRequest{} }
func (m *SubmitTransactionRequest) String() string { return proto.CompactTextString(m) }
func (*SubmitTransactionRequest) ProtoMessage()    {}

// SubmitTransactionResponse reports the admission result. Reason is set
// when the transaction was rejected.
type SubmitTransactionResponse struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	Hash    string `protobuf:"bytes,3,opt,name=hash,proto3" json:"hash,omitempty"`
	Reason  string `protobuf:"bytes,4,opt,name=reason,proto3" json:"reason,omitempty"`
}

func (m *SubmitTransactionResponse) Reset()         { *m = SubmitTransactionResponse{} }
func (m *SubmitTransactionResponse) String() string { return proto.CompactTextString(m) }
func (*SubmitTransactionResponse) ProtoMessage()    {}

func init() {
	proto.RegisterType((*HeadRequest)(nil), "rpcpb.HeadRequest")
	proto.RegisterType((*HeadResponse)(nil), "rpcpb.HeadResponse")
	proto.RegisterType((*GetBlockRequest)(nil), "rpcpb.GetBlockRequest")
	proto.RegisterType((*GetBlockResponse)(nil), "rpcpb.GetBlockResponse")
	proto.RegisterType((*GetBlocksRequest)(nil), "rpcpb.GetBlocksRequest")
	proto.RegisterType((*GetBlocksResponse)(nil), "rpcpb.GetBlocksResponse")
	proto.RegisterType((*GetTransactionStatusRequest)(nil), "rpcpb.GetTransactionStatusRequest")
	proto.RegisterType((*GetTransactionStatusResponse)(nil), "rpcpb.GetTransactionStatusResponse")
	proto.RegisterType((*MempoolSizeRequest)(nil), "rpcpb.MempoolSizeRequest")
	proto.RegisterType((*MempoolSizeResponse)(nil), "rpcpb.MempoolSizeResponse")
	proto.RegisterType((*SubmitTransactionRequest)(nil), "rpcpb.SubmitTransactionRequest")
	proto.RegisterType((*SubmitTransactionResponse)(nil), "rpcpb.SubmitTransactionResponse")
}
