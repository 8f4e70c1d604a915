// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package corepb holds the wire messages of ledger objects. Field numbers
// are part of the persisted and network format and must never be reused.
package corepb

import (
	proto "github.com/gogo/protobuf/proto"
)

// Transaction is the wire form of a transaction.
type Transaction struct {
	Sender  []byte `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender,omitempty"`
	Program string `protobuf:"bytes,2,opt,name=program,proto3" json:"program,omitempty"`
	Inputs  []byte `protobuf:"bytes,3,opt,name=inputs,proto3" json:"inputs,omitempty"`
	Proof   []byte `protobuf:"bytes,4,opt,name=proof,proto3" json:"proof,omitempty"`
	Fee     uint64 `protobuf:"varint,5,opt,name=fee,proto3" json:"fee,omitempty"`
	Nonce   uint64 `protobuf:"varint,6,opt,name=nonce,proto3" json:"nonce,omitempty"`
	Expiry  int64  `protobuf:"varint,7,opt,name=expiry,proto3" json:"expiry,omitempty"`
}

func (m *Transaction) Reset()         { *m = Transaction{} }
func (m *Transaction) String() string { return proto.CompactTextString(m) }
func (*Transaction) ProtoMessage()    {}

// BlockHeader is the hashed part of a block.
type BlockHeader struct {
	Height              uint64 `protobuf:"varint,1,opt,name=height,proto3" json:"height,omitempty"`
	PrevBlockHash       []byte `protobuf:"bytes,2,opt,name=prev_block_hash,json=prevBlockHash,proto3" json:"prev_block_hash,omitempty"`
	TimeStamp           int64  `protobuf:"varint,3,opt,name=time_stamp,json=timeStamp,proto3" json:"time_stamp,omitempty"`
	Proposer            []byte `protobuf:"bytes,4,opt,name=proposer,proto3" json:"proposer,omitempty"`
	Round               uint32 `protobuf:"varint,5,opt,name=round,proto3" json:"round,omitempty"`
	TxsRoot             []byte `protobuf:"bytes,6,opt,name=txs_root,json=txsRoot,proto3" json:"txs_root,omitempty"`
	StateRoot           []byte `protobuf:"bytes,7,opt,name=state_root,json=stateRoot,proto3" json:"state_root,omitempty"`
	ValidatorSetVersion uint64 `protobuf:"varint,8,opt,name=validator_set_version,json=validatorSetVersion,proto3" json:"validator_set_version,omitempty"`
}

func (m *BlockHeader) Reset()         { *m = BlockHeader{} }
func (m *BlockHeader) String() string { return proto.CompactTextString(m) }
func (*BlockHeader) ProtoMessage()    {}

// Block is a header, its transactions, the proposer signature and the
// commit certificate.
type Block struct {
	Header      *BlockHeader   `protobuf:"bytes,1,opt,name=header" json:"header,omitempty"`
	Txs         []*Transaction `protobuf:"bytes,2,rep,name=txs" json:"txs,omitempty"`
	Signature   []byte         `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
	Certificate *Certificate   `protobuf:"bytes,4,opt,name=certificate" json:"certificate,omitempty"`
}

func (m *Block) Reset()         { *m = Block{} }
func (m *Block) String() string { return proto.CompactTextString(m) }
func (*Block) ProtoMessage()    {}

// Vote endorses one block hash at one height and round.
type Vote struct {
	Height    uint64 `protobuf:"varint,1,opt,name=height,proto3" json:"height,omitempty"`
	Round     uint32 `protobuf:"varint,2,opt,name=round,proto3" json:"round,omitempty"`
	BlockHash []byte `protobuf:"bytes,3,opt,name=block_hash,json=blockHash,proto3" json:"block_hash,omitempty"`
	Voter     []byte `protobuf:"bytes,4,opt,name=voter,proto3" json:"voter,omitempty"`
	Signature []byte `protobuf:"bytes,5,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *Vote) Reset()         { *m = Vote{} }
func (m *Vote) String() string { return proto.CompactTextString(m) }
func (*Vote) ProtoMessage()    {}

// Certificate is a quorum of votes for one block.
type Certificate struct {
	Height    uint64  `protobuf:"varint,1,opt,name=height,proto3" json:"height,omitempty"`
	Round     uint32  `protobuf:"varint,2,opt,name=round,proto3" json:"round,omitempty"`
	BlockHash []byte  `protobuf:"bytes,3,opt,name=block_hash,json=blockHash,proto3" json:"block_hash,omitempty"`
	Votes     []*Vote `protobuf:"bytes,4,rep,name=votes" json:"votes,omitempty"`
}

func (m *Certificate) Reset()         { *m = Certificate{} }
func (m *Certificate) String() string { return proto.CompactTextString(m) }
func (*Certificate) ProtoMessage()    {}

// Account is the persisted state of one address.
type Account struct {
	Balance uint64 `protobuf:"varint,1,opt,name=balance,proto3" json:"balance,omitempty"`
	Nonce   uint64 `protobuf:"varint,2,opt,name=nonce,proto3" json:"nonce,omitempty"`
}

func (m *Account) Reset()         { *m = Account{} }
func (m *Account) String() string { return proto.CompactTextString(m) }
func (*Account) ProtoMessage()    {}

// Validator is one member of a validator set.
type Validator struct {
	Address []byte `protobuf:"bytes,1,opt,name=address,proto3" json:"address,omitempty"`
	Weight  uint64 `protobuf:"varint,2,opt,name=weight,proto3" json:"weight,omitempty"`
}

func (m *Validator) Reset()         { *m = Validator{} }
func (m *Validator) String() string { return proto.CompactTextString(m) }
func (*Validator) ProtoMessage()    {}

// ValidatorSet is a versioned validator snapshot.
type ValidatorSet struct {
	Version    uint64       `protobuf:"varint,1,opt,name=version,proto3" json:"version,omitempty"`
	Validators []*Validator `protobuf:"bytes,2,rep,name=validators" json:"validators,omitempty"`
}

func (m *ValidatorSet) Reset()         { *m = ValidatorSet{} }
func (m *ValidatorSet) String() string { return proto.CompactTextString(m) }
func (*ValidatorSet) ProtoMessage()    {}

// Transfer moves Amount to To.
type Transfer struct {
	To     []byte `protobuf:"bytes,1,opt,name=to,proto3" json:"to,omitempty"`
	Amount uint64 `protobuf:"varint,2,opt,name=amount,proto3" json:"amount,omitempty"`
}

func (m *Transfer) Reset()         { *m = Transfer{} }
func (m *Transfer) String() string { return proto.CompactTextString(m) }
func (*Transfer) ProtoMessage()    {}

// TransferList is the input and output of the transfer program.
type TransferList struct {
	Transfers []*Transfer `protobuf:"bytes,1,rep,name=transfers" json:"transfers,omitempty"`
}

func (m *TransferList) Reset()         { *m = TransferList{} }
func (m *TransferList) String() string { return proto.CompactTextString(m) }
func (*TransferList) ProtoMessage()    {}

// TxIndex locates a committed transaction.
type TxIndex struct {
	Height uint64 `protobuf:"varint,1,opt,name=height,proto3" json:"height,omitempty"`
	Index  uint32 `protobuf:"varint,2,opt,name=index,proto3" json:"index,omitempty"`
}

func (m *TxIndex) Reset()         { *m = TxIndex{} }
func (m *TxIndex) String() string { return proto.CompactTextString(m) }
func (*TxIndex) ProtoMessage()    {}
