// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/log"
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	"github.com/BOXFoundation/ledgerd/util"
	proto "github.com/gogo/protobuf/proto"
)

var logger = log.NewLogger("core:types") // logger

// BlockHeader defines information about a block. Only the header is
// covered by the block hash.
type BlockHeader struct {
	Height              uint64
	PrevBlockHash       crypto.HashType
	TimeStamp           int64
	Proposer            Address
	Round               uint32
	TxsRoot             crypto.HashType
	StateRoot           crypto.HashType
	ValidatorSetVersion uint64
}

var _ conv.Convertible = (*BlockHeader)(nil)

// ToProtoMessage converts block header to proto message.
func (header *BlockHeader) ToProtoMessage() (proto.Message, error) {
	return &corepb.BlockHeader{
		Height:              header.Height,
		PrevBlockHash:       header.PrevBlockHash.Bytes(),
		TimeStamp:           header.TimeStamp,
		Proposer:            header.Proposer.Bytes(),
		Round:               header.Round,
		TxsRoot:             header.TxsRoot.Bytes(),
		StateRoot:           header.StateRoot.Bytes(),
		ValidatorSetVersion: header.ValidatorSetVersion,
	}, nil
}

// FromProtoMessage converts proto message to block header.
func (header *BlockHeader) FromProtoMessage(message proto.Message) error {
	msg, ok := message.(*corepb.BlockHeader)
	if !ok {
		return ErrInvalidProtoMessage
	}
	if msg == nil {
		return ErrEmptyProtoMessage
	}
	var err error
	if header.PrevBlockHash, err = hashFromBytes(msg.PrevBlockHash); err != nil {
		return err
	}
	if header.Proposer, err = addressFromBytes(msg.Proposer); err != nil {
		return err
	}
	if header.TxsRoot, err = hashFromBytes(msg.TxsRoot); err != nil {
		return err
	}
	if header.StateRoot, err = hashFromBytes(msg.StateRoot); err != nil {
		return err
	}
	header.Height = msg.Height
	header.TimeStamp = msg.TimeStamp
	header.Round = msg.Round
	header.ValidatorSetVersion = msg.ValidatorSetVersion
	return nil
}

// Hash returns the block hash.
func (header *BlockHeader) Hash() crypto.HashType {
	data, _ := conv.MarshalConvertible(header)
	return crypto.DoubleHashH(data)
}

// Block is a header with its ordered transactions. Signature and
// Certificate are attached after the header is final.
type Block struct {
	Header      *BlockHeader
	Txs         []*Transaction
	Signature   []byte
	Certificate *Certificate
}

var _ conv.Convertible = (*Block)(nil)
var _ conv.Serializable = (*Block)(nil)

// NewBlock creates an empty block on top of parent.
func NewBlock(parent *Block) *Block {
	return &Block{
		Header: &BlockHeader{
			Height:        parent.Header.Height + 1,
			PrevBlockHash: parent.Hash(),
		},
	}
}

// Hash returns the header hash.
func (block *Block) Hash() crypto.HashType {
	return block.Header.Hash()
}

// Height returns the header height.
func (block *Block) Height() uint64 {
	return block.Header.Height
}

// CalcTxsRoot returns the merkle root of the block transactions.
func (block *Block) CalcTxsRoot() crypto.HashType {
	return CalcTxsRoot(block.Txs)
}

// CalcTxsRoot returns the merkle root of the hashes of txs.
func CalcTxsRoot(txs []*Transaction) crypto.HashType {
	hashes := make([]crypto.HashType, 0, len(txs))
	for _, tx := range txs {
		hashes = append(hashes, tx.Hash())
	}
	return util.MerkleRoot(hashes)
}

// ToProtoMessage converts block to proto message.
func (block *Block) ToProtoMessage() (proto.Message, error) {
	header, _ := block.Header.ToProtoMessage()
	txs := make([]*corepb.Transaction, 0, len(block.Txs))
	for _, v := range block.Txs {
		tx, _ := v.ToProtoMessage()
		txs = append(txs, tx.(*corepb.Transaction))
	}
	msg := &corepb.Block{
		Header:    header.(*corepb.BlockHeader),
		Txs:       txs,
		Signature: block.Signature,
	}
	if block.Certificate != nil {
		cert, _ := block.Certificate.ToProtoMessage()
		msg.Certificate = cert.(*corepb.Certificate)
	}
	return msg, nil
}

// FromProtoMessage converts proto message to block.
func (block *Block) FromProtoMessage(message proto.Message) error {
	msg, ok := message.(*corepb.Block)
	if !ok {
		return ErrInvalidProtoMessage
	}
	if msg == nil || msg.Header == nil {
		return ErrEmptyProtoMessage
	}
	header := new(BlockHeader)
	if err := header.FromProtoMessage(msg.Header); err != nil {
		return err
	}
	txs := make([]*Transaction, 0, len(msg.Txs))
	for _, v := range msg.Txs {
		tx := new(Transaction)
		if err := tx.FromProtoMessage(v); err != nil {
			return err
		}
		txs = append(txs, tx)
	}
	var cert *Certificate
	if msg.Certificate != nil {
		cert = new(Certificate)
		if err := cert.FromProtoMessage(msg.Certificate); err != nil {
			return err
		}
	}
	block.Header = header
	block.Txs = txs
	block.Signature = msg.Signature
	block.Certificate = cert
	return nil
}

// Marshal method marshal block object to binary
func (block *Block) Marshal() ([]byte, error) {
	return conv.MarshalConvertible(block)
}

// Unmarshal method unmarshal binary data to block object
func (block *Block) Unmarshal(data []byte) error {
	return conv.UnmarshalConvertible(data, new(corepb.Block), block)
}

// Size returns the encoded size in bytes.
func (block *Block) Size() int {
	msg, _ := block.ToProtoMessage()
	return proto.Size(msg)
}

// Copy returns a shallow copy sharing transactions, so the caller may
// attach a different signature or certificate.
func (block *Block) Copy() *Block {
	header := *block.Header
	txs := make([]*Transaction, len(block.Txs))
	copy(txs, block.Txs)
	return &Block{
		Header:      &header,
		Txs:         txs,
		Signature:   block.Signature,
		Certificate: block.Certificate,
	}
}

// VerifySignature reports whether Signature was made by the header's
// proposer over the block hash.
func (block *Block) VerifySignature() bool {
	ok := crypto.VerifyCompact(block.Signature, block.Hash(), block.Header.Proposer[:])
	if !ok {
		logger.Debugf("Bad proposer signature on block %v at height %d", block.Hash(), block.Height())
	}
	return ok
}
