// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/crypto"
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	proto "github.com/gogo/protobuf/proto"
)

// Transaction is an immutable request to run Program on Inputs on behalf
// of Sender. Proof authorizes it.
type Transaction struct {
	Sender  Address
	Program string
	Inputs  []byte
	Proof   []byte
	Fee     uint64
	Nonce   uint64
	// Expiry is a unix timestamp in seconds, 0 means never.
	Expiry int64
}

var _ conv.Convertible = (*Transaction)(nil)
var _ conv.Serializable = (*Transaction)(nil)

// ToProtoMessage converts transaction to proto message.
func (tx *Transaction) ToProtoMessage() (proto.Message, error) {
	return &corepb.Transaction{
		Sender:  tx.Sender.Bytes(),
		Program: tx.Program,
		Inputs:  tx.Inputs,
		Proof:   tx.Proof,
		Fee:     tx.Fee,
		Nonce:   tx.Nonce,
		Expiry:  tx.Expiry,
	}, nil
}

// FromProtoMessage converts proto message to transaction.
func (tx *Transaction) FromProtoMessage(message proto.Message) error {
	msg, ok := message.(*corepb.Transaction)
	if !ok {
		return ErrInvalidProtoMessage
	}
	if msg == nil {
		return ErrEmptyProtoMessage
	}
	sender, err := NewAddress(msg.Sender)
	if err != nil {
		return err
	}
	tx.Sender = sender
	tx.Program = msg.Program
	tx.Inputs = msg.Inputs
	tx.Proof = msg.Proof
	tx.Fee = msg.Fee
	tx.Nonce = msg.Nonce
	tx.Expiry = msg.Expiry
	return nil
}

// Marshal method marshal tx object to binary
func (tx *Transaction) Marshal() ([]byte, error) {
	return conv.MarshalConvertible(tx)
}

// Unmarshal method unmarshal binary data to tx object
func (tx *Transaction) Unmarshal(data []byte) error {
	return conv.UnmarshalConvertible(data, new(corepb.Transaction), tx)
}

// Hash returns the double sha256 of the canonical encoding.
func (tx *Transaction) Hash() crypto.HashType {
	data, _ := tx.Marshal()
	return crypto.DoubleHashH(data)
}

// SigningHash is the hash the proof commits to: the encoding without Proof.
func (tx *Transaction) SigningHash() crypto.HashType {
	unsigned := *tx
	unsigned.Proof = nil
	data, _ := unsigned.Marshal()
	return crypto.DoubleHashH(data)
}

// Size returns the encoded size in bytes.
func (tx *Transaction) Size() int {
	msg, _ := tx.ToProtoMessage()
	return proto.Size(msg)
}

// Expired reports whether the transaction is past its expiry at now.
func (tx *Transaction) Expired(now int64) bool {
	return tx.Expiry != 0 && now >= tx.Expiry
}

// TxWrap is a mempool entry.
type TxWrap struct {
	Tx             *Transaction
	Hash           crypto.HashType
	AddedTimestamp int64
	Fee            uint64
	Size           int
	Validated      bool
}

// NewTxWrap wraps tx admitted at addedTime.
func NewTxWrap(tx *Transaction, addedTime int64) *TxWrap {
	return &TxWrap{
		Tx:             tx,
		Hash:           tx.Hash(),
		AddedTimestamp: addedTime,
		Fee:            tx.Fee,
		Size:           tx.Size(),
	}
}
