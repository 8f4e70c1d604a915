// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	proto "github.com/gogo/protobuf/proto"
)

// Account is the ledger state of one address.
type Account struct {
	Balance uint64
	Nonce   uint64
}

var _ conv.Convertible = (*Account)(nil)
var _ conv.Serializable = (*Account)(nil)

// ToProtoMessage converts account to proto message.
func (a *Account) ToProtoMessage() (proto.Message, error) {
	return &corepb.Account{Balance: a.Balance, Nonce: a.Nonce}, nil
}

// FromProtoMessage converts proto message to account.
func (a *Account) FromProtoMessage(message proto.Message) error {
	msg, ok := message.(*corepb.Account)
	if !ok {
		return ErrInvalidProtoMessage
	}
	if msg == nil {
		return ErrEmptyProtoMessage
	}
	a.Balance = msg.Balance
	a.Nonce = msg.Nonce
	return nil
}

// Marshal method marshal account object to binary
func (a *Account) Marshal() ([]byte, error) {
	return conv.MarshalConvertible(a)
}

// Unmarshal method unmarshal binary data to account object
func (a *Account) Unmarshal(data []byte) error {
	return conv.UnmarshalConvertible(data, new(corepb.Account), a)
}
