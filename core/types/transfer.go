// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	proto "github.com/gogo/protobuf/proto"
)

// Transfer moves Amount from the transaction sender to To.
type Transfer struct {
	To     Address
	Amount uint64
}

// EncodeTransfers returns the canonical encoding of a transfer list.
func EncodeTransfers(transfers []Transfer) ([]byte, error) {
	msg := &corepb.TransferList{}
	for _, t := range transfers {
		msg.Transfers = append(msg.Transfers, &corepb.Transfer{To: t.To.Bytes(), Amount: t.Amount})
	}
	return proto.Marshal(msg)
}

// DecodeTransfers parses a transfer list.
func DecodeTransfers(data []byte) ([]Transfer, error) {
	msg := new(corepb.TransferList)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	transfers := make([]Transfer, 0, len(msg.Transfers))
	for _, t := range msg.Transfers {
		to, err := NewAddress(t.To)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, Transfer{To: to, Amount: t.Amount})
	}
	return transfers, nil
}

// TotalAmount sums the amounts, reporting false on overflow.
func TotalAmount(transfers []Transfer) (uint64, bool) {
	var total uint64
	for _, t := range transfers {
		if total+t.Amount < total {
			return 0, false
		}
		total += t.Amount
	}
	return total, true
}
