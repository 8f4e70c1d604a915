// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/BOXFoundation/ledgerd/util"
	"github.com/facebookgo/ensure"
)

func TestMessageFraming(t *testing.T) {
	body := bytes.Repeat([]byte("ledger"), 100)
	for _, code := range []uint32{Ping, TransactionMsg, VoteMsg, BlockResponse} {
		data, err := newMessage(Mainnet, code, body).Marshal()
		ensure.Nil(t, err)

		msg, err := readMessageData(bytes.NewReader(data))
		ensure.Nil(t, err)
		ensure.DeepEqual(t, msg.code, code)
		ensure.Nil(t, msg.check(Mainnet))
		ensure.DeepEqual(t, msg.body, body)
	}
}

func TestMessageCompression(t *testing.T) {
	body := bytes.Repeat([]byte{0xab}, 4096)
	plain := newMessage(Mainnet, BlockRequest, body)
	packed := newMessage(Mainnet, BlockResponse, body)
	ensure.DeepEqual(t, int(plain.dataLength), len(body))
	ensure.True(t, int(packed.dataLength) < len(body))
	ensure.DeepEqual(t, packed.reserved, []byte{compressFlag})
}

func TestMessageCheck(t *testing.T) {
	msg := newMessage(Testnet, TransactionMsg, []byte("tx"))
	ensure.DeepEqual(t, msg.check(Mainnet), ErrMagic)

	msg = newMessage(Mainnet, BlockRequest, []byte("request"))
	msg.body[0] ^= 0xff
	ensure.DeepEqual(t, msg.check(Mainnet), ErrBodyCheckSum)
}

func TestCompressedBodyTooLong(t *testing.T) {
	// a few bytes claiming to inflate to 4GiB
	body := make([]byte, binary.MaxVarintLen64)
	body = append(body[:binary.PutUvarint(body, 1<<32-1)], 0, 0, 0, 0)
	msg := &message{
		messageHeader: &messageHeader{
			magic:        Mainnet,
			code:         BlockResponse,
			dataLength:   uint32(len(body)),
			dataChecksum: crc32.ChecksumIEEE(body),
			reserved:     []byte{compressFlag},
		},
		body: body,
	}
	ensure.DeepEqual(t, msg.check(Mainnet), ErrExceedMaxDataLength)

	msg = newMessage(Mainnet, BlockResponse, bytes.Repeat([]byte{1}, MaxMessageDataLength+1))
	ensure.DeepEqual(t, msg.check(Mainnet), ErrExceedMaxDataLength)
}

func TestMessageHeaderTooLong(t *testing.T) {
	var buf bytes.Buffer
	ensure.Nil(t, util.WriteUint32(&buf, maxHeaderLength+1))
	_, err := readMessageData(&buf)
	ensure.DeepEqual(t, err, ErrExceedMaxDataLength)
}

func TestMessageUnmarshal(t *testing.T) {
	data, err := newMessage(Mainnet, HeightAnnouncement, []byte{1, 2, 3}).Marshal()
	ensure.Nil(t, err)
	msg := new(message)
	ensure.Nil(t, msg.Unmarshal(data))
	ensure.DeepEqual(t, msg.code, HeightAnnouncement)
	ensure.DeepEqual(t, msg.body, []byte{1, 2, 3})
}
