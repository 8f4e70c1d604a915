// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"hash/crc32"
	"io"

	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	"github.com/BOXFoundation/ledgerd/p2p/pb"
	"github.com/BOXFoundation/ledgerd/util"
	proto "github.com/gogo/protobuf/proto"
	"github.com/golang/snappy"
	peer "github.com/libp2p/go-libp2p-peer"
)

// const
const (
	ProtocolID = "/ledgerd/1.0.0"
	// Mainnet velocity of light
	Mainnet uint32 = 0x11de784a
	Testnet uint32 = 0x54455354

	Ping           uint32 = 0x00
	Pong           uint32 = 0x01
	Handshake      uint32 = 0x02
	TransactionMsg uint32 = 0x05
	ProposalMsg    uint32 = 0x06
	VoteMsg        uint32 = 0x07

	// Sync Manager
	HeightAnnouncement uint32 = 0x10
	BlockRequest       uint32 = 0x11
	BlockResponse      uint32 = 0x12

	MaxMessageDataLength = 32 * 1024 * 1024 // 32MB
	maxHeaderLength      = 1024
)

const compressFlag = 1 << 7

// messageAttribute holds the per code framing options.
type messageAttribute struct {
	compress bool
	// dedup drops repeated bodies; off for control and request/response
	// codes, whose repeats are meaningful
	dedup bool
}

var defaultMessageAttribute = &messageAttribute{}

var msgToAttribute = map[uint32]*messageAttribute{
	Ping:               {},
	Pong:               {},
	Handshake:          {},
	TransactionMsg:     {compress: true, dedup: true},
	ProposalMsg:        {compress: true, dedup: true},
	VoteMsg:            {dedup: true},
	HeightAnnouncement: {},
	BlockRequest:       {},
	BlockResponse:      {compress: true},
}

func attributeOf(code uint32) *messageAttribute {
	if attr, ok := msgToAttribute[code]; ok {
		return attr
	}
	return defaultMessageAttribute
}

// NetworkNameToMagic is a map from network name to magic number.
var NetworkNameToMagic = map[string]uint32{
	"mainnet": Mainnet,
	"testnet": Testnet,
}

// messageHeader message header info from network.
type messageHeader struct {
	magic        uint32
	code         uint32
	dataLength   uint32
	dataChecksum uint32
	reserved     []byte
}

var _ conv.Convertible = (*messageHeader)(nil)
var _ conv.Serializable = (*messageHeader)(nil)

// message defines the full message content from network.
type message struct {
	*messageHeader
	body []byte
}

var _ conv.Serializable = (*message)(nil)

// newMessage frames body for code, compressing it if the code asks so.
func newMessage(magic uint32, code uint32, body []byte) *message {
	var reserved []byte
	if attributeOf(code).compress {
		reserved = []byte{compressFlag}
		body = snappy.Encode(nil, body)
	}
	return &message{
		messageHeader: &messageHeader{
			magic:        magic,
			code:         code,
			dataLength:   uint32(len(body)),
			dataChecksum: crc32.ChecksumIEEE(body),
			reserved:     reserved,
		},
		body: body,
	}
}

// readMessageData reads a message from reader
func readMessageData(r io.Reader) (*message, error) {
	headerLen, err := util.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if headerLen > maxHeaderLength {
		return nil, ErrExceedMaxDataLength
	}
	headerBuf, err := util.ReadBytesOfLength(r, headerLen)
	if err != nil {
		return nil, err
	}
	header := &messageHeader{}
	if err := header.Unmarshal(headerBuf); err != nil {
		return nil, err
	}

	// return error if the data length exceeds the max data length
	if header.dataLength > MaxMessageDataLength {
		return nil, ErrExceedMaxDataLength
	}

	body, err := util.ReadBytesOfLength(r, header.dataLength)
	if err != nil {
		return nil, err
	}
	return &message{messageHeader: header, body: body}, nil
}

// check verifies magic and checksum, then decompresses the body in place.
// A body that claims to inflate past MaxMessageDataLength is rejected
// before decoding.
func (msg *message) check(magic uint32) error {
	if msg.magic != magic {
		return ErrMagic
	}
	if crc32.ChecksumIEEE(msg.body) != msg.dataChecksum {
		return ErrBodyCheckSum
	}
	if len(msg.reserved) != 0 && int(msg.reserved[0])&compressFlag != 0 {
		n, err := snappy.DecodedLen(msg.body)
		if err != nil {
			return ErrMessageDataContent
		}
		if n > MaxMessageDataLength {
			return ErrExceedMaxDataLength
		}
		data, err := snappy.Decode(nil, msg.body)
		if err != nil {
			return ErrMessageDataContent
		}
		msg.body = data
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// ToProtoMessage converts header message in proto.
func (header *messageHeader) ToProtoMessage() (proto.Message, error) {
	return &p2ppb.MessageHeader{
		Magic:        header.magic,
		Code:         header.code,
		DataLength:   header.dataLength,
		DataChecksum: header.dataChecksum,
		Reserved:     header.reserved,
	}, nil
}

// FromProtoMessage header message in proto.
func (header *messageHeader) FromProtoMessage(msg proto.Message) error {
	if pb, ok := msg.(*p2ppb.MessageHeader); ok && pb != nil {
		header.magic = pb.Magic
		header.code = pb.Code
		header.dataLength = pb.DataLength
		header.dataChecksum = pb.DataChecksum
		header.reserved = pb.Reserved
		return nil
	}
	return ErrFromProtoMessageMessage
}

// Marshal method marshal messageHeader object to binary
func (header *messageHeader) Marshal() (data []byte, err error) {
	return conv.MarshalConvertible(header)
}

// Unmarshal method unmarshal binary data to messageHeader object
func (header *messageHeader) Unmarshal(data []byte) error {
	return conv.UnmarshalConvertible(data, &p2ppb.MessageHeader{}, header)
}

////////////////////////////////////////////////////////////////////////////////
// implements conv.Serializable interface

// Marshal method marshal message object to binary
func (msg *message) Marshal() (data []byte, err error) {
	headerData, err := msg.messageHeader.Marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := util.WriteUint32(&buf, uint32(len(headerData))); err != nil {
		return nil, err
	}
	if err := util.WriteBytes(&buf, headerData); err != nil {
		return nil, err
	}
	if err := util.WriteBytes(&buf, msg.body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal method unmarshal binary data to message object
func (msg *message) Unmarshal(data []byte) error {
	m, err := readMessageData(bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	msg.messageHeader = m.messageHeader
	msg.body = m.body
	return nil
}

// remoteMessage is a checked inbound message with the sender peer ID
type remoteMessage struct {
	code uint32
	body []byte
	from peer.ID
}

var _ Message = (*remoteMessage)(nil)

// NewMessage returns an inbound message, for doubles of Net.
func NewMessage(code uint32, body []byte, from peer.ID) Message {
	return &remoteMessage{code: code, body: body, from: from}
}

// Code returns the message code
func (msg *remoteMessage) Code() uint32 {
	return msg.code
}

// Body returns the message body data as bytes
func (msg *remoteMessage) Body() []byte {
	return msg.body
}

// From returns the remote peer id from which the message was received
func (msg *remoteMessage) From() peer.ID {
	return msg.from
}
