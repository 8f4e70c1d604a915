// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"encoding/binary"
	"io"
)

var defaultEndian = binary.LittleEndian

// FromUint64 encodes v in big endian so that encoded keys sort by value.
func FromUint64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// Uint64 decodes a big endian uint64 produced by FromUint64.
func Uint64(data []byte) uint64 {
	return binary.BigEndian.Uint64(data)
}

// ReadUint32 reads uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return defaultEndian.Uint32(buf[:]), nil
}

// WriteUint32 writes uint32.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	defaultEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadBytesOfLength reads specified length of []byte via reader.
func ReadBytesOfLength(r io.Reader, l uint32) ([]byte, error) {
	buf := make([]byte, l)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBytes writes fix length of bytes.
func WriteBytes(w io.Writer, v []byte) error {
	_, err := w.Write(v)
	return err
}
