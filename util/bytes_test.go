// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"testing"

	"github.com/facebookgo/ensure"
)

func TestUint64KeyOrder(t *testing.T) {
	ensure.True(t, bytes.Compare(FromUint64(255), FromUint64(256)) < 0)
	ensure.DeepEqual(t, Uint64(FromUint64(1<<40+7)), uint64(1<<40+7))
}

func TestFrameHelpers(t *testing.T) {
	var buf bytes.Buffer
	ensure.Nil(t, WriteUint32(&buf, 5))
	ensure.Nil(t, WriteBytes(&buf, []byte("hello")))

	l, err := ReadUint32(&buf)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, l, uint32(5))
	data, err := ReadBytesOfLength(&buf, l)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, data, []byte("hello"))

	_, err = ReadUint32(&buf)
	ensure.NotNil(t, err)
}
