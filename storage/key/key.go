// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package key

import (
	"encoding/hex"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// A Key is a slash separated storage path, e.g.
//     Key("/bk/7c3040dcb540cc57f8c4ed08dbcfba807434dc861c94a1c161b099f58d9ebe6d")
//     Key("/bh/0000000000000064")
//     Key("/ac/1MirQ9bwyQcGVJPwKUgapu5ouK2E2Ey4gX/0000000000000064")
type Key struct {
	string
}

// NewKey constructs a key from string. it will clean the value.
func NewKey(s string) Key {
	k := Key{s}
	k.clean()
	return k
}

// NewKeyWithPaths constructs a key out of path segments.
func NewKeyWithPaths(p ...string) Key {
	return NewKey(strings.Join(p, "/"))
}

func (k *Key) clean() {
	switch {
	case len(k.string) == 0:
		k.string = "/"
	case k.string[0] == '/':
		k.string = path.Clean(k.string)
	default:
		k.string = path.Clean("/" + k.string)
	}
}

// String is the string value of Key
func (k Key) String() string {
	return k.string
}

// Bytes returns the string value of Key as a []byte
func (k Key) Bytes() []byte {
	return []byte(k.string)
}

// Prefix returns the key with a trailing slash, for prefix scans of its
// children.
func (k Key) Prefix() []byte {
	if k.string == "/" {
		return []byte("/")
	}
	return []byte(k.string + "/")
}

// Equal checks equality of two keys
func (k Key) Equal(k2 Key) bool {
	return k.string == k2.string
}

// Less checks whether this key is sorted lower than another.
func (k Key) Less(k2 Key) bool {
	list1 := k.List()
	list2 := k2.List()
	for i, c1 := range list1 {
		if len(list2) < (i + 1) {
			return false
		}
		c2 := list2[i]
		if c1 < c2 {
			return true
		} else if c1 > c2 {
			return false
		}
	}
	return len(list1) < len(list2)
}

// List returns the path segments of this Key.
func (k Key) List() []string {
	return strings.Split(k.string, "/")[1:]
}

// BaseName returns the last path segment.
func (k Key) BaseName() string {
	list := k.List()
	return list[len(list)-1]
}

// Parent returns the `parent` Key of this Key.
func (k Key) Parent() Key {
	n := k.List()
	if len(n) == 1 {
		return Key{"/"}
	}
	return NewKey(strings.Join(n[:len(n)-1], "/"))
}

// ChildString returns the child key with segment s.
func (k Key) ChildString(s string) Key {
	if len(s) == 0 {
		return k
	}
	if s[0] != '/' {
		s = "/" + s
	}
	return NewKey(k.string + s)
}

// ChildBytes returns the child key with the hex encoding of b.
func (k Key) ChildBytes(b []byte) Key {
	return k.ChildString(hex.EncodeToString(b))
}

// ChildUint64 returns the child key with a fixed width hex encoding of n,
// so that numeric order matches the byte order of keys.
func (k Key) ChildUint64(n uint64) Key {
	return k.ChildString(fmt.Sprintf("%016x", n))
}

// BaseUint64 parses the last segment written by ChildUint64.
func (k Key) BaseUint64() (uint64, error) {
	return strconv.ParseUint(k.BaseName(), 16, 64)
}

// IsAncestorOf returns whether this key is a prefix of `other`
func (k Key) IsAncestorOf(other Key) bool {
	if other.string == k.string {
		return false
	}
	return strings.HasPrefix(other.string, k.string)
}
