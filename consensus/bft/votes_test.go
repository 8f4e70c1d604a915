// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bft

import (
	"testing"

	"github.com/BOXFoundation/ledgerd/core/testutil"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/facebookgo/ensure"
)

func TestVoteSet(t *testing.T) {
	keys := testutil.NewKeys(4)
	vs := testutil.ValidatorSet(1, keys)
	a := crypto.DoubleHashH([]byte("a"))
	b := crypto.DoubleHashH([]byte("b"))
	set := newVoteSet(5, 2)

	added, prev := set.add(keys[0].Vote(5, 2, a), vs)
	ensure.True(t, added)
	ensure.True(t, prev == nil)
	added, _ = set.add(keys[0].Vote(5, 2, a), vs)
	ensure.False(t, added)

	first := set.byVoter[keys[0].Addr]
	added, prev = set.add(keys[0].Vote(5, 2, b), vs)
	ensure.False(t, added)
	ensure.DeepEqual(t, prev, first)

	set.add(keys[1].Vote(5, 2, a), vs)
	_, ok := set.quorum(vs)
	ensure.False(t, ok)
	set.add(keys[2].Vote(5, 2, a), vs)
	hash, ok := set.quorum(vs)
	ensure.True(t, ok)
	ensure.DeepEqual(t, hash, a)

	cert := set.certificate(a)
	ensure.DeepEqual(t, len(cert.Votes), 3)
	ensure.Nil(t, cert.Verify(vs))
}

func TestPreferCertificate(t *testing.T) {
	keys := testutil.NewKeys(4)
	vs, err := types.NewValidatorSet(1, []types.Validator{
		{Address: keys[0].Addr, Weight: 10},
		{Address: keys[1].Addr, Weight: 10},
		{Address: keys[2].Addr, Weight: 10},
		{Address: keys[3].Addr, Weight: 1},
	})
	ensure.Nil(t, err)
	a := crypto.DoubleHashH([]byte("a"))
	b := crypto.DoubleHashH([]byte("b"))
	certify := func(round uint32, hash crypto.HashType, voters ...*testutil.Key) *types.Certificate {
		cert := &types.Certificate{Height: 1, Round: round, BlockHash: hash}
		for _, k := range voters {
			cert.Votes = append(cert.Votes, k.Vote(1, round, hash))
		}
		return cert
	}

	heavy := certify(0, a, keys[0], keys[1], keys[2])
	light := certify(1, b, keys[1], keys[2], keys[3])
	ensure.DeepEqual(t, preferCertificate(heavy, light, vs), heavy)
	ensure.DeepEqual(t, preferCertificate(light, heavy, vs), heavy)

	x := certify(0, a, keys[0], keys[1])
	y := certify(1, b, keys[1], keys[2])
	lower := x
	if b.Less(a) {
		lower = y
	}
	ensure.DeepEqual(t, preferCertificate(x, y, vs), lower)
	ensure.DeepEqual(t, preferCertificate(y, x, vs), lower)
}
