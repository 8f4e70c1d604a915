// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"runtime"

	cli "github.com/BOXFoundation/ledgerd/commands/ledgerd"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	cli.Execute()
}
