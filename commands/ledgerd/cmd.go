// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ledgerd

import (
	"fmt"
	"os"

	_ "github.com/BOXFoundation/ledgerd/commands/ledgerd/account" // init account cmd
	_ "github.com/BOXFoundation/ledgerd/commands/ledgerd/ctl"     // init ctl cmd
	root "github.com/BOXFoundation/ledgerd/commands/ledgerd/root"
	_ "github.com/BOXFoundation/ledgerd/commands/ledgerd/start" // init start cmd
)

// Execute is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := root.RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
