// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"github.com/jbenet/goprocess"
	"github.com/pkg/errors"
)

// Server is a long-lived node component. Its goroutines hang off Proc, so
// closing a parent process stops it.
type Server interface {
	// Run starts the service and returns without blocking.
	Run() error
	// Stop closes the service process.
	Stop()
	// Proc returns the goprocess the service is running under.
	Proc() goprocess.Process
}

// RunAll starts servers in order and stops at the first failure.
func RunAll(servers ...Server) error {
	for _, s := range servers {
		if err := s.Run(); err != nil {
			return errors.Wrapf(err, "failed to start %T", s)
		}
	}
	return nil
}
