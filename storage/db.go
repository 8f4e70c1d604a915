// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/BOXFoundation/ledgerd/log"
	"github.com/jbenet/goprocess"
)

var logger = log.NewLogger("storage")

// Config defines the database configuration
type Config struct {
	Name    string  `mapstructure:"name"`
	Path    string  `mapstructure:"path"`
	Options Options `mapstructure:"options"`
}

// Database is a wrapper of Storage, implementing the database life cycle
type Database struct {
	Storage
	proc   goprocess.Process
	sm     sync.Mutex
	closed bool
}

// NewDatabase creates a database instance
func NewDatabase(parent goprocess.Process, cfg *Config) (*Database, error) {
	storage, err := newStorage(cfg.Name, cfg.Path, &cfg.Options)
	if err != nil {
		return nil, err
	}

	database := &Database{Storage: storage}
	database.proc = goprocess.WithParent(parent)
	database.proc.SetTeardown(database.shutdown)
	return database, nil
}

// Run is a no-op, the database is ready once created.
func (db *Database) Run() error {
	return nil
}

// Proc returns the goprocess of the database
func (db *Database) Proc() goprocess.Process {
	return db.proc
}

// Stop closes the database process
func (db *Database) Stop() {
	db.proc.Close()
}

// Close closes the database
func (db *Database) Close() error {
	return db.proc.Close()
}

// the real shutdown func of database
func (db *Database) shutdown() error {
	db.sm.Lock()
	defer db.sm.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true

	logger.Info("Shutdown database...")
	return db.Storage.Close()
}
