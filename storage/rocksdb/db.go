// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rocksdb

import (
	"io/ioutil"
	"time"

	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/metrics"
	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/tecbot/gorocksdb"
)

var logger = log.NewLogger("rocksdb")

// Name is the registered driver name
const Name = "rocksdb"

const (
	bloomBits      = 10
	cachesize      = 1 << 30
	metricInterval = 5 * time.Second
)

var metricsCacheGauge = metrics.NewGauge("ledgerd.rocksdb.cache.size")

func init() {
	storage.Register(Name, NewRocksDB)
}

func prepare(path string) {
	files, err := ioutil.ReadDir(path)
	if err != nil || len(files) == 0 {
		dbpath := gorocksdb.NewDBPath(path, 0)
		defer dbpath.Destroy()
	}
}

// NewRocksDB creates a rocksdb instance
func NewRocksDB(name string, o *storage.Options) (storage.Storage, error) {
	logger.Infof("Creating rocksdb at %s", name)

	options := gorocksdb.NewDefaultOptions()

	blockBasedTableOptions := gorocksdb.NewDefaultBlockBasedTableOptions()
	blockBasedTableOptions.SetFilterPolicy(gorocksdb.NewBloomFilter(bloomBits))
	cache := gorocksdb.NewLRUCache(cachesize)
	blockBasedTableOptions.SetBlockCache(cache)

	options.SetBlockBasedTableFactory(blockBasedTableOptions)
	options.SetCreateIfMissing(true)
	options.SetCreateIfMissingColumnFamilies(true)
	options.SetMaxBackgroundFlushes(4)
	options.SetMaxOpenFiles(512)

	prepare(name)
	cfnames, err := gorocksdb.ListColumnFamilies(options, name)
	if err != nil {
		logger.Debug(err)
	}

	var cfhandlers []*gorocksdb.ColumnFamilyHandle
	var db *gorocksdb.DB
	if len(cfnames) == 0 {
		db, err = gorocksdb.OpenDb(options, name)
	} else {
		cfoptions := make([]*gorocksdb.Options, len(cfnames))
		for i := range cfnames {
			cfoptions[i] = options
		}
		db, cfhandlers, err = gorocksdb.OpenDbColumnFamilies(options, name, cfnames, cfoptions)
	}
	if err != nil {
		return nil, err
	}

	writeOptions := gorocksdb.NewDefaultWriteOptions()
	// commits must survive a process crash
	writeOptions.SetSync(true)

	d := &rocksdb{
		rtable: rtable{
			rocksdb:      db,
			readOptions:  gorocksdb.NewDefaultReadOptions(),
			writeOptions: writeOptions,
		},
		cfs:          map[string]*gorocksdb.ColumnFamilyHandle{},
		tables:       map[string]*rtable{},
		dboptions:    options,
		flushOptions: gorocksdb.NewDefaultFlushOptions(),
		done:         make(chan struct{}),
	}
	for i, cfhandler := range cfhandlers {
		d.cfs[cfnames[i]] = cfhandler
	}

	go func() {
		ticker := time.NewTicker(metricInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metricsCacheGauge.Update(int64(cache.GetUsage()))
			case <-d.done:
				return
			}
		}
	}()

	return d, nil
}

// helper function to make memcopy and free object
func data(s *gorocksdb.Slice) []byte {
	defer s.Free()
	if s.Size() == 0 {
		return nil
	}

	buf := make([]byte, s.Size())
	copy(buf, s.Data())
	return buf
}
