// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ledgerd

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/BOXFoundation/ledgerd/blocksync"
	config "github.com/BOXFoundation/ledgerd/config"
	"github.com/BOXFoundation/ledgerd/consensus/bft"
	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/prover"
	"github.com/BOXFoundation/ledgerd/core/txpool"
	"github.com/BOXFoundation/ledgerd/core/validator"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/ledgerd/service"
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/metrics"
	p2p "github.com/BOXFoundation/ledgerd/p2p"
	"github.com/BOXFoundation/ledgerd/rpc/client"
	grpcserver "github.com/BOXFoundation/ledgerd/rpc/server"
	storage "github.com/BOXFoundation/ledgerd/storage"
	_ "github.com/BOXFoundation/ledgerd/storage/memdb"   // init memdb
	_ "github.com/BOXFoundation/ledgerd/storage/rocksdb" // init rocksdb
	"github.com/BOXFoundation/ledgerd/wallet/account"
	"github.com/jbenet/goprocess"
	goprocessctx "github.com/jbenet/goprocess/context"
	"github.com/pkg/errors"
)

var logger = log.NewLogger("ledgerd") // logger for node package

const teardownTimeout = 15 * time.Second

// Server is the ledgerd node, which owns all services: database, router,
// ledger store, mempool, consensus, sync and grpc.
type Server struct {
	sm   sync.Mutex
	proc goprocess.Process

	bus       eventbus.Bus
	cfg       *config.Config
	transport p2p.Transport
	fatalCh   chan error
	fatal     error

	database    *storage.Database
	router      *p2p.Router
	scores      *p2p.ScoreManager
	validator   *validator.Validator
	blockChain  *chain.BlockChain
	txPool      *txpool.TransactionPool
	consensus   *bft.Engine
	syncManager *blocksync.SyncManager
	bulk        *client.BulkSource
	grpcsvr     *grpcserver.Server
}

var _ service.Server = (*Server)(nil)
var _ grpcserver.NodeReporter = (*Server)(nil)

// NewServer new a ledgerd server. SIGINT closes it.
func NewServer(cfg *config.Config) *Server {
	return newServer(goprocess.WithSignals(os.Interrupt), cfg, nil)
}

// newServer runs the node under parent. A nil transport makes Prepare
// create a libp2p host.
func newServer(parent goprocess.Process, cfg *config.Config, transport p2p.Transport) *Server {
	server := &Server{
		proc:      goprocess.WithParent(parent),
		bus:       eventbus.New(),
		cfg:       cfg,
		transport: transport,
		fatalCh:   make(chan error, 1),
	}
	server.initEventListener()
	server.proc.SetTeardown(server.teardown)
	return server
}

// teardown
func (server *Server) teardown() error {
	if server.bulk != nil {
		server.bulk.Close()
	}

	done := make(chan struct{})
	go func() {
		server.bus.WaitAsync() // get all async msgs processed
		close(done)
	}()

	timer := time.NewTimer(teardownTimeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		logger.Warn("Ledgerd server teardown timeout.")
		return fmt.Errorf("timeout to shutdown eventbus")
	case <-done:
		logger.Info("Ledgerd server teardown finished.")
		return nil
	}
}

// Prepare builds every service in dependency order.
func (server *Server) Prepare() error {
	var cfg = server.cfg
	runtime.GOMAXPROCS(runtime.NumCPU())

	// make sure the cfg is correct and all directories are ok.
	if err := cfg.Prepare(); err != nil {
		return err
	}
	// setup logger
	log.Setup(&cfg.Log)

	// ########################################################
	// prepare database.
	database, err := storage.NewDatabase(server.proc, &cfg.Database)
	if err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}
	server.database = database

	// ########################################################
	// prepare ledger store.
	if server.validator, err = validator.New(&cfg.Validator, prover.New()); err != nil {
		return errors.Wrap(err, "failed to new validator")
	}
	blockChain, err := chain.NewBlockChain(database.Proc(), database, server.validator, server.bus,
		&cfg.Chain, &cfg.Genesis)
	if err != nil {
		return errors.Wrap(err, "failed to new BlockChain")
	}
	server.blockChain = blockChain

	// ########################################################
	// prepare router.
	if server.transport == nil {
		ctx := goprocessctx.OnClosingContext(blockChain.Proc())
		if server.transport, err = p2p.NewHost(ctx, &cfg.P2p); err != nil {
			return errors.Wrap(err, "failed to new p2p host")
		}
	}
	genesis := blockChain.Genesis().Hash()
	router, err := p2p.NewRouter(blockChain.Proc(), &cfg.P2p, server.transport, genesis[:], server.bus)
	if err != nil {
		return errors.Wrap(err, "failed to new router")
	}
	height, _ := blockChain.Head()
	router.SetHeight(height)
	server.router = router

	// ########################################################
	// prepare txpool.
	server.txPool = txpool.NewTransactionPool(router.Proc(), &cfg.Txpool, router, blockChain,
		server.validator, server.bus)

	// ########################################################
	// prepare consensus.
	var signer core.Account
	if cfg.Consensus.Keypath != "" {
		acc, err := account.LoadAccount(cfg.Consensus.Keypath, cfg.Consensus.Passphrase)
		if err != nil {
			return errors.Wrap(err, "failed to load validator key")
		}
		logger.Infof("Validator key loaded: %s", acc.Address())
		signer = acc
	}
	consensus, err := bft.NewEngine(server.txPool.Proc(), &cfg.Consensus, blockChain, server.txPool,
		server.validator, router, server.bus, signer)
	if err != nil {
		return errors.Wrap(err, "failed to new consensus engine")
	}
	server.consensus = consensus

	// ########################################################
	// prepare sync manager.
	var bulk core.BulkSource
	if cfg.Sync.BulkSource != "" {
		if server.bulk, err = client.NewBulkSource(cfg.Sync.BulkSource); err != nil {
			return errors.Wrap(err, "failed to connect bulk source")
		}
		bulk = server.bulk
	}
	server.syncManager = blocksync.NewSyncManager(server.txPool.Proc(), &cfg.Sync, blockChain, router,
		server.bus, consensus, bulk)

	// ########################################################
	// prepare grpc server.
	if cfg.RPC.Enabled {
		server.grpcsvr = grpcserver.NewServer(server.txPool.Proc(), &cfg.RPC, blockChain, server.txPool,
			router, server)
	}
	return nil
}

// Run to start node server. It blocks until the node is down.
func (server *Server) Run() error {
	if err := server.Start(); err != nil {
		server.proc.Close()
		return err
	}

	// goprocesses dependencies
	//            root
	//              |
	//           database
	//              |
	//            chain
	//              |
	//            router
	//              |
	//            txpool
	//           /  |  \
	//     rpc  consensus  sync

	<-server.proc.Closing()
	logger.Info("Ledgerd server is shutting down...")
	<-server.proc.Closed()
	logger.Info("Ledgerd server is down.")
	return nil
}

// Start launches every prepared service and returns.
func (server *Server) Start() error {
	var cfg = server.cfg

	server.proc.Go(server.supervise)

	services := []service.Server{
		server.blockChain,
		server.router,
		server.txPool,
		server.consensus,
		server.syncManager,
	}
	if server.grpcsvr != nil {
		services = append(services, server.grpcsvr)
	}
	if err := service.RunAll(services...); err != nil {
		return err
	}
	server.scores = p2p.NewScoreManager(server.router.Proc(), server.bus, server.router)
	metrics.Run(&cfg.Metrics)
	return nil
}

// supervise stops consensus once a component reports a fatal error. Reads
// keep being served.
func (server *Server) supervise(p goprocess.Process) {
	for {
		select {
		case err := <-server.fatalCh:
			logger.Errorf("Node stopped writing: %v", err)
			server.consensus.StopMint()
		case <-p.Closing():
			return
		}
	}
}

// Proc returns the goprocess to run the server
func (server *Server) Proc() goprocess.Process {
	return server.proc
}

// Stop the server
func (server *Server) Stop() {
	server.proc.Close()
}

// Fatal returns the first fatal error reported by a component.
func (server *Server) Fatal() error {
	server.sm.Lock()
	defer server.sm.Unlock()
	return server.fatal
}

// SyncStatus reports the sync manager state.
func (server *Server) SyncStatus() string {
	if server.syncManager == nil {
		return blocksync.Synced.String()
	}
	return server.syncManager.Status().String()
}

// ConsensusStatus reports the engine position.
func (server *Server) ConsensusStatus() (string, uint32, bool) {
	if server.consensus == nil {
		return "", 0, false
	}
	status := server.consensus.Status()
	return status.State.String(), status.Round, status.Halted || server.Fatal() != nil
}

// RPCAddr returns the grpc listen address, empty when rpc is disabled.
func (server *Server) RPCAddr() string {
	if server.grpcsvr == nil {
		return ""
	}
	return server.grpcsvr.Addr()
}

// Chain returns the ledger store.
func (server *Server) Chain() *chain.BlockChain {
	return server.blockChain
}

// Router returns the p2p router.
func (server *Server) Router() *p2p.Router {
	return server.router
}

// handlers below run on the publisher's goroutine, some inside the commit
// gate. They never block.
func (server *Server) initEventListener() {
	server.bus.Subscribe(eventbus.TopicChainUpdate, func(msg *chain.UpdateMsg) {
		if server.router != nil {
			server.router.SetHeight(msg.Block.Height())
		}
	})

	server.bus.Subscribe(eventbus.TopicNodeFatal, func(err error) {
		server.sm.Lock()
		if server.fatal == nil {
			server.fatal = err
		}
		server.sm.Unlock()
		select {
		case server.fatalCh <- err:
		default:
		}
	})

	server.bus.Subscribe(eventbus.TopicSyncStall, func(stalls int) {
		logger.Warnf("Sync made no progress after %d attempts", stalls)
	})

	server.bus.Subscribe(eventbus.TopicConsensusConflict, func(ev *bft.ConflictEvidence) {
		logger.Errorf("Conflicting certificates at height %d", ev.Height)
	})
}
