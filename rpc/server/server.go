// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import (
	"fmt"
	"net"
	"sync"

	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/txpool"
	"github.com/BOXFoundation/ledgerd/ledgerd/service"
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/jbenet/goprocess"
	"google.golang.org/grpc"
)

var logger = log.NewLogger("rpc")

// Config defines the configurations of rpc server
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

// Default values
const (
	DefaultAddress = "127.0.0.1"
	DefaultPort    = 19111
)

// Fill sets the defaults of unset fields.
func (cfg *Config) Fill() {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
}

// NodeReporter reports the state of the node services. Status strings are
// free form.
type NodeReporter interface {
	SyncStatus() string
	ConsensusStatus() (state string, round uint32, halted bool)
}

// GRPCServer is what the grpc services see of the server.
type GRPCServer interface {
	GetChain() *chain.BlockChain
	GetTxPool() *txpool.TransactionPool
	GetNet() p2p.Net
	GetReporter() NodeReporter
}

// Server defines the rpc server
type Server struct {
	cfg      *Config
	chain    *chain.BlockChain
	pool     *txpool.TransactionPool
	p2pNet   p2p.Net
	reporter NodeReporter

	server   *grpc.Server
	listener net.Listener
	proc     goprocess.Process

	wg sync.WaitGroup
}

var _ service.Server = (*Server)(nil)
var _ GRPCServer = (*Server)(nil)

// Service defines the grpc service func
type Service func(s *Server)

var services = make(map[string]Service)

// RegisterService registers a new grpc service
func RegisterService(name string, s Service) {
	services[name] = s
}

// NewServer creates a RPC server instance. reporter may be nil.
func NewServer(parent goprocess.Process, cfg *Config, c *chain.BlockChain, pool *txpool.TransactionPool,
	net p2p.Net, reporter NodeReporter) *Server {

	return &Server{
		cfg:      cfg,
		chain:    c,
		pool:     pool,
		p2pNet:   net,
		reporter: reporter,
		proc:     goprocess.WithParent(parent),
	}
}

// Run listens and starts serving.
func (s *Server) Run() error {
	var addr = fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)
	lis, err := net.Listen("tcp4", addr)
	if err != nil {
		return err
	}
	s.listener = lis
	s.server = grpc.NewServer()

	// regist all grpc services for the server
	for name, service := range services {
		logger.Debugf("register grpc service: %s", name)
		service(s)
	}

	logger.Infof("Starting gRPC server at %s", lis.Addr())
	s.proc.Go(s.serve)
	return nil
}

func (s *Server) serve(proc goprocess.Process) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(s.listener); err != nil {
			logger.Errorf("gRPC server stopped: %v", err)
		}
	}()

	<-proc.Closing()
	logger.Info("Shutting down rpc server...")
	s.server.GracefulStop()

	s.wg.Wait()
	logger.Info("RPC server is down.")
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Proc returns the goprocess running the service
func (s *Server) Proc() goprocess.Process {
	return s.proc
}

// Stop the rpc server
func (s *Server) Stop() {
	s.proc.Close()
}

// GetChain implements GRPCServer.
func (s *Server) GetChain() *chain.BlockChain {
	return s.chain
}

// GetTxPool implements GRPCServer.
func (s *Server) GetTxPool() *txpool.TransactionPool {
	return s.pool
}

// GetNet implements GRPCServer.
func (s *Server) GetNet() p2p.Net {
	return s.p2pNet
}

// GetReporter implements GRPCServer.
func (s *Server) GetReporter() NodeReporter {
	return s.reporter
}
