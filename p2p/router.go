// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/ledgerd/service"
	"github.com/BOXFoundation/ledgerd/log"
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	"github.com/BOXFoundation/ledgerd/p2p/pb"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jbenet/goprocess"
	goprocessctx "github.com/jbenet/goprocess/context"
	peer "github.com/libp2p/go-libp2p-peer"
	"golang.org/x/time/rate"
)

var logger = log.NewLogger("p2p") // logger

// peerEntry is the router's bookkeeping for one peer id.
type peerEntry struct {
	record      PeerRecord
	conn        *conn
	violations  []time.Time
	bannedUntil time.Time
}

func (e *peerEntry) transit(next PeerState) error {
	if e.record.State == next {
		return nil
	}
	if !e.record.State.CanTransitTo(next) {
		return ErrIllegalTransition
	}
	e.record.State = next
	return nil
}

// Router owns the peer set. Services reach remote peers only through the
// Net interface it implements.
type Router struct {
	cfg       *Config
	transport Transport
	bus       eventbus.Bus
	notifier  *Notifier
	proc      goprocess.Process

	mtx     sync.RWMutex
	peers   map[peer.ID]*peerEntry
	genesis []byte
	height  uint64

	addrs   *addrBook
	dedup   *lru.Cache
	limiter *rate.Limiter
}

var _ Net = (*Router)(nil)
var _ service.Server = (*Router)(nil)

// NewRouter creates a router over transport. genesis is the local genesis
// block hash checked during the handshake.
func NewRouter(parent goprocess.Process, cfg *Config, transport Transport, genesis []byte, bus eventbus.Bus) (*Router, error) {
	cfg.Fill()
	dedup, err := lru.New(cfg.DedupSize)
	if err != nil {
		return nil, err
	}
	r := &Router{
		cfg:       cfg,
		transport: transport,
		bus:       bus,
		notifier:  NewNotifier(),
		proc:      goprocess.WithParent(parent),
		peers:     make(map[peer.ID]*peerEntry),
		genesis:   genesis,
		addrs:     newAddrBook(cfg.ReconnectBase, cfg.ReconnectMax),
		dedup:     dedup,
		limiter:   rate.NewLimiter(rate.Limit(cfg.GlobalRate), cfg.GlobalBurst),
	}
	r.proc.SetTeardown(r.transport.Close)
	for _, seed := range cfg.Seeds {
		r.addrs.add(seed, "")
	}
	return r, nil
}

// Run starts accepting streams, dispatching messages and maintaining the
// peer set.
func (r *Router) Run() error {
	r.transport.SetStreamHandler(r.handleStream)
	r.notifier.Loop(r.proc)
	r.proc.Go(r.maintain)
	logger.Infof("Router %s listening on %s", r.ID().Pretty(), r.transport.ListenAddr())
	return nil
}

// Proc returns the router process.
func (r *Router) Proc() goprocess.Process {
	return r.proc
}

// Stop closes every connection and the transport.
func (r *Router) Stop() {
	r.proc.Close()
}

// ID returns the local peer id.
func (r *Router) ID() peer.ID {
	return r.transport.ID()
}

// ListenAddr returns the dialable local address.
func (r *Router) ListenAddr() string {
	return r.transport.ListenAddr()
}

// SetHeight records the local committed height sent in handshakes.
func (r *Router) SetHeight(height uint64) {
	atomic.StoreUint64(&r.height, height)
}

// AddAddr makes an address known to the maintenance loop.
func (r *Router) AddAddr(addr string) {
	r.addrs.add(addr, "")
}

// Connect dials addr and completes the handshake.
func (r *Router) Connect(ctx context.Context, addr string) (peer.ID, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ConnectTimeout)
	defer cancel()

	r.addrs.add(addr, "")
	s, pid, err := r.transport.Dial(ctx, addr)
	if err != nil {
		backoff := r.addrs.failed(addr, time.Now())
		logger.Warnf("Failed to dial %s: %v, retry in %v", addr, err, backoff)
		return "", ErrConnectFailed
	}
	if err := r.admit(pid); err != nil {
		s.Close()
		return "", err
	}
	c := newConn(r, s, pid, false)
	c.addr = addr
	if err := r.establish(c); err != nil {
		if err != ErrDuplicateConnection {
			r.addrs.failed(addr, time.Now())
		}
		return "", err
	}
	r.addrs.succeeded(addr, pid)
	return pid, nil
}

func (r *Router) handleStream(s Stream, remote peer.ID) {
	if isClosing(r.proc) {
		s.Close()
		return
	}
	if err := r.admit(remote); err != nil {
		logger.Debugf("Refused inbound stream from %s: %v", remote.Pretty(), err)
		s.Close()
		return
	}
	c := newConn(r, s, remote, true)
	if err := r.establish(c); err != nil {
		logger.Debugf("Inbound handshake with %s failed: %v", remote.Pretty(), err)
	}
}

// admit checks a peer before spending a handshake on it.
func (r *Router) admit(pid peer.ID) error {
	if pid == r.ID() {
		return ErrSelfConnection
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if e, ok := r.peers[pid]; ok {
		if r.banned(e, time.Now()) {
			return ErrBanned
		}
		if e.conn != nil {
			return ErrDuplicateConnection
		}
	}
	if r.connectedLocked() >= r.cfg.MaxPeers {
		return ErrTooManyPeers
	}
	return nil
}

// establish runs the handshake and registers c as an Active peer.
func (r *Router) establish(c *conn) error {
	local := &p2ppb.Handshake{
		Magic:      r.cfg.Magic,
		Genesis:    r.genesis,
		PeerId:     peer.IDB58Encode(r.ID()),
		Height:     atomic.LoadUint64(&r.height),
		ListenAddr: r.ListenAddr(),
	}
	remote, err := c.handshake(local, r.cfg.ConnectTimeout)
	if err == nil {
		err = r.checkHandshake(c, remote)
	}
	if err != nil {
		c.close()
		if err == ErrHandshake {
			r.publish(c.pid, eventbus.ConnTimeOutEvent)
		}
		return err
	}
	if remote.ListenAddr != "" {
		r.addrs.add(remote.ListenAddr, c.pid)
		if c.addr == "" {
			c.addr = remote.ListenAddr
		}
	}
	if err := r.register(c, remote.Height); err != nil {
		c.close()
		return err
	}
	c.start()
	logger.Infof("Peer %s connected, inbound %v, height %d", c.pid.Pretty(), c.inbound, remote.Height)
	r.publish(c.pid, eventbus.PeerConnEvent)
	return nil
}

func (r *Router) checkHandshake(c *conn, remote *p2ppb.Handshake) error {
	if remote.Magic != r.cfg.Magic {
		return ErrMagic
	}
	if !genesisMatches(r.genesis, remote.Genesis) {
		return ErrGenesisMismatch
	}
	pid, err := peer.IDB58Decode(remote.PeerId)
	if err != nil || pid != c.pid {
		return ErrHandshake
	}
	if pid == r.ID() {
		return ErrSelfConnection
	}
	return nil
}

func (r *Router) register(c *conn, height uint64) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	e, ok := r.peers[c.pid]
	if !ok {
		e = &peerEntry{record: PeerRecord{ID: c.pid, State: Unverified}}
		r.peers[c.pid] = e
	}
	if r.banned(e, time.Now()) {
		return ErrBanned
	}
	if e.conn != nil {
		return ErrDuplicateConnection
	}
	if r.connectedLocked() >= r.cfg.MaxPeers {
		return ErrTooManyPeers
	}
	if err := e.transit(Active); err != nil {
		return err
	}
	e.conn = c
	e.record.Addr = c.addr
	e.record.Height = height
	e.record.Inbound = c.inbound
	e.record.Failures = r.addrs.failures(c.addr)
	metricsPeersGauge.Update(int64(r.connectedLocked()))
	return nil
}

// banned reports whether e is banned at now, lifting an expired ban.
func (r *Router) banned(e *peerEntry, now time.Time) bool {
	if e.record.State != Banned {
		return false
	}
	if now.Before(e.bannedUntil) {
		return true
	}
	e.transit(Unverified)
	e.violations = nil
	logger.Infof("Ban of peer %s expired", e.record.ID.Pretty())
	return false
}

func (r *Router) connectedLocked() int {
	n := 0
	for _, e := range r.peers {
		if e.conn != nil {
			n++
		}
	}
	return n
}

// dropConn unregisters c once its read loop ends.
func (r *Router) dropConn(c *conn) {
	r.mtx.Lock()
	e, ok := r.peers[c.pid]
	owned := ok && e.conn == c
	if owned {
		e.conn = nil
		if e.record.State != Banned {
			e.transit(Unverified)
		}
		metricsPeersGauge.Update(int64(r.connectedLocked()))
	}
	r.mtx.Unlock()

	c.close()
	if owned {
		logger.Infof("Peer %s disconnected", c.pid.Pretty())
		r.publish(c.pid, eventbus.PeerDisconnEvent)
	}
}

// Disconnect closes the connection to pid, if any.
func (r *Router) Disconnect(pid peer.ID) {
	r.mtx.RLock()
	e, ok := r.peers[pid]
	var c *conn
	if ok {
		c = e.conn
	}
	r.mtx.RUnlock()
	if c != nil {
		r.dropConn(c)
	}
}

// Ban disconnects pid and refuses it for the ban duration.
func (r *Router) Ban(pid peer.ID) {
	r.mtx.Lock()
	e, ok := r.peers[pid]
	if !ok {
		e = &peerEntry{record: PeerRecord{ID: pid, State: Unverified}}
		r.peers[pid] = e
	}
	if err := e.transit(Banned); err != nil {
		r.mtx.Unlock()
		return
	}
	until := time.Now().Add(r.cfg.BanDuration)
	e.bannedUntil = until
	c := e.conn
	r.mtx.Unlock()

	logger.Warnf("Banned peer %s until %v", pid.Pretty(), until)
	if c != nil {
		r.dropConn(c)
	}
}

// Penalize demotes an active peer. Sync asks penalized peers last.
func (r *Router) Penalize(pid peer.ID) {
	r.setState(pid, Active, Penalized)
}

// Restore promotes a penalized peer back to Active.
func (r *Router) Restore(pid peer.ID) {
	r.setState(pid, Penalized, Active)
}

func (r *Router) setState(pid peer.ID, from, to PeerState) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if e, ok := r.peers[pid]; ok && e.record.State == from {
		if e.transit(to) == nil {
			logger.Debugf("Peer %s %v -> %v", pid.Pretty(), from, to)
		}
	}
}

// SetScore records the latest score of pid in its PeerRecord.
func (r *Router) SetScore(pid peer.ID, score int64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if e, ok := r.peers[pid]; ok {
		e.record.Score = score
	}
}

// violation publishes a protocol event and bans peers that exceed
// MaxViolations within ViolationSpan.
func (r *Router) violation(pid peer.ID, event eventbus.BusEvent, err error) {
	metricsViolationMeter.Mark(1)
	logger.Debugf("Violation %v by %s: %v", event, pid.Pretty(), err)
	r.publish(pid, event)

	now := time.Now()
	r.mtx.Lock()
	e, ok := r.peers[pid]
	if !ok {
		r.mtx.Unlock()
		return
	}
	kept := e.violations[:0]
	for _, t := range e.violations {
		if now.Sub(t) <= r.cfg.ViolationSpan {
			kept = append(kept, t)
		}
	}
	e.violations = append(kept, now)
	exceeded := len(e.violations) >= r.cfg.MaxViolations
	r.mtx.Unlock()

	if exceeded {
		r.Ban(pid)
	}
}

func (r *Router) publish(pid peer.ID, event eventbus.BusEvent) {
	if r.bus != nil {
		r.bus.Publish(eventbus.TopicConnEvent, pid, event)
	}
}

func (r *Router) setPeerHeight(pid peer.ID, height uint64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if e, ok := r.peers[pid]; ok {
		e.record.Height = height
	}
}

// seen reports whether code and body were dispatched before.
func (r *Router) seen(code uint32, body []byte) bool {
	var buf [4]byte
	buf[0], buf[1], buf[2], buf[3] = byte(code), byte(code>>8), byte(code>>16), byte(code>>24)
	key := crypto.DoubleHashH(append(buf[:], body...))
	found, _ := r.dedup.ContainsOrAdd(key, struct{}{})
	return found
}

// Send queues msg to pid.
func (r *Router) Send(pid peer.ID, code uint32, msg conv.Serializable) error {
	r.mtx.RLock()
	e, ok := r.peers[pid]
	var c *conn
	if ok {
		c = e.conn
	}
	r.mtx.RUnlock()
	if c == nil {
		return ErrPeerGone
	}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	return c.send(code, body)
}

// Broadcast queues msg to every connected peer not in exclude.
func (r *Router) Broadcast(code uint32, msg conv.Serializable, exclude map[peer.ID]struct{}) error {
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	data, err := newMessage(r.cfg.Magic, code, body).Marshal()
	if err != nil {
		return err
	}
	r.mtx.RLock()
	conns := make([]*conn, 0, len(r.peers))
	for pid, e := range r.peers {
		if e.conn == nil {
			continue
		}
		if _, skip := exclude[pid]; skip {
			continue
		}
		conns = append(conns, e.conn)
	}
	r.mtx.RUnlock()

	for _, c := range conns {
		if err := c.enqueue(data); err != nil {
			logger.Warnf("Failed to broadcast %#x to %s: %v", code, c.pid.Pretty(), err)
		}
	}
	return nil
}

// Subscribe adds an inbound message subscriber.
func (r *Router) Subscribe(notifiee *Notifiee) {
	r.notifier.Subscribe(notifiee)
}

// UnSubscribe removes a subscriber.
func (r *Router) UnSubscribe(notifiee *Notifiee) {
	r.notifier.UnSubscribe(notifiee)
}

// Peers returns snapshots of the connected peers.
func (r *Router) Peers() []PeerRecord {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	records := make([]PeerRecord, 0, len(r.peers))
	for _, e := range r.peers {
		if e.conn == nil {
			continue
		}
		records = append(records, e.record)
	}
	return records
}

// Record returns the record of pid, connected or not.
func (r *Router) Record(pid peer.ID) (PeerRecord, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if e, ok := r.peers[pid]; ok {
		return e.record, true
	}
	return PeerRecord{}, false
}

// maintain dials known addresses while below MinPeers.
func (r *Router) maintain(p goprocess.Process) {
	ticker := time.NewTicker(r.cfg.MaintainPeriod)
	defer ticker.Stop()
	ctx := goprocessctx.OnClosingContext(p)
	r.fill(ctx)
	for {
		select {
		case <-ticker.C:
			r.expireBans()
			r.fill(ctx)
		case <-p.Closing():
			logger.Info("Quit router maintenance loop.")
			return
		}
	}
}

func (r *Router) fill(ctx context.Context) {
	r.mtx.RLock()
	need := r.cfg.MinPeers - r.connectedLocked()
	r.mtx.RUnlock()
	if need <= 0 {
		return
	}
	self := r.ListenAddr()
	for _, addr := range r.addrs.candidates(time.Now(), func(addr string, pid peer.ID) bool {
		return addr == self || pid == r.ID() || r.skipDial(pid)
	}) {
		if need <= 0 || ctx.Err() != nil {
			return
		}
		if _, err := r.Connect(ctx, addr); err == nil {
			need--
		}
	}
}

// skipDial reports whether pid is connected or banned.
func (r *Router) skipDial(pid peer.ID) bool {
	if pid == "" {
		return false
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	e, ok := r.peers[pid]
	if !ok {
		return false
	}
	return e.conn != nil || r.banned(e, time.Now())
}

func (r *Router) expireBans() {
	now := time.Now()
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, e := range r.peers {
		r.banned(e, now)
	}
}

func isClosing(p goprocess.Process) bool {
	select {
	case <-p.Closing():
		return true
	default:
		return false
	}
}
