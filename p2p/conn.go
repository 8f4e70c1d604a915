// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/p2p/pb"
	proto "github.com/gogo/protobuf/proto"
	"github.com/jbenet/goprocess"
	peer "github.com/libp2p/go-libp2p-peer"
	"golang.org/x/time/rate"
)

// OutboundQueueCap is the number of frames a peer may have waiting.
const OutboundQueueCap = 1024

// conn is an established connection to a remote peer. It owns one read
// loop, one write loop and one keepalive loop.
type conn struct {
	router   *Router
	stream   Stream
	pid      peer.ID
	addr     string
	inbound  bool
	outCh    chan []byte
	limiter  *rate.Limiter
	lastRecv int64
	proc     goprocess.Process
	once     sync.Once
}

func newConn(r *Router, s Stream, pid peer.ID, inbound bool) *conn {
	return &conn{
		router:   r,
		stream:   s,
		pid:      pid,
		inbound:  inbound,
		outCh:    make(chan []byte, OutboundQueueCap),
		limiter:  rate.NewLimiter(rate.Limit(r.cfg.PeerRate), r.cfg.PeerBurst),
		lastRecv: time.Now().UnixNano(),
		proc:     goprocess.WithParent(r.proc),
	}
}

// handshake exchanges Handshake messages. The write runs beside the read
// since a stream may not buffer.
func (c *conn) handshake(local *p2ppb.Handshake, timeout time.Duration) (*p2ppb.Handshake, error) {
	timer := time.AfterFunc(timeout, func() { c.stream.Close() })
	defer timer.Stop()

	body, err := proto.Marshal(local)
	if err != nil {
		return nil, err
	}
	data, err := newMessage(c.router.cfg.Magic, Handshake, body).Marshal()
	if err != nil {
		return nil, err
	}
	writeErr := make(chan error, 1)
	go func() {
		_, err := c.stream.Write(data)
		writeErr <- err
	}()

	msg, err := readMessageData(c.stream)
	if err != nil {
		return nil, ErrHandshake
	}
	if err := msg.check(c.router.cfg.Magic); err != nil {
		return nil, err
	}
	if msg.code != Handshake {
		return nil, ErrHandshake
	}
	remote := new(p2ppb.Handshake)
	if err := proto.Unmarshal(msg.body, remote); err != nil {
		return nil, ErrHandshake
	}
	if err := <-writeErr; err != nil {
		return nil, ErrHandshake
	}
	return remote, nil
}

// start spawns the connection loops.
func (c *conn) start() {
	c.proc.Go(c.readLoop)
	c.proc.Go(c.writeLoop)
	c.proc.Go(c.keepalive)
}

// close closes the stream and releases the loops. Safe to call from them.
func (c *conn) close() {
	c.once.Do(func() {
		c.stream.Close()
		go c.proc.Close()
	})
}

// enqueue queues a framed message without blocking.
func (c *conn) enqueue(data []byte) error {
	select {
	case c.outCh <- data:
		return nil
	default:
		metricsDroppedMeter.Mark(1)
		return ErrQueueFull
	}
}

func (c *conn) send(code uint32, body []byte) error {
	data, err := newMessage(c.router.cfg.Magic, code, body).Marshal()
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *conn) idle() time.Duration {
	return time.Since(time.Unix(0, atomic.LoadInt64(&c.lastRecv)))
}

func (c *conn) readLoop(p goprocess.Process) {
	defer c.router.dropConn(c)
	defer logger.Debugf("Quit conn read loop with %s", c.pid.Pretty())
	for {
		msg, err := readMessageData(c.stream)
		if err != nil {
			if err == ErrExceedMaxDataLength {
				c.router.violation(c.pid, eventbus.ProtocolViolationEvent, err)
			}
			return
		}
		atomic.StoreInt64(&c.lastRecv, time.Now().UnixNano())
		metricsReadMeter.Mark(int64(len(msg.body)))

		if err := msg.check(c.router.cfg.Magic); err != nil {
			c.router.violation(c.pid, eventbus.ProtocolViolationEvent, err)
			if err == ErrMagic {
				return
			}
			continue
		}
		if !c.limiter.Allow() || !c.router.limiter.Allow() {
			metricsDroppedMeter.Mark(1)
			c.router.violation(c.pid, eventbus.RateLimitEvent, nil)
			continue
		}
		c.handle(msg)
	}
}

func (c *conn) handle(msg *message) {
	switch msg.code {
	case Ping:
		if err := c.send(Pong, msg.body); err != nil {
			logger.Warnf("Failed to pong %s: %v", c.pid.Pretty(), err)
		}
		return
	case Pong:
		c.router.publish(c.pid, eventbus.HeartBeatEvent)
		return
	case Handshake:
		c.router.violation(c.pid, eventbus.ProtocolViolationEvent, ErrHandshake)
		return
	case HeightAnnouncement:
		ann := new(corepb.HeightAnnouncement)
		if err := proto.Unmarshal(msg.body, ann); err != nil {
			c.router.violation(c.pid, eventbus.ProtocolViolationEvent, err)
			return
		}
		c.router.setPeerHeight(c.pid, ann.Height)
	}
	if attributeOf(msg.code).dedup && c.router.seen(msg.code, msg.body) {
		metricsDuplicateMeter.Mark(1)
		return
	}
	c.router.notifier.Notify(NewMessage(msg.code, msg.body, c.pid))
}

func (c *conn) writeLoop(p goprocess.Process) {
	for {
		select {
		case data := <-c.outCh:
			if _, err := c.stream.Write(data); err != nil {
				logger.Debugf("Failed to write message to %s: %v", c.pid.Pretty(), err)
				c.stream.Close()
				return
			}
			metricsWriteMeter.Mark(int64(len(data)))
		case <-p.Closing():
			return
		}
	}
}

// keepalive pings the peer and closes the stream once it falls silent.
func (c *conn) keepalive(p goprocess.Process) {
	ticker := time.NewTicker(c.router.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if c.idle() > c.router.cfg.IdleTimeout {
				logger.Infof("Peer %s idle for %v, disconnecting", c.pid.Pretty(), c.idle())
				c.router.publish(c.pid, eventbus.NoHeartBeatEvent)
				c.stream.Close()
				return
			}
			body, _ := proto.Marshal(&p2ppb.Ping{Nonce: rand.Uint64()})
			if err := c.send(Ping, body); err != nil {
				logger.Warnf("Failed to ping %s: %v", c.pid.Pretty(), err)
			}
		case <-p.Closing():
			c.stream.Close()
			return
		}
	}
}

// genesisMatches compares handshake genesis hashes.
func genesisMatches(local, remote []byte) bool {
	return bytes.Equal(local, remote)
}
