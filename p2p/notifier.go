// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"sync"

	"github.com/jbenet/goprocess"
)

const notifierChSize = 65536

// Notifier dispatches inbound messages to subscribers in arrival order.
type Notifier struct {
	mtx       sync.RWMutex
	notifiees map[uint32][]*Notifiee
	proc      goprocess.Process
	receiveCh chan Message
}

// Notifiee represent message receiver.
type Notifiee struct {
	code      uint32
	messageCh chan Message
}

// NewNotifier new a notifier
func NewNotifier() *Notifier {
	return &Notifier{
		notifiees: make(map[uint32][]*Notifiee),
		receiveCh: make(chan Message, notifierChSize),
	}
}

// NewNotifiee return a message notifiee.
func NewNotifiee(code uint32, messageCh chan Message) *Notifiee {
	return &Notifiee{code: code, messageCh: messageCh}
}

// Subscribe adds notifiee; a code may have several.
func (notifier *Notifier) Subscribe(notifiee *Notifiee) {
	notifier.mtx.Lock()
	defer notifier.mtx.Unlock()
	notifier.notifiees[notifiee.code] = append(notifier.notifiees[notifiee.code], notifiee)
}

// UnSubscribe removes notifiee
func (notifier *Notifier) UnSubscribe(notifiee *Notifiee) {
	notifier.mtx.Lock()
	defer notifier.mtx.Unlock()
	list := notifier.notifiees[notifiee.code]
	for i, n := range list {
		if n == notifiee {
			notifier.notifiees[notifiee.code] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (notifier *Notifier) subscribers(code uint32) []*Notifiee {
	notifier.mtx.RLock()
	defer notifier.mtx.RUnlock()
	return notifier.notifiees[code]
}

// Loop handle notifiee message
func (notifier *Notifier) Loop(parent goprocess.Process) {
	notifier.proc = parent.Go(func(p goprocess.Process) {
		for {
			select {
			case msg := <-notifier.receiveCh:
				metricsRecieveChSizeGauge.Update(int64(len(notifier.receiveCh)))
				for _, notifiee := range notifier.subscribers(msg.Code()) {
					select {
					case notifiee.messageCh <- msg:
					case <-p.Closing():
						return
					}
				}
			case <-p.Closing():
				logger.Info("Quit notifier loop.")
				return
			}
		}
	})
}

// Notify queues msg for dispatch. It blocks while the queue is full.
func (notifier *Notifier) Notify(msg Message) {
	if notifier.proc == nil {
		notifier.receiveCh <- msg
		return
	}
	select {
	case notifier.receiveCh <- msg:
	case <-notifier.proc.Closing():
	}
}
