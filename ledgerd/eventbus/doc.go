// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package eventbus is the in-process pub/sub used between ledgerd services.

Handlers are plain functions subscribed to a topic; published arguments are
passed to them by reflection, so the handler signature must match what the
publisher sends for that topic:

	bus.Subscribe(eventbus.TopicChainUpdate, func(msg *chain.UpdateMsg) {
		...
	})
	bus.Publish(eventbus.TopicChainUpdate, &chain.UpdateMsg{...})

Synchronous handlers run on the publisher goroutine and must not block.
Async handlers run on their own goroutine; transactional async handlers
run one at a time in publish order. WaitAsync waits for all in-flight async
handlers, which the node does on shutdown.
*/
package eventbus
