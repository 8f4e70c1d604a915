// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eventbus

import (
	"fmt"
	"reflect"
	"sync"
)

// BusSubscriber defines subscription-related bus behavior
type BusSubscriber interface {
	Subscribe(topic string, fn interface{}) error
	SubscribeAsync(topic string, fn interface{}, transactional bool) error
	SubscribeOnce(topic string, fn interface{}) error
	Unsubscribe(topic string, handler interface{}) error
}

// BusPublisher defines publishing-related bus behavior
type BusPublisher interface {
	Publish(topic string, args ...interface{})
}

// BusController defines bus control behavior
type BusController interface {
	HasSubscriber(topic string) bool
	WaitAsync()
}

// Bus englobes global (subscribe, publish, control) bus behavior
type Bus interface {
	BusController
	BusSubscriber
	BusPublisher
}

// EventBus - box for handlers and callbacks.
type EventBus struct {
	handlers map[string][]*eventHandler
	lock     sync.Mutex

	wg sync.WaitGroup
}

type eventHandler struct {
	callBack      reflect.Value
	flagOnce      bool
	async         bool
	transactional bool
	sync.Mutex    // serializes transactional async callbacks
}

var defaultBus = New()

// Default returns the default EventBus.
func Default() Bus {
	return defaultBus
}

// New returns new EventBus with empty handlers.
func New() Bus {
	return &EventBus{
		handlers: make(map[string][]*eventHandler),
	}
}

func (bus *EventBus) doSubscribe(topic string, fn interface{}, handler *eventHandler) error {
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%s is not of type reflect.Func", reflect.TypeOf(fn).Kind())
	}
	bus.lock.Lock()
	defer bus.lock.Unlock()
	bus.handlers[topic] = append(bus.handlers[topic], handler)
	return nil
}

// Subscribe subscribes to a topic.
// Returns error if `fn` is not a function.
func (bus *EventBus) Subscribe(topic string, fn interface{}) error {
	return bus.doSubscribe(topic, fn, &eventHandler{callBack: reflect.ValueOf(fn)})
}

// SubscribeAsync subscribes to a topic with an asynchronous callback.
// Transactional determines whether subsequent callbacks for a topic are
// run serially (true) or concurrently (false).
func (bus *EventBus) SubscribeAsync(topic string, fn interface{}, transactional bool) error {
	return bus.doSubscribe(topic, fn, &eventHandler{
		callBack:      reflect.ValueOf(fn),
		async:         true,
		transactional: transactional,
	})
}

// SubscribeOnce subscribes to a topic once. Handler will be removed after executing.
func (bus *EventBus) SubscribeOnce(topic string, fn interface{}) error {
	return bus.doSubscribe(topic, fn, &eventHandler{callBack: reflect.ValueOf(fn), flagOnce: true})
}

// HasSubscriber returns true if exists any callback subscribed to the topic.
func (bus *EventBus) HasSubscriber(topic string) bool {
	bus.lock.Lock()
	defer bus.lock.Unlock()
	return len(bus.handlers[topic]) > 0
}

// Unsubscribe removes callback defined for a topic.
// Returns error if there are no callbacks subscribed to the topic.
func (bus *EventBus) Unsubscribe(topic string, handler interface{}) error {
	bus.lock.Lock()
	defer bus.lock.Unlock()
	if len(bus.handlers[topic]) == 0 {
		return fmt.Errorf("topic %s doesn't exist", topic)
	}
	bus.removeHandler(topic, reflect.ValueOf(handler))
	return nil
}

// Publish executes callbacks defined for a topic. Any additional argument
// will be transferred to the callback. Handlers may publish in turn.
func (bus *EventBus) Publish(topic string, args ...interface{}) {
	bus.lock.Lock()
	handlers := make([]*eventHandler, len(bus.handlers[topic]))
	copy(handlers, bus.handlers[topic])
	for _, handler := range handlers {
		if handler.flagOnce {
			bus.removeHandler(topic, handler.callBack)
		}
		if handler.async {
			bus.wg.Add(1)
		}
	}
	bus.lock.Unlock()

	passedArguments := setUpPublish(args...)
	for _, handler := range handlers {
		if !handler.async {
			handler.callBack.Call(passedArguments)
		} else {
			go bus.doPublishAsync(handler, passedArguments)
		}
	}
}

func (bus *EventBus) doPublishAsync(handler *eventHandler, args []reflect.Value) {
	defer bus.wg.Done()
	if handler.transactional {
		handler.Lock()
		defer handler.Unlock()
	}
	handler.callBack.Call(args)
}

func (bus *EventBus) removeHandler(topic string, callback reflect.Value) {
	handlers := bus.handlers[topic]
	kept := make([]*eventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h.callBack.Pointer() != callback.Pointer() {
			kept = append(kept, h)
		}
	}
	bus.handlers[topic] = kept
}

func setUpPublish(args ...interface{}) []reflect.Value {
	passedArguments := make([]reflect.Value, 0, len(args))
	for _, arg := range args {
		passedArguments = append(passedArguments, reflect.ValueOf(arg))
	}
	return passedArguments
}

// WaitAsync waits for all async callbacks to complete
func (bus *EventBus) WaitAsync() {
	bus.wg.Wait()
}
