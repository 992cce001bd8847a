// Package di provides a small typed service container used to wire the
// bounded-context modules together at startup. Registration happens before
// any request is dispatched; lookups afterwards are read-only.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns a service registered under name, resolving a factory on
	// first use. Panics if the name is unknown; wiring bugs are fatal.
	Get(name string) interface{}
}

// Container is the write side: services and factories are registered here
// during module setup.
type Container interface {
	ServiceRegistry
	Register(name string, service interface{})
	RegisterFactory(name string, factory func(ServiceRegistry) interface{})
}

type container struct {
	mu        sync.Mutex
	services  map[string]interface{}
	factories map[string]func(ServiceRegistry) interface{}
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		services:  make(map[string]interface{}),
		factories: make(map[string]func(ServiceRegistry) interface{}),
	}
}

func (c *container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.services[name]; dup {
		panic(fmt.Sprintf("di: service %q already registered", name))
	}
	c.services[name] = service
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.factories[name]; dup {
		panic(fmt.Sprintf("di: factory %q already registered", name))
	}
	c.factories[name] = factory
}

func (c *container) Get(name string) interface{} {
	c.mu.Lock()
	if svc, ok := c.services[name]; ok {
		c.mu.Unlock()
		return svc
	}
	factory, ok := c.factories[name]
	c.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("di: unknown service %q", name))
	}

	svc := factory(c)

	c.mu.Lock()
	// First resolution wins if two goroutines raced here.
	if cached, ok := c.services[name]; ok {
		c.mu.Unlock()
		return cached
	}
	c.services[name] = svc
	c.mu.Unlock()
	return svc
}
