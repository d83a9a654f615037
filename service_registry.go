package main

import (
	"context"
	"fmt"
	"sync"
)

// Service is the lifecycle interface every registered service implements.
type Service interface {
	// Name returns the service name, used for logging and error context.
	Name() string
	// Initialize prepares the service after all dependencies are injected.
	Initialize(ctx context.Context) error
	// Shutdown releases the service's resources.
	Shutdown() error
}

// serviceEntry is the registry's internal per-service metadata.
type serviceEntry struct {
	service  Service
	name     string
	critical bool // critical services block startup when initialization fails
}

// ServiceRegistry centrally manages all service instances.
type ServiceRegistry struct {
	ctx      context.Context
	logger   func(string)
	services []serviceEntry     // in registration order
	byName   map[string]Service // indexed by name
	mu       sync.RWMutex
}

// NewServiceRegistry creates an empty registry.
func NewServiceRegistry(ctx context.Context, logger func(string)) *ServiceRegistry {
	return &ServiceRegistry{
		ctx:      ctx,
		logger:   logger,
		services: make([]serviceEntry, 0),
		byName:   make(map[string]Service),
	}
}

// Register registers a non-critical service. Duplicate names are an error.
func (r *ServiceRegistry) Register(svc Service) error {
	return r.register(svc, false)
}

// RegisterCritical registers a critical service; if its initialization fails,
// application startup is aborted.
func (r *ServiceRegistry) RegisterCritical(svc Service) error {
	return r.register(svc, true)
}

func (r *ServiceRegistry) register(svc Service, critical bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := svc.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}
	r.services = append(r.services, serviceEntry{service: svc, name: name, critical: critical})
	r.byName[name] = svc
	return nil
}

// Get retrieves a registered service by name.
func (r *ServiceRegistry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.byName[name]
	return svc, ok
}

// InitializeAll initializes services in registration order, so dependencies
// registered first come up first. A critical service failure aborts startup;
// non-critical failures are logged and skipped.
func (r *ServiceRegistry) InitializeAll() error {
	r.mu.RLock()
	entries := make([]serviceEntry, len(r.services))
	copy(entries, r.services)
	r.mu.RUnlock()

	for _, e := range entries {
		if err := e.service.Initialize(r.ctx); err != nil {
			if e.critical {
				return WrapError(e.name, "Initialize", err)
			}
			r.log(fmt.Sprintf("Service %s failed to initialize, continuing degraded: %v", e.name, err))
		}
	}
	return nil
}

// ShutdownAll shuts services down in reverse registration order. Errors are
// logged, not propagated, so every service gets its chance to clean up.
func (r *ServiceRegistry) ShutdownAll() {
	r.mu.RLock()
	entries := make([]serviceEntry, len(r.services))
	copy(entries, r.services)
	r.mu.RUnlock()

	for i := len(entries) - 1; i >= 0; i-- {
		if err := entries[i].service.Shutdown(); err != nil {
			r.log(fmt.Sprintf("Service %s shutdown error: %v", entries[i].name, err))
		}
	}
}

func (r *ServiceRegistry) log(msg string) {
	if r.logger != nil {
		r.logger(msg)
	}
}
