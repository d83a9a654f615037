package main

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func orderedRecorder(name string, order *[]string, initErr error) *recordingService {
	return &recordingService{
		name: name,
		initHook: func(context.Context) error {
			*order = append(*order, name)
			return initErr
		},
	}
}

// Property: every registered service is retrievable by name and Get returns
// the exact registered instance.
func TestServiceRegistryRegistrationRetrievalProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 50).Draw(t, "serviceCount")

		log, _ := captureLog()
		reg := NewServiceRegistry(context.Background(), log)

		services := make([]*recordingService, count)
		for i := 0; i < count; i++ {
			name := fmt.Sprintf("svc-%d", i)
			svc := &recordingService{name: name}
			services[i] = svc

			if err := reg.Register(svc); err != nil {
				t.Fatalf("Register(%q) failed: %v", name, err)
			}
		}

		for i, svc := range services {
			name := fmt.Sprintf("svc-%d", i)
			got, ok := reg.Get(name)
			if !ok {
				t.Fatalf("Get(%q) returned false, expected service to be found", name)
			}
			if got != Service(svc) {
				t.Fatalf("Get(%q) returned different instance", name)
			}
		}

		if _, ok := reg.Get(fmt.Sprintf("svc-%d", count)); ok {
			t.Fatalf("Get for unregistered name should return false")
		}
	})
}

// Property: InitializeAll calls Initialize in registration order, so services
// registered first come up first.
func TestServiceRegistryInitializationOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 50).Draw(t, "serviceCount")

		log, _ := captureLog()
		reg := NewServiceRegistry(context.Background(), log)

		var initOrder []string
		names := make([]string, count)

		for i := 0; i < count; i++ {
			name := fmt.Sprintf("svc-%d", i)
			names[i] = name
			if err := reg.Register(orderedRecorder(name, &initOrder, nil)); err != nil {
				t.Fatalf("Register(%q) failed: %v", name, err)
			}
		}

		if err := reg.InitializeAll(); err != nil {
			t.Fatalf("InitializeAll failed: %v", err)
		}

		if len(initOrder) != count {
			t.Fatalf("expected %d initializations, got %d", count, len(initOrder))
		}
		for i, name := range names {
			if initOrder[i] != name {
				t.Fatalf("init order[%d] = %q, want %q", i, initOrder[i], name)
			}
		}
	})
}

// Property: any number of non-critical failures leaves InitializeAll
// successful with every service attempted, while a single critical failure
// aborts startup at that service.
func TestServiceRegistryDegradationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(2, 30).Draw(t, "serviceCount")
		failCount := rapid.IntRange(1, count).Draw(t, "failCount")

		log, _ := captureLog()
		reg := NewServiceRegistry(context.Background(), log)

		var initOrder []string
		failIndices := make(map[int]bool)
		for len(failIndices) < failCount {
			idx := rapid.IntRange(0, count-1).Draw(t, fmt.Sprintf("failIdx-%d", len(failIndices)))
			failIndices[idx] = true
		}

		for i := 0; i < count; i++ {
			name := fmt.Sprintf("svc-%d", i)
			var initErr error
			if failIndices[i] {
				initErr = fmt.Errorf("init error for %s", name)
			}
			if err := reg.Register(orderedRecorder(name, &initOrder, initErr)); err != nil {
				t.Fatalf("Register(%q) failed: %v", name, err)
			}
		}

		if err := reg.InitializeAll(); err != nil {
			t.Fatalf("InitializeAll should succeed with only non-critical failures, got: %v", err)
		}
		if len(initOrder) != count {
			t.Fatalf("expected %d init attempts, got %d", count, len(initOrder))
		}
	})

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(2, 30).Draw(t, "serviceCount")
		criticalIdx := rapid.IntRange(0, count-1).Draw(t, "criticalIdx")

		log, _ := captureLog()
		reg := NewServiceRegistry(context.Background(), log)

		var initOrder []string

		for i := 0; i < count; i++ {
			name := fmt.Sprintf("svc-%d", i)
			if i == criticalIdx {
				svc := orderedRecorder(name, &initOrder, fmt.Errorf("critical init error"))
				if err := reg.RegisterCritical(svc); err != nil {
					t.Fatalf("RegisterCritical(%q) failed: %v", name, err)
				}
			} else {
				if err := reg.Register(orderedRecorder(name, &initOrder, nil)); err != nil {
					t.Fatalf("Register(%q) failed: %v", name, err)
				}
			}
		}

		if err := reg.InitializeAll(); err == nil {
			t.Fatalf("InitializeAll should return error when critical service fails")
		}
		if len(initOrder) != criticalIdx+1 {
			t.Fatalf("expected %d init attempts (up to and including critical), got %d", criticalIdx+1, len(initOrder))
		}
	})
}

// Property: ShutdownAll invokes Shutdown in exact reverse registration order.
func TestServiceRegistryShutdownReverseOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 50).Draw(t, "serviceCount")

		log, _ := captureLog()
		reg := NewServiceRegistry(context.Background(), log)

		var shutdownOrder []string
		names := make([]string, count)

		for i := 0; i < count; i++ {
			name := fmt.Sprintf("svc-%d", i)
			names[i] = name
			n := name
			svc := &recordingService{
				name: n,
				stopHook: func() error {
					shutdownOrder = append(shutdownOrder, n)
					return nil
				},
			}
			if err := reg.Register(svc); err != nil {
				t.Fatalf("Register(%q) failed: %v", name, err)
			}
		}

		reg.ShutdownAll()

		if len(shutdownOrder) != count {
			t.Fatalf("expected %d shutdowns, got %d", count, len(shutdownOrder))
		}
		for i := 0; i < count; i++ {
			expected := names[count-1-i]
			if shutdownOrder[i] != expected {
				t.Fatalf("shutdown order[%d] = %q, want %q", i, shutdownOrder[i], expected)
			}
		}
	})
}
