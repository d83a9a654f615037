package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// recordingService implements Service with injectable hooks so tests can
// observe and steer lifecycle calls.
type recordingService struct {
	name     string
	initHook func(context.Context) error
	stopHook func() error
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Initialize(ctx context.Context) error {
	if s.initHook != nil {
		return s.initHook(ctx)
	}
	return nil
}

func (s *recordingService) Shutdown() error {
	if s.stopHook != nil {
		return s.stopHook()
	}
	return nil
}

// lifecycleRecorder appends "init:<name>" / "stop:<name>" events to a shared
// slice, optionally failing the given phase.
func lifecycleRecorder(name string, events *[]string, initErr, stopErr error) *recordingService {
	return &recordingService{
		name: name,
		initHook: func(context.Context) error {
			*events = append(*events, "init:"+name)
			return initErr
		},
		stopHook: func() error {
			*events = append(*events, "stop:"+name)
			return stopErr
		},
	}
}

func captureLog() (func(string), *[]string) {
	var logs []string
	return func(msg string) { logs = append(logs, msg) }, &logs
}

func hasLogContaining(logs []string, fragments ...string) bool {
	for _, entry := range logs {
		ok := true
		for _, frag := range fragments {
			if !strings.Contains(entry, frag) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// The registry drives the same config -> template -> export sequence the app
// uses: init in registration order, shutdown reversed, instances retrievable
// by name.
func TestServiceRegistryStartupAndShutdownSequence(t *testing.T) {
	log, _ := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	var events []string
	configSvc := lifecycleRecorder("config", &events, nil, nil)
	templateSvc := lifecycleRecorder("template", &events, nil, nil)
	exportSvc := lifecycleRecorder("export", &events, nil, nil)

	if err := reg.RegisterCritical(configSvc); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCritical(templateSvc); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(exportSvc); err != nil {
		t.Fatal(err)
	}

	if err := reg.InitializeAll(); err != nil {
		t.Fatalf("InitializeAll failed: %v", err)
	}
	reg.ShutdownAll()

	want := []string{
		"init:config", "init:template", "init:export",
		"stop:export", "stop:template", "stop:config",
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}

	got, ok := reg.Get("template")
	if !ok {
		t.Fatal("Get(template) should find the service")
	}
	if got != Service(templateSvc) {
		t.Error("Get returned a different instance")
	}
}

func TestServiceRegistryRejectsDuplicateName(t *testing.T) {
	log, _ := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	if err := reg.Register(&recordingService{name: "store"}); err != nil {
		t.Fatal(err)
	}
	err := reg.RegisterCritical(&recordingService{name: "store"})
	if err == nil {
		t.Fatal("second registration under the same name should fail")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("error = %v", err)
	}
}

func TestServiceRegistryGetUnknownName(t *testing.T) {
	log, _ := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	if _, ok := reg.Get("no-such-service"); ok {
		t.Error("Get should report unknown names as not found")
	}
}

func TestServiceRegistryCriticalFailureAbortsStartup(t *testing.T) {
	log, _ := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	var events []string
	_ = reg.RegisterCritical(lifecycleRecorder("config", &events, nil, nil))
	_ = reg.RegisterCritical(lifecycleRecorder("template", &events, fmt.Errorf("no writable storage"), nil))
	_ = reg.Register(lifecycleRecorder("export", &events, nil, nil))

	err := reg.InitializeAll()
	if err == nil {
		t.Fatal("InitializeAll should fail when a critical service fails")
	}
	if !strings.Contains(err.Error(), "template") {
		t.Errorf("error should name the failing service: %v", err)
	}
	for _, e := range events {
		if e == "init:export" {
			t.Error("services after a failed critical service must not be initialized")
		}
	}
}

func TestServiceRegistryNonCriticalFailureDegrades(t *testing.T) {
	log, logs := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	var events []string
	_ = reg.RegisterCritical(lifecycleRecorder("config", &events, nil, nil))
	_ = reg.Register(lifecycleRecorder("export", &events, fmt.Errorf("export dir unavailable"), nil))
	_ = reg.Register(lifecycleRecorder("llm", &events, nil, nil))

	if err := reg.InitializeAll(); err != nil {
		t.Fatalf("non-critical failure must not abort startup: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("all services should be attempted, events = %v", events)
	}
	if !hasLogContaining(*logs, "export", "degraded") {
		t.Errorf("expected a degraded log entry for export, logs = %v", *logs)
	}
}

func TestServiceRegistryShutdownContinuesPastError(t *testing.T) {
	log, logs := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	var events []string
	_ = reg.Register(lifecycleRecorder("config", &events, nil, nil))
	_ = reg.Register(lifecycleRecorder("template", &events, nil, fmt.Errorf("workdir locked")))
	_ = reg.Register(lifecycleRecorder("export", &events, nil, nil))

	reg.ShutdownAll()

	stops := 0
	for _, e := range events {
		if strings.HasPrefix(e, "stop:") {
			stops++
		}
	}
	if stops != 3 {
		t.Errorf("every service should be shut down despite errors, events = %v", events)
	}
	if !hasLogContaining(*logs, "template", "workdir locked") {
		t.Errorf("shutdown error should be logged, logs = %v", *logs)
	}
}

func TestServiceRegistryConcurrentLookup(t *testing.T) {
	log, _ := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	svc := &recordingService{name: "shared"}
	_ = reg.Register(svc)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := reg.Get("shared")
			if !ok || got != Service(svc) {
				t.Error("concurrent Get returned wrong result")
			}
		}()
	}
	wg.Wait()
}

// The real facade services run through the registry the same way App.Startup
// wires them.
func TestServiceRegistryRunsFacadeLifecycle(t *testing.T) {
	cs := newTestConfigService(t)
	log, _ := captureLog()
	reg := NewServiceRegistry(context.Background(), log)

	ts := NewTemplateFacadeService(cs, log)
	es := NewExportFacadeService(cs, log)

	if err := reg.RegisterCritical(cs); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCritical(ts); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(es); err != nil {
		t.Fatal(err)
	}
	if err := reg.InitializeAll(); err != nil {
		t.Fatalf("InitializeAll failed: %v", err)
	}

	for _, name := range []string{"config", "TemplateFacadeService", "ExportFacadeService"} {
		if _, ok := reg.Get(name); !ok {
			t.Errorf("Get(%q) should find the initialized service", name)
		}
	}

	templates, err := ts.ListTemplates()
	if err != nil {
		t.Fatalf("ListTemplates after registry init: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("fresh store should be empty, got %d templates", len(templates))
	}

	reg.ShutdownAll()
}
