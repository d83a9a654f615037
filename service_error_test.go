package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestServiceErrorMessage(t *testing.T) {
	tests := []struct {
		name      string
		service   string
		operation string
		cause     string
		want      string
	}{
		{"upload failure", "TemplateFacadeService", "UploadTemplate", "not a zip package", "[TemplateFacadeService.UploadTemplate] not a zip package"},
		{"export failure", "ExportFacadeService", "ExportPresentation", "disk full", "[ExportFacadeService.ExportPresentation] disk full"},
		{"empty service", "", "SaveConfig", "permission denied", "[.SaveConfig] permission denied"},
		{"empty operation", "config", "", "timeout", "[config.] timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := &ServiceError{Service: tt.service, Operation: tt.operation, Err: fmt.Errorf("%s", tt.cause)}
			if got := se.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// A service error wrapping an operation error keeps the whole chain
// inspectable: errors.Is finds the root cause, errors.As recovers the
// ServiceError fields, and the message layers both contexts.
func TestServiceErrorChain(t *testing.T) {
	root := errors.New("record file missing")
	opErr := WrapOperationError("load template record", root)
	err := WrapError("TemplateFacadeService", "GetTemplate", opErr)

	if !errors.Is(err, root) {
		t.Error("errors.Is should reach the root cause through both wrappers")
	}

	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatal("errors.As should find *ServiceError")
	}
	if se.Service != "TemplateFacadeService" || se.Operation != "GetTemplate" {
		t.Errorf("ServiceError fields = %q.%q", se.Service, se.Operation)
	}
	if se.Unwrap() != opErr {
		t.Error("Unwrap should return the wrapped operation error")
	}

	want := "[TemplateFacadeService.GetTemplate] failed to load template record: record file missing"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapHelpersNilPassthrough(t *testing.T) {
	if WrapError("svc", "op", nil) != nil {
		t.Error("WrapError(nil) should return nil")
	}
	if WrapOperationError("anything", nil) != nil {
		t.Error("WrapOperationError(nil) should return nil")
	}
	if WrapOperationErrorf("load %s", nil, "x") != nil {
		t.Error("WrapOperationErrorf(nil) should return nil")
	}
}

func TestWrapOperationErrorfFormatsContext(t *testing.T) {
	root := errors.New("unexpected end of JSON input")
	err := WrapOperationErrorf("decode data values from %s as a JSON object", root, "values.json")

	want := "failed to decode data values from values.json as a JSON object: unexpected end of JSON input"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, root) {
		t.Error("errors.Is should find the wrapped cause")
	}
}
