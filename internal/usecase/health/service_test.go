package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(context.Context) error { return m.err }

func TestCheckAllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{}, &mockChecker{})

	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("Status = %s, want %s", report.Status, Healthy)
	}
	for _, name := range []string{"store", "text_encoder", "vision_encoder"} {
		if report.Checks[name] != CheckOK {
			t.Errorf("check %s = %s, want ok", name, report.Checks[name])
		}
	}
}

func TestCheckDegraded(t *testing.T) {
	tests := []struct {
		name    string
		store   error
		text    error
		vision  error
		failing string
	}{
		{name: "store down", store: errors.New("grpc unavailable"), failing: "store"},
		{name: "text encoder down", text: errors.New("http 503"), failing: "text_encoder"},
		{name: "vision encoder down", vision: errors.New("http 503"), failing: "vision_encoder"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(&mockPinger{err: tc.store}, &mockChecker{err: tc.text}, &mockChecker{err: tc.vision})

			report := svc.Check(context.Background())

			if report.Status != Degraded {
				t.Errorf("Status = %s, want degraded", report.Status)
			}
			if report.Checks[tc.failing] != CheckError {
				t.Errorf("check %s = %s, want error", tc.failing, report.Checks[tc.failing])
			}
		})
	}
}

func TestCheckNilEncoders(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)

	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("Status = %s, want ok", report.Status)
	}
	if len(report.Checks) != 1 {
		t.Errorf("checks = %v, want store only", report.Checks)
	}
}
