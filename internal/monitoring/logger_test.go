package monitoring

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op; the previous logger must no longer fire
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}

func TestDiagf(t *testing.T) {
	defer SetDiagWriter(nil)

	var buf bytes.Buffer
	SetDiagWriter(&buf)
	Diagf("region %d: %s", 7, "volume failed")

	if !strings.Contains(buf.String(), "region 7: volume failed") {
		t.Errorf("Diag output = %q, want to contain the message", buf.String())
	}

	buf.Reset()
	SetDiagWriter(nil)
	Diagf("should not appear")
	if buf.Len() > 0 {
		t.Errorf("Diag output after disabling = %q, want empty", buf.String())
	}
}
