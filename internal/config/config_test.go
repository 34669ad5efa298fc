package config

import (
	"reflect"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "LINKSAVER_TEST_VAR",
			value:     "test_value",
			shouldSet: true,
		},
		{
			name:      "variable not set",
			key:       "LINKSAVER_TEST_VAR_MISSING",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{"valid duration", "90s", time.Second, 90 * time.Second},
		{"invalid falls back", "soon", 2 * time.Second, 2 * time.Second},
		{"unset falls back", "", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "LINKSAVER_TEST_DURATION"
			if tt.value != "" {
				t.Setenv(key, tt.value)
			}
			if got := mustDuration(key, tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{"true", "true", false, true},
		{"numeric false", "0", true, false},
		{"garbage falls back", "maybe", true, true},
		{"unset falls back", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "LINKSAVER_TEST_BOOL"
			if tt.value != "" {
				t.Setenv(key, tt.value)
			}
			if got := mustBool(key, tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a.com", []string{"a.com"}},
		{` a.com , "b.com",, 'c.com' `, []string{"a.com", "b.com", "c.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := splitAndTrim(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://user:secret@db:5432/links", "postgres://***@db:5432/links"},
		{"file:linksaver.db", "file:linksaver.db"},
		{"postgres://db/links", "postgres://db/links"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := redactDSN(tt.in); got != tt.want {
				t.Errorf("redactDSN(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LINKSAVER_AUTH_SECRET", "s3cret")
	t.Setenv("LINKSAVER_STORE", "memory")
	// keep a developer .env from leaking into the assertions
	t.Chdir(t.TempDir())

	cfg := Load()

	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %v, want %v", cfg.StoreBackend, BackendMemory)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
	}
	if cfg.ReaderTimeout != 60*time.Second {
		t.Errorf("ReaderTimeout = %v, want 60s", cfg.ReaderTimeout)
	}
	if cfg.ReaderAttempts != 2 {
		t.Errorf("ReaderAttempts = %v, want 2", cfg.ReaderAttempts)
	}
	if cfg.ReaderRetryDelay != 2*time.Second {
		t.Errorf("ReaderRetryDelay = %v, want 2s", cfg.ReaderRetryDelay)
	}
	if cfg.ReaderBaseURL != "https://r.jina.ai/" {
		t.Errorf("ReaderBaseURL = %v, want https://r.jina.ai/", cfg.ReaderBaseURL)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %v, want empty for memory backend", cfg.RedisAddr)
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"LINKSAVER_STORE": "memory"}},
		{"unknown backend", map[string]string{"LINKSAVER_AUTH_SECRET": "x", "LINKSAVER_STORE": "mongo"}},
		{"redis without addr", map[string]string{"LINKSAVER_AUTH_SECRET": "x", "LINKSAVER_STORE": "redis"}},
		{"zero reader attempts", map[string]string{"LINKSAVER_AUTH_SECRET": "x", "LINKSAVER_STORE": "memory", "LINKSAVER_READER_ATTEMPTS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("LINKSAVER_AUTH_SECRET", "")
			t.Setenv("LINKSAVER_REDIS_ADDR", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			Load()
		})
	}
}
