package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Path: "threads", Message: "threads must be at least 1"}
	if err.Error() != "threads: threads must be at least 1" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Settings)
		wantPaths []string
	}{
		{"valid", func(s *Settings) {}, nil},
		{"zero experiments is valid", func(s *Settings) { s.TotalExperiments = 0 }, nil},
		{"missing base URL", func(s *Settings) { s.BaseURL = "" }, []string{"baseUrl"}},
		{"relative base URL", func(s *Settings) { s.BaseURL = "127.0.0.1:8080/api" }, []string{"baseUrl"}},
		{"no threads", func(s *Settings) { s.Threads = 0 }, []string{"threads"}},
		{"negative total", func(s *Settings) { s.TotalExperiments = -1 }, []string{"totalExperiments"}},
		{"missing input dir", func(s *Settings) { s.InputDir = "" }, []string{"inputDir"}},
		{"bad timeout", func(s *Settings) { s.Timeout = "later" }, []string{"timeout"}},
		{"negative timeout", func(s *Settings) { s.Timeout = "-5s" }, []string{"timeout"}},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }, []string{"logLevel"}},
		{"several problems", func(s *Settings) {
			s.Threads = -2
			s.InputDir = ""
		}, []string{"threads", "inputDir"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)

			errs := ValidateSettings(s)
			if len(errs) != len(tt.wantPaths) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantPaths), len(errs), errs)
			}
			for i, path := range tt.wantPaths {
				if errs[i].Path != path {
					t.Errorf("Error %d: expected path %s, got %s", i, path, errs[i].Path)
				}
			}
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	s := Default()
	s.Threads = 0
	s.BaseURL = ""

	err := s.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(verrs))
	}
	if !strings.Contains(err.Error(), "baseUrl: baseUrl is required") || !strings.Contains(err.Error(), "threads:") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
