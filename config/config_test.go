package config

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		envAPIURL  string
		envBaseURL string
		envAuthKey string
		expected   *Config
	}{
		{
			"all values set",
			"https://tasks.example.com",
			"https://app.example.com",
			"s3cret",
			&Config{
				APIURL:  "https://tasks.example.com",
				BaseURL: "https://app.example.com",
				AuthKey: "s3cret",
			},
		},
		{
			"default API URL",
			"",
			"http://localhost:5000",
			"",
			&Config{
				APIURL:  "http://localhost:7991",
				BaseURL: "http://localhost:5000",
			},
		},
		{
			"surrounding whitespace is trimmed",
			"  http://localhost:7991  ",
			" http://localhost:5000 ",
			"",
			&Config{
				APIURL:  "http://localhost:7991",
				BaseURL: "http://localhost:5000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(apiURLEnv, tt.envAPIURL)
			t.Setenv(baseURLEnv, tt.envBaseURL)
			t.Setenv(authKeyEnv, tt.envAuthKey)

			got, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v, want nil", err)
			}

			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name        string
		envAPIURL   string
		envBaseURL  string
		expectedErr error
	}{
		{
			"missing base URL fails at load time",
			"http://localhost:7991",
			"",
			ErrBaseURLInvalid,
		},
		{
			"base URL with bad scheme",
			"http://localhost:7991",
			"ftp://app.example.com",
			ErrBaseURLInvalid,
		},
		{
			"API URL without host",
			"http://",
			"http://localhost:5000",
			ErrAPIURLInvalid,
		},
		{
			"API URL with bad scheme",
			"unix:///tmp/pt.sock",
			"http://localhost:5000",
			ErrAPIURLInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(apiURLEnv, tt.envAPIURL)
			t.Setenv(baseURLEnv, tt.envBaseURL)
			t.Setenv(authKeyEnv, "")

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}

			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.expectedErr)
			}
		})
	}
}

func TestValidateNilConfig(t *testing.T) {
	t.Parallel()

	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrAPIURLInvalid) {
		t.Errorf("Validate() on nil config = %v, want %v", err, ErrAPIURLInvalid)
	}
}
