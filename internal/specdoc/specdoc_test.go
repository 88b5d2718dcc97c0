package specdoc

import "testing"

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		location string
		want     string
	}{
		{"explicit local", ProviderLocal, "https://x.example/spec.json", ProviderLocal},
		{"explicit r2", ProviderR2, "spec.json", ProviderR2},
		{"auto http url", ProviderAuto, "http://x.example/spec.json", ProviderRemote},
		{"auto https url", ProviderAuto, "https://x.example/spec.json", ProviderRemote},
		{"auto mixed case scheme", ProviderAuto, "HTTPS://x.example/spec.json", ProviderRemote},
		{"auto plain path", ProviderAuto, "web/static/demo.json", ProviderLocal},
		{"empty defaults to auto", "", "web/static/demo.json", ProviderLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Provider: tt.provider, Location: tt.location}
			if got := cfg.ResolveProvider(); got != tt.want {
				t.Errorf("ResolveProvider() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewSelectsSource(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		source, err := New(Config{Provider: ProviderLocal, Location: "spec.json", RootDir: t.TempDir()})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := source.(*LocalSource); !ok {
			t.Errorf("got %T, want *LocalSource", source)
		}
	})

	t.Run("remote", func(t *testing.T) {
		source, err := New(Config{Provider: ProviderAuto, Location: "https://x.example/spec.json"})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := source.(*RemoteSource); !ok {
			t.Errorf("got %T, want *RemoteSource", source)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if _, err := New(Config{Provider: "ftp", Location: "spec.json"}); err == nil {
			t.Error("expected an error for an unknown provider")
		}
	})
}
