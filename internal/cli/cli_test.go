package cli

import (
	"context"
	"testing"

	"github.com/fschmidt/virtualcv/pkg/cache"
	"github.com/fschmidt/virtualcv/pkg/config"
)

func TestSelectCacheUsesConfiguredDir(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	backend, err := selectCache(context.Background(), cfg)
	if err != nil {
		t.Fatalf("selectCache: %v", err)
	}
	if _, ok := backend.(*cache.FileCache); !ok {
		t.Errorf("backend = %T, want *cache.FileCache", backend)
	}
}

func TestSelectCacheDefaultsToCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	backend, err := selectCache(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("selectCache: %v", err)
	}
	if _, ok := backend.(*cache.FileCache); !ok {
		t.Errorf("backend = %T, want *cache.FileCache", backend)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := &CLI{}
	backend, err := c.newCache(context.Background(), true)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if _, ok := backend.(*cache.NullCache); !ok {
		t.Errorf("backend = %T, want *cache.NullCache", backend)
	}
}
