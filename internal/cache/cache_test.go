package cache

import (
	"context"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	if _, ok := c.Get(ctx, "users:list:v1:page=1:limit=5"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Set(ctx, "users:list:v1:page=1:limit=5", []byte(`[]`))

	got, ok := c.Get(ctx, "users:list:v1:page=1:limit=5")
	if !ok || string(got) != "[]" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)
	c.ttl = time.Millisecond

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	c := New(0)

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Delete("a")
	c.Clear(ctx)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatalf("expected cleared cache")
	}
}

var _ Pages = (*Cache)(nil)
var _ Pages = (*Redis)(nil)
