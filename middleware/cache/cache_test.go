package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/cache"
	"github.com/weaveframe/weave/weavetest"
)

func TestCache_HitAndMiss(t *testing.T) {
	s := weave.New()
	s.Use(cache.New())

	var counter int
	s.Get("/v1/test", func(req *weave.Request) (*weave.Response, error) {
		counter++
		return weave.NewResponse(200).SendString(fmt.Sprintf("response #%d", counter)), nil
	})

	first, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := first.AssertHeader("X-Cache-Status", "MISS"); err != nil {
		t.Error(err)
	}
	if counter != 1 {
		t.Fatalf("expected handler to run once, ran %d times", counter)
	}

	second, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := second.AssertHeader("X-Cache-Status", "HIT"); err != nil {
		t.Error(err)
	}
	if second.BodyStr() != first.BodyStr() {
		t.Errorf("expected cached body to match first response, got %q vs %q", second.BodyStr(), first.BodyStr())
	}
	if counter != 1 {
		t.Errorf("expected handler not to run again on cache hit, ran %d times", counter)
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	s := weave.New()
	s.Use(cache.New(cache.Config{Expiration: 50 * time.Millisecond}))

	var counter int
	s.Get("/v1/test", func(req *weave.Request) (*weave.Response, error) {
		counter++
		return weave.NewResponse(200).SendString(fmt.Sprintf("response #%d", counter)), nil
	})

	if _, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/test"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertHeader("X-Cache-Status", "MISS"); err != nil {
		t.Error(err)
	}
	if counter != 2 {
		t.Errorf("expected handler to re-run after expiration, ran %d times", counter)
	}
}

func TestCache_NoCacheHeaderBypasses(t *testing.T) {
	s := weave.New()
	s.Use(cache.New())

	var counter int
	s.Get("/v1/test", func(req *weave.Request) (*weave.Response, error) {
		counter++
		return weave.NewResponse(200).SendString("ok"), nil
	})

	if _, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/test"}); err != nil {
		t.Fatal(err)
	}

	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/v1/test",
		Headers: map[string]string{"Cache-Control": "no-cache"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertHeader("X-Cache-Status", "BYPASS"); err != nil {
		t.Error(err)
	}
	if counter != 2 {
		t.Errorf("expected handler to run again on bypass, ran %d times", counter)
	}
}

func TestCache_NonCacheableMethodPassesThrough(t *testing.T) {
	s := weave.New()
	s.Use(cache.New())
	s.Post("/v1/test", func(req *weave.Request) (*weave.Response, error) {
		return weave.NewResponse(200).SendString("posted"), nil
	})

	res, err := weavetest.Do(s, weavetest.Options{Method: "POST", URI: "/v1/test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertHeader("X-Cache-Status", ""); err != nil {
		t.Error(err)
	}
}
