// Command weaveserve is a minimal example binary exercising weave's
// testable scenarios end to end, in the vein of the teacher's own
// example/ programs: no CLI framework, just flag defaults and a
// couple of env overrides read through internal/envcfg.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/internal/envcfg"
)

func main() {
	var (
		addr = flag.String("addr", ":"+envcfg.Port("8080"), "address to listen on")
		scen = flag.String("scenario", envcfg.Scenario("A"), "which scenario to run: A-F")
	)
	flag.Parse()

	resolved := normalizeScenario(*scen)

	cfg := weave.Config{
		MaxBodySize:       2 * 1024 * 1024,
		MaxHeaderBytes:    1 * 1024 * 1024,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		HandlerTimeout:    30 * time.Second,
		AcceptQueueDepth:  1024,
		RefillEvery:       time.Millisecond,
		MaxAdmitWait:      2 * time.Second,
		ShutdownGrace:     5 * time.Second,
	}
	if resolved == "E" {
		// Reproduces spec.md §8 Scenario E: capacity 1, refill_every 1s,
		// max_wait 100ms — the second simultaneous connection is closed
		// with no response rather than queued.
		cfg.AcceptQueueDepth = 1
		cfg.RefillEvery = time.Second
		cfg.MaxAdmitWait = 100 * time.Millisecond
	}
	if resolved == "F" {
		cfg.ShutdownGrace = 5 * time.Second
	}

	s := weave.New(cfg)

	switch resolved {
	case "B":
		mountScenarioB(s)
	case "C":
		mountScenarioC(s)
	case "D":
		mountScenarioD(s)
	case "E":
		mountScenarioE(s)
	case "F":
		mountScenarioF(s)
	default:
		mountScenarioA(s)
	}

	if err := s.ListenAndServe(context.Background(), *addr); err != nil {
		log.Fatal(err)
	}
}

// normalizeScenario resolves an unrecognized SCENARIO value to "A"
// rather than erroring. Treated as intentional default-safe behavior
// (see DESIGN.md's resolution of this Open Question), not a typo guard.
func normalizeScenario(s string) string {
	switch s {
	case "A", "B", "C", "D", "E", "F":
		return s
	default:
		return "A"
	}
}

// Scenario A — static hello.
func mountScenarioA(s *weave.Server) {
	s.Get("/", func(req *weave.Request) (*weave.Response, error) {
		return weave.NewResponse(weave.StatusOK).SendString("hello world\n"), nil
	})
}

type scenarioBPath struct {
	A string `weave:"a"`
	B int64  `weave:"b"`
	C string `weave:"c"`
}

type scenarioBQuery struct {
	Q1 *string `weave:"q1"`
	Q2 *string `weave:"q2"`
	Q3 *int64  `weave:"q3"`
	Q4 *string `weave:"q4"`
	Q5 *string `weave:"q5"`
}

// Scenario B — typed path parameters and a nullable query record.
func mountScenarioB(s *weave.Server) {
	s.Get("/b/<a:str>/<b:int>/<c:str>", func(req *weave.Request) (*weave.Response, error) {
		var path scenarioBPath
		if err := weave.PathInto(req, &path); err != nil {
			return weave.NewResponse(weave.StatusBadRequest).JSON(map[string]any{
				"ok": false, "msg": err.Error(),
			})
		}
		var q scenarioBQuery
		if err := weave.QueryInto(req, &q); err != nil {
			return weave.NewResponse(weave.StatusBadRequest).JSON(map[string]any{
				"ok": false, "msg": err.Error(),
			})
		}
		return weave.NewResponse(weave.StatusOK).JSON(map[string]any{
			"a": path.A, "b": path.B, "c": path.C,
			"q":   q,
			"ok":  true,
			"msg": "ok",
		})
	})
}

// staticPayload is Scenario C's 1 KiB fixture body.
var staticPayload = func() []byte {
	b := make([]byte, 1024)
	for i := range b {
		b[i] = 'x'
	}
	return b
}()

var staticETag = fmt.Sprintf(`"%x"`, sha256.Sum256(staticPayload))

// Scenario C — conditional static content via ETag.
func mountScenarioC(s *weave.Server) {
	s.Get("/static", func(req *weave.Request) (*weave.Response, error) {
		resp := weave.NewResponse(weave.StatusOK)
		resp.Set("ETag", staticETag)
		if req.Header("If-None-Match") == staticETag {
			resp.SetStatus(weave.StatusNotModified)
			return resp, nil
		}
		resp.Set("Content-Type", "application/octet-stream")
		resp.Send(staticPayload)
		return resp, nil
	})
}

// Scenario D — middleware layering, logging hook enter/exit order.
func mountScenarioD(s *weave.Server) {
	logHook := func(name string) weave.Middleware {
		return func(next weave.Next) weave.Next {
			return func(req *weave.Request) (*weave.Response, error) {
				fmt.Printf("%s_enter\n", name)
				resp, err := next(req)
				fmt.Printf("%s_exit\n", name)
				return resp, err
			}
		}
	}

	s.Use(logHook("ROOT"))
	s.Get("/", func(req *weave.Request) (*weave.Response, error) {
		fmt.Println("H_root")
		return weave.NewResponse(weave.StatusOK).SendString("root\n"), nil
	})

	api := weave.NewRoute("api").Hook(logHook("API"))
	v1 := weave.NewRoute("v1").Hook(logHook("V1"))
	v1.Append(weave.NewRoute("hello").Get(func(req *weave.Request) (*weave.Response, error) {
		fmt.Println("H")
		return weave.NewResponse(weave.StatusOK).SendString("hello\n"), nil
	}))
	api.Append(v1)
	s.Mount(api)
}

// Scenario E — rate-limit rejection under a constrained admission budget.
// Run this scenario's server with AcceptQueueDepth 1 to reproduce the
// two-simultaneous-connections test from spec.md §8; the handler itself
// just sleeps long enough for the second connection to time out waiting
// on the admission controller.
func mountScenarioE(s *weave.Server) {
	s.Get("/slow", func(req *weave.Request) (*weave.Response, error) {
		select {
		case <-time.After(2 * time.Second):
		case <-req.Context().Done():
		}
		return weave.NewResponse(weave.StatusOK).SendString("done\n"), nil
	})
}

// Scenario F — graceful shutdown with a long-running handler.
func mountScenarioF(s *weave.Server) {
	s.Get("/slow", func(req *weave.Request) (*weave.Response, error) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-req.Context().Done():
		}
		return weave.NewResponse(weave.StatusOK).SendString("done\n"), nil
	})
}
