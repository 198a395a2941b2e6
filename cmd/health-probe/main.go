// health-probe is a tiny sidecar that polls a marginalia server's /healthz
// and exposes the last observed status on its own port. Deployment systems
// that cannot reach the main listener directly probe this instead.
package main

import (
	"flag"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
)

func main() {
	addr := flag.String("addr", ":8089", "listen address for the probe")
	target := flag.String("target", "http://127.0.0.1:8080/healthz", "marginalia health endpoint to poll")
	interval := flag.Duration("interval", 5*time.Second, "poll interval")
	flag.Parse()

	var healthy atomic.Bool

	client := &fasthttp.Client{
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	go func() {
		for {
			code, _, err := client.GetTimeout(nil, *target, 3*time.Second)
			healthy.Store(err == nil && code == fasthttp.StatusOK)
			time.Sleep(*interval)
		}
	}()

	h := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/health", "/healthz":
			ctx.Response.Header.Set("Content-Type", "application/json")
			if healthy.Load() {
				ctx.SetStatusCode(fasthttp.StatusOK)
				_, _ = ctx.WriteString(`{"status":"ok"}`)
			} else {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				_, _ = ctx.WriteString(`{"status":"unreachable"}`)
			}
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}

	fmt.Printf("health probe listening on %s, watching %s\n", *addr, *target)
	srv := &fasthttp.Server{
		Handler:            h,
		Name:               "marginalia-health-probe",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Printf("health probe exit: %v\n", err)
	}
}
