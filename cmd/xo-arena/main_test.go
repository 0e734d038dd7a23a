package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/park285/xo-arena/internal/arenabuilder"
	"github.com/park285/xo-arena/internal/config"
	"github.com/valyala/fasthttp"
)

const (
	childEnv    = "XO_ARENA_SHUTDOWN_CHILD"
	childAPIEnv = "XO_ARENA_SHUTDOWN_API"
	liveSession = "live-session"
)

func TestMain(m *testing.M) {
	if os.Getenv(childEnv) == "1" {
		os.Exit(runShutdownChild())
	}
	os.Exit(m.Run())
}

// runShutdownChild wires the client like main does, tracks a live session and
// waits for a shutdown signal.
func runShutdownChild() int {
	cfg, err := config.LoadFrom(map[string]string{
		"API_URL":      os.Getenv(childAPIEnv),
		"STORE_URL":    "memory://",
		"BEACON_GRACE": "3s",
		"LOG_TO_FILE":  "false",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	ctx, stop := notifyShutdown(context.Background())
	defer stop()

	deps, err := arenabuilder.New(ctx, cfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	deps.Guard.Track(liveSession)
	fmt.Println("ready")

	<-ctx.Done()
	deps.Shutdown()
	return 0
}

func TestShutdownSignalsSendEndNotice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX signals")
	}
	for _, sig := range []syscall.Signal{syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT} {
		t.Run(sig.String(), func(t *testing.T) {
			stops := make(chan string, 4)
			ln, err := net.Listen("tcp4", "127.0.0.1:0")
			if err != nil {
				t.Fatalf("listen: %v", err)
			}
			srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
				if string(ctx.Method()) == fasthttp.MethodPost && strings.HasSuffix(string(ctx.Path()), "/stop") {
					stops <- string(ctx.Path())
				}
				ctx.SetContentType("application/json")
				ctx.SetBodyString("{}")
			}}
			go func() { _ = srv.Serve(ln) }()
			defer func() { _ = srv.Shutdown() }()

			cmd := exec.Command(os.Args[0], "-test.run=^$")
			cmd.Env = append(os.Environ(), childEnv+"=1", childAPIEnv+"=http://"+ln.Addr().String())
			out, err := cmd.StdoutPipe()
			if err != nil {
				t.Fatalf("stdout pipe: %v", err)
			}
			if err := cmd.Start(); err != nil {
				t.Fatalf("start child: %v", err)
			}
			defer func() { _ = cmd.Process.Kill() }()

			ready := make(chan struct{})
			go func() {
				sc := bufio.NewScanner(out)
				for sc.Scan() {
					if sc.Text() == "ready" {
						close(ready)
						break
					}
				}
				for sc.Scan() {
				}
			}()
			select {
			case <-ready:
			case <-time.After(10 * time.Second):
				t.Fatalf("child never became ready")
			}

			if err := cmd.Process.Signal(sig); err != nil {
				t.Fatalf("signal: %v", err)
			}
			select {
			case path := <-stops:
				if path != "/api/session/"+liveSession+"/stop" {
					t.Fatalf("stop path = %q", path)
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("no end notice after %v", sig)
			}
			if err := cmd.Wait(); err != nil {
				t.Fatalf("child exit after %v: %v", sig, err)
			}
		})
	}
}
