package testutils

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/phayes/freeport"
)

// TestOriginServer imitates the origin in tests and counts requests per "METHOD path".
type TestOriginServer struct {
	*http.ServeMux

	lock     sync.Mutex
	requests map[string]int
}

func NewTestOriginServer() *TestOriginServer {
	return &TestOriginServer{
		ServeMux: http.NewServeMux(),
		requests: make(map[string]int),
	}
}

func (s *TestOriginServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	s.requests[r.Method+" "+r.URL.Path]++
	s.lock.Unlock()

	s.ServeMux.ServeHTTP(w, r)
}

func (s *TestOriginServer) Requests(method, path string) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.requests[method+" "+path]
}

// Start returns the "host:port" the server is listening on.
func (s *TestOriginServer) Start(t *testing.T) string {
	port, err := freeport.GetFreePort()
	if err != nil {
		t.Fatalf("cannot start test origin server: %v", err)
	}

	addr := fmt.Sprintf("localhost:%d", port)
	srv := http.Server{
		Addr:    addr,
		Handler: s,
	}

	t.Cleanup(func() {
		srv.Close()
	})

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			t.Errorf("cannot start test origin server: %v", err)
		}
	}()

	waitForServer(t, addr)
	return addr
}

func waitForServer(t *testing.T, addr string) {
	backoff := 50 * time.Millisecond

	for i := 0; i < 10; i++ {
		conn, err := net.DialTimeout("tcp", addr, 1*time.Second)
		if err != nil {
			time.Sleep(backoff)
			continue
		}
		if err = conn.Close(); err != nil {
			t.Fatal(err)
		}
		return
	}

	t.Fatalf("origin server on %s not up after 10 attempts", addr)
}
