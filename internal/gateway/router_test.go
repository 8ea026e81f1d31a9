package gateway

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestBackpressureMiddlewareRejectsBeyondLimit(t *testing.T) {
	release := make(chan struct{})
	blocking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	})

	mw := backpressureMiddleware(1)
	handler := mw(blocking)

	var wg sync.WaitGroup
	admitted := httptest.NewRecorder()
	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.ServeHTTP(admitted, httptest.NewRequest(http.MethodPost, "/classify", nil))
	}()

	// give the first request a moment to occupy the single slot.
	time.Sleep(20 * time.Millisecond)

	rejected := httptest.NewRecorder()
	handler.ServeHTTP(rejected, httptest.NewRequest(http.MethodPost, "/classify", nil))

	if rejected.Code != http.StatusServiceUnavailable {
		t.Errorf("rejected status = %d, want %d", rejected.Code, http.StatusServiceUnavailable)
	}

	close(release)
	wg.Wait()

	if admitted.Code != http.StatusOK {
		t.Errorf("admitted status = %d, want %d", admitted.Code, http.StatusOK)
	}
}

func TestBackpressureMiddlewareAdmitsAfterRelease(t *testing.T) {
	mw := backpressureMiddleware(1)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/classify", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}
