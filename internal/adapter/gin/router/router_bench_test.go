package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func BenchmarkGetUser(b *testing.B) {
	r := setupRouter(b)
	alice := signup(b, r, "alice", "alice@example.com", "secret1")
	path := "/api/v1/users/" + itoa(alice.ID)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusOK {
				b.Errorf("unexpected status %d", w.Code)
			}
		}
	})
}

func BenchmarkGetMe(b *testing.B) {
	r := setupRouter(b)
	signup(b, r, "alice", "alice@example.com", "secret1")
	token := login(b, r, "alice@example.com", "secret1")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}
