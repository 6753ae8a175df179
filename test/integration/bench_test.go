//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// Benchmark for GET /produtos; to run: go test -tags integration -bench=. ./test/integration -run ^$
func BenchmarkListProducts(b *testing.B) {
	u := baseURL()
	client := &http.Client{}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			resp, err := client.Get(u + "/produtos?order=asc")
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})
}
