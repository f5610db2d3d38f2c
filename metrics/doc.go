// Package metrics records request latencies in an HDR histogram so callers
// can read accurate percentiles for the requests a client has sent.
//
// Basic Usage:
//
//	rec := metrics.NewRecorder()
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithLatencyRecorder(rec),
//	)
//	// ... send requests ...
//	snap := rec.Snapshot()
//	fmt.Printf("p99: %v over %d requests\n", snap.P99, snap.Count)
//
// Thread Safety:
//
// Recorder is safe for concurrent use.
package metrics
