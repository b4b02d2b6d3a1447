// Standalone mock crash page for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/crashwatch run -c example/config.yaml
package main

import (
	"flag"
	"fmt"
	"html"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	flag.Parse()

	fmt.Printf("Mock crash page starting on %s/crash\n", *addr)
	fmt.Println("Rounds run for 4-12s, then show \"Crashed @ N.NNx\" for 3s")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu        sync.Mutex
		crashed   bool
		value     float64
		nextPhase time.Time
	)

	http.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if now := time.Now(); !now.Before(nextPhase) {
			if crashed {
				crashed = false
				nextPhase = now.Add(time.Duration(4+rand.Intn(9)) * time.Second)
			} else {
				crashed = true
				value = 1 + rand.ExpFloat64()*1.5
				nextPhase = now.Add(3 * time.Second)
				slog.Info("round crashed", "value", fmt.Sprintf("%.2fx", value))
			}
		}
		text := "Round in progress"
		if crashed {
			text = fmt.Sprintf("Crashed @ %.2fx", value)
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><span id="crash-payout-text">%s</span></body></html>`, html.EscapeString(text))
	})

	if err := http.ListenAndServe(*addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
		os.Exit(1)
	}
}
