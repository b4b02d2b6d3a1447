package main

import (
	"fmt"
	"html"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// crashRound tracks the state of the simulated game.
type crashRound struct {
	crashed   bool
	value     float64
	nextPhase time.Time
}

// advance moves the round forward when its phase has ended. A running round
// lasts 4-12 seconds, a crashed one is shown for 3 seconds.
func (r *crashRound) advance(now time.Time) {
	if now.Before(r.nextPhase) {
		return
	}
	if r.crashed {
		r.crashed = false
		r.nextPhase = now.Add(time.Duration(4+rand.Intn(9)) * time.Second)
		return
	}
	r.crashed = true
	// mostly low multipliers with an occasional long run
	r.value = 1 + rand.ExpFloat64()*1.5
	r.nextPhase = now.Add(3 * time.Second)
	slog.Info("round crashed", "value", fmt.Sprintf("%.2fx", r.value))
}

// StartMockCrashServer serves a server-rendered crash page on addr.
//
// The #crash-payout-text element reads "Crashed @ N.NNx" after each round
// and "Round in progress" while one is running. About one response in
// twenty omits the element to exercise the monitor's reload path.
// Call this in a goroutine before starting the monitor.
func StartMockCrashServer(addr string) {
	var (
		round = &crashRound{}
		mu    sync.Mutex
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		round.advance(time.Now())
		crashed, value := round.crashed, round.value
		mu.Unlock()

		text := "Round in progress"
		if crashed {
			text = fmt.Sprintf("Crashed @ %.2fx", value)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if rand.Intn(20) == 0 {
			fmt.Fprint(w, `<html><body><p>Loading...</p></body></html>`)
			return
		}
		fmt.Fprintf(w, `<html><body><div class="game"><span id="crash-payout-text">%s</span></div></body></html>`,
			html.EscapeString(text))
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
