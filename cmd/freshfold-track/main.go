// README: CLI order tracker; polls one order until it reaches a terminal
// status or the user interrupts.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freshfold/client"
)

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "API base URL")
	token := flag.String("token", "", "Firebase ID token")
	orderID := flag.String("order", "", "order id to track")
	interval := flag.Duration("interval", client.DefaultPollInterval, "poll interval")
	flag.Parse()

	if *token == "" || *orderID == "" {
		log.Fatal("-token and -order are required")
	}

	api := client.New(*baseURL, *token)

	done := make(chan struct{})
	tracker := client.NewTracker(api, *interval, func(o client.Order) {
		log.Printf("order %s: status=%s updated=%s", o.ID, o.Status, o.UpdatedAt.Format(time.RFC3339))
		if o.IsTerminal() {
			close(done)
		}
	})
	tracker.Start(*orderID)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("interrupted; stopping tracker")
	case <-done:
		log.Println("order reached a terminal status")
	}
	tracker.StopAll()
}
