package server

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// submitGate enforces a minimum interval between accepted submissions per
// client. Idle clients expire from memory after one interval.
type submitGate struct {
	interval time.Duration
	clients  *gocache.Cache
}

func newSubmitGate(interval time.Duration) *submitGate {
	g := &submitGate{interval: interval}
	if interval > 0 {
		g.clients = gocache.New(interval, 2*interval)
	}
	return g
}

func (g *submitGate) allow(client string) bool {
	if g.interval <= 0 {
		return true
	}

	limiter := rate.NewLimiter(rate.Every(g.interval), 1)
	if err := g.clients.Add(client, limiter, gocache.DefaultExpiration); err != nil {
		// Existing client
		if existing, found := g.clients.Get(client); found {
			limiter = existing.(*rate.Limiter)
		}
	}
	return limiter.Allow()
}
