package gameserver

import (
	"context"
	"time"

	"github.com/moonvale/mud/internal/packet"
)

// Run drives the world at the configured tick rate until ctx is cancelled.
// This goroutine is the only mutator of world state.
func (w *World) Run(ctx context.Context) error {
	w.ctx = ctx
	w.scheduleWeather()

	interval := time.Second / time.Duration(w.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log.Info("world driver started", "tick_rate", w.cfg.TickRate)
	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return nil
		case <-ticker.C:
			w.drainJoins()
			w.Tick()
		}
	}
}

// Tick advances the world by one step: due deferred callbacks first, then
// one FSM advance per connection, then the self-sync sub-cadence, then the
// FIFO flush.
func (w *World) Tick() {
	w.tick++
	w.sched.RunDue(w.tick)

	for _, c := range w.connSnapshot() {
		if c.gone.Load() {
			w.drop(c)
			continue
		}
		if msg := c.takeInbound(); msg != nil {
			w.dispatch(c, msg)
		}
	}

	if w.cfg.SyncIntervalTicks > 0 && w.tick%int64(w.cfg.SyncIntervalTicks) == 0 {
		for _, c := range w.conns {
			if c.state == StatePlay {
				c.Queue(packet.ServerModel{TypeTag: "Instance", Model: c.instance.Dict()})
			}
		}
	}

	for _, c := range w.conns {
		c.Flush()
	}
}

// connSnapshot copies the connection set; dispatch may drop entries
// mid-iteration.
func (w *World) connSnapshot() []*Conn {
	out := make([]*Conn, 0, len(w.conns))
	for _, c := range w.conns {
		out = append(out, c)
	}
	return out
}

// drainJoins admits connections accepted since the last tick.
func (w *World) drainJoins() {
	for {
		select {
		case c := <-w.joinCh:
			w.conns[c.id] = c
		default:
			return
		}
	}
}

// drop finalises a connection whose transport died. Equivalent to an
// explicit logout followed by teardown.
func (w *World) drop(c *Conn) {
	if c.state == StatePlay {
		w.logout(c)
	}
	w.sched.CancelOwner(c.id)
	delete(w.conns, c.id)
	c.Close()
	w.log.Info("connection dropped", "conn", c.id)
}

// scheduleWeather arms the repeating weather walk.
func (w *World) scheduleWeather() {
	period := int64(w.cfg.WeatherPeriodSecs) * int64(w.cfg.TickRate)
	if period <= 0 {
		return
	}
	w.sched.Every(period, 0, func() bool {
		w.cycleWeather()
		return true
	})
}

// cycleWeather moves to a different weather state and tells every in-play
// connection.
func (w *World) cycleWeather() {
	next := w.weather
	for next == w.weather {
		next = weatherStates[w.rng.Intn(len(weatherStates))]
	}
	w.weather = next
	w.log.Info("weather changed", "state", next)

	for _, c := range w.conns {
		if c.state == StatePlay {
			c.Queue(packet.WeatherChange{State: next})
		}
	}
}

// shutdown persists every in-play avatar and closes all connections.
func (w *World) shutdown() {
	w.log.Info("world shutting down", "connections", len(w.conns))
	// the run context is already cancelled; saves get their own deadline
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w.ctx = ctx
	for _, c := range w.connSnapshot() {
		if c.state == StatePlay && c.instance != nil {
			w.saveInstance(c.instance)
		}
		c.Flush()
		c.Close()
		delete(w.conns, c.id)
	}
}
