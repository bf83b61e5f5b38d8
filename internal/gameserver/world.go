// Package gameserver owns the authoritative world: the tick driver, the
// per-connection session machines and the room-scoped spatial model.
package gameserver

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"math/rand"
	"time"

	"github.com/moonvale/mud/internal/config"
	"github.com/moonvale/mud/internal/crypto"
	"github.com/moonvale/mud/internal/db"
	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
	"github.com/moonvale/mud/internal/roommap"
	"github.com/moonvale/mud/internal/scheduler"
)

// weatherStates is the closed set the weather walk draws from.
var weatherStates = []string{"Clear", "Rain", "Storm"}

// World holds all mutable game state. Every field below joinCh is owned by
// the world thread: handlers, the scheduler and the view engine all run
// there, so none of it is locked.
type World struct {
	cfg   config.Server
	store db.Store
	keys  *crypto.KeyPair
	log   *slog.Logger

	joinCh chan *Conn

	ctx     context.Context
	sched   *scheduler.Scheduler
	rng     *rand.Rand
	tick    int64
	weather string

	rooms []*model.Room
	maps  map[int64]*roommap.Map
	// live instances per room, keyed by instance id
	live map[int64]map[int64]*model.Instance

	conns  map[int64]*Conn
	online map[int64]*Conn // player id -> connection

	nextDropID int64 // transient ids for dropped items, negative
}

// NewWorld loads rooms and instances from the store and returns a world
// ready to run.
func NewWorld(ctx context.Context, cfg config.Server, store db.Store, keys *crypto.KeyPair, log *slog.Logger) (*World, error) {
	w := &World{
		cfg:     cfg,
		store:   store,
		keys:    keys,
		log:     log,
		joinCh:  make(chan *Conn, 64),
		ctx:     ctx,
		sched:   scheduler.New(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		weather: weatherStates[0],
		maps:    make(map[int64]*roommap.Map),
		live:    make(map[int64]map[int64]*model.Instance),
		conns:   make(map[int64]*Conn),
		online:  make(map[int64]*Conn),
	}

	rooms, err := store.Rooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("no rooms in store; did migrations run?")
	}
	w.rooms = rooms
	for _, r := range rooms {
		w.live[r.ID] = make(map[int64]*model.Instance)
	}

	instances, err := store.Instances(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading instances: %w", err)
	}
	for _, in := range instances {
		room, ok := w.live[in.RoomID]
		if !ok {
			w.log.Warn("instance references unknown room, skipping",
				"instance", in.ID, "room", in.RoomID)
			continue
		}
		room[in.ID] = in
	}

	w.log.Info("world loaded", "rooms", len(rooms), "instances", len(instances))
	return w, nil
}

// Join hands a freshly accepted connection to the world thread. It enters
// play at the next tick boundary.
func (w *World) Join(c *Conn) {
	w.joinCh <- c
}

// Weather returns the current weather state.
func (w *World) Weather() string {
	return w.weather
}

func (w *World) serverKeyN() *big.Int {
	return w.keys.Public().N
}

func (w *World) serverKeyE() int64 {
	return int64(w.keys.Public().E)
}

func (w *World) roomByID(id int64) *model.Room {
	for _, r := range w.rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// roomMapFor loads and caches the tile grid for a room.
func (w *World) roomMapFor(roomID int64) (*roommap.Map, error) {
	if m, ok := w.maps[roomID]; ok {
		return m, nil
	}
	room := w.roomByID(roomID)
	if room == nil {
		return nil, fmt.Errorf("unknown room %d", roomID)
	}
	m, err := roommap.Load(w.cfg.MapsDir, room.FileName)
	if err != nil {
		return nil, err
	}
	w.maps[roomID] = m
	return m, nil
}

// connsInRoom returns every in-play connection whose avatar is in the room.
func (w *World) connsInRoom(roomID int64) []*Conn {
	var out []*Conn
	for _, c := range w.conns {
		if c.state == StatePlay && c.instance != nil && c.instance.RoomID == roomID {
			out = append(out, c)
		}
	}
	return out
}

// deliverRoom runs msg through the play-state dispatch of every connection
// in the room, mirroring how clients would receive a broadcast. Pass a
// non-nil except to skip the originator.
func (w *World) deliverRoom(roomID int64, msg packet.Message, except *Conn) {
	for _, c := range w.connsInRoom(roomID) {
		if c == except {
			continue
		}
		w.handlePlay(c, msg)
	}
}

// allocDropID returns a fresh transient id for a dropped-item instance.
// Negative so it can never collide with a persisted row.
func (w *World) allocDropID() int64 {
	w.nextDropID--
	return w.nextDropID
}

// instanceByEntity finds the live instance backed by the given entity, or
// nil.
func (w *World) instanceByEntity(entityID int64) *model.Instance {
	for _, room := range w.live {
		for _, in := range room {
			if in.Entity.ID == entityID {
				return in
			}
		}
	}
	return nil
}
