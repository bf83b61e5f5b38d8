package gameserver

import (
	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

// viewRadius is the half-width of the square window an avatar can see:
// 21x21 tiles centred on it.
const viewRadius = 10

// recomputeRoom refreshes the visible set of every connection in the room.
// Must be called whenever any avatar in the room moves, enters or leaves.
func (w *World) recomputeRoom(roomID int64) {
	for _, c := range w.connsInRoom(roomID) {
		w.recomputeView(c)
	}
}

// onlineInstanceIDs returns the ids of player instances with a live session.
func (w *World) onlineInstanceIDs() map[int64]bool {
	out := make(map[int64]bool, len(w.online))
	for _, c := range w.online {
		if c.instance != nil {
			out[c.instance.ID] = true
		}
	}
	return out
}

// recomputeView rebuilds c's visible set and queues the delta: Goodbye for
// everything that left the window, a full Instance model for everything now
// inside it (both newly entered and stayed).
func (w *World) recomputeView(c *Conn) {
	online := w.onlineInstanceIDs()

	curr := make(map[int64]*model.Instance)
	for id, inst := range w.live[c.instance.RoomID] {
		if inst == c.instance || !inst.Alive() {
			continue
		}
		if absInt(inst.Y-c.instance.Y) > viewRadius || absInt(inst.X-c.instance.X) > viewRadius {
			continue
		}
		// logged-out avatars stay in the world but out of everyone's view
		if inst.Entity.Typename == model.TypePlayer && !online[id] {
			continue
		}
		curr[id] = inst
	}

	for id := range c.visible {
		if _, ok := curr[id]; !ok {
			c.Queue(packet.Goodbye{InstanceID: id})
		}
	}
	for _, inst := range curr {
		c.Queue(packet.ServerModel{TypeTag: "Instance", Model: inst.Dict()})
	}

	c.visible = curr
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
