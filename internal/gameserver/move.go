package gameserver

import (
	"errors"

	"github.com/moonvale/mud/internal/db"
	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

// move resolves one step of avatar movement: portal redirection first, then
// gathering triggers, then the placement check. Any pending gather loop is
// cancelled before the step resolves.
func (w *World) move(c *Conn, dy, dx int) {
	w.cancelAction(c)

	desiredY := c.instance.Y + dy
	desiredX := c.instance.X + dx

	// snapshot: handlers below may mutate the visible set
	for _, inst := range snapshotVisible(c) {
		switch {
		case inst.Entity.Typename == model.TypePortal && inst.At(desiredY, desiredX):
			portal, err := w.store.PortalByEntity(w.ctx, inst.Entity.ID)
			if err != nil {
				w.log.Error("resolving portal", "entity", inst.Entity.ID, "error", err)
				return
			}
			desiredY, desiredX = portal.LinkedY, portal.LinkedX
			if portal.LinkedRoomID != c.instance.RoomID {
				c.instance.Y, c.instance.X = desiredY, desiredX
				w.moveRooms(c, portal.LinkedRoomID)
				return
			}
		case inst.Entity.Typename.ResourceNode() && inst.At(desiredY, desiredX):
			w.startGather(c, inst)
			return
		}
	}

	if !c.roomMap.Passable(desiredY, desiredX) {
		c.Queue(packet.Deny{Reason: "Can't move there"})
		return
	}

	c.instance.Y, c.instance.X = desiredY, desiredX
	w.recomputeRoom(c.instance.RoomID)
}

// moveRooms relocates c's avatar to destRoomID and replays the room entry
// sequence: MoveRooms, Ok, the Room/Instance/Player models, the current
// weather, and (on first entry after login) the inventory. Ends in Play.
func (w *World) moveRooms(c *Conn, destRoomID int64) {
	room := w.roomByID(destRoomID)
	if room == nil {
		w.log.Error("move to unknown room", "room", destRoomID)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}
	rm, err := w.roomMapFor(destRoomID)
	if err != nil {
		w.log.Error("loading room map", "room", destRoomID, "error", err)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	if c.state == StatePlay {
		// leaving a room mid-session: tell the old room and forget its
		// contents so nothing follows us through the portal
		w.deliverRoom(c.instance.RoomID, packet.Goodbye{InstanceID: c.instance.ID}, c)
		c.visible = make(map[int64]*model.Instance)
	}

	c.Queue(packet.MoveRooms{RoomID: destRoomID})

	delete(w.live[c.instance.RoomID], c.instance.ID)
	c.instance.RoomID = destRoomID
	w.live[destRoomID][c.instance.ID] = c.instance
	c.roomMap = rm

	c.Queue(packet.Ok{})
	w.establishPlayerInRoom(c, room)
}

func (w *World) establishPlayerInRoom(c *Conn, room *model.Room) {
	c.Queue(packet.ServerModel{TypeTag: "Room", Model: room.Dict()})
	c.Queue(packet.ServerModel{TypeTag: "Instance", Model: c.instance.Dict()})
	c.Queue(packet.ServerModel{TypeTag: "Player", Model: model.PlayerDict(c.player, c.instance.Entity)})
	c.Queue(packet.WeatherChange{State: w.weather})

	if c.state == StateGetEntry {
		// only on initial login; room changes keep the client's inventory
		for _, row := range c.inventory.Rows() {
			c.Queue(packet.ServerModel{TypeTag: "InventoryItem", Model: row.Dict()})
		}
	}

	c.state = StatePlay
	w.deliverRoom(c.instance.RoomID, packet.ServerLog{Text: c.user.Username + " has arrived."}, c)
	w.recomputeRoom(c.instance.RoomID)
}

// cancelAction stops c's gather loop, if any.
func (w *World) cancelAction(c *Conn) {
	if c.action != nil {
		w.sched.Cancel(c.action)
		c.action = nil
	}
}

// snapshotVisible copies the visible set so callers can iterate while
// handlers mutate the original.
func snapshotVisible(c *Conn) []*model.Instance {
	out := make([]*model.Instance, 0, len(c.visible))
	for _, inst := range c.visible {
		out = append(out, inst)
	}
	return out
}

// saveInstance persists an instance position, tolerating transient rows.
func (w *World) saveInstance(in *model.Instance) {
	if in.ID <= 0 {
		return
	}
	if err := w.store.SaveInstance(w.ctx, in); err != nil && !errors.Is(err, db.ErrNotFound) {
		w.log.Error("saving instance", "instance", in.ID, "error", err)
	}
}
