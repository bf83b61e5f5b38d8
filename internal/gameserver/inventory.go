package gameserver

import (
	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

// despawnDelaySecs is how long a dropped item survives on the floor.
const despawnDelaySecs = 120

// creditInventory adds amt of item to c's inventory under the stacking
// rule, persists the touched rows and pushes an InventoryItem model per
// row. Returns the amount that did not fit; a nonzero leftover has already
// produced the inventory-full Deny.
func (w *World) creditInventory(c *Conn, item *model.Item, amt int64) int64 {
	updated, created, leftover := c.inventory.Add(item, amt)

	for _, row := range updated {
		if err := w.store.UpdateInventoryItem(w.ctx, row); err != nil {
			w.log.Error("updating inventory row", "row", row.ID, "error", err)
		}
		c.Queue(packet.ServerModel{TypeTag: "InventoryItem", Model: row.Dict()})
	}
	for _, row := range created {
		if err := w.store.CreateInventoryItem(w.ctx, row); err != nil {
			w.log.Error("creating inventory row", "player", row.PlayerID, "error", err)
		}
		c.Queue(packet.ServerModel{TypeTag: "InventoryItem", Model: row.Dict()})
	}

	if leftover > 0 {
		c.Queue(packet.Deny{Reason: "Your inventory is full"})
	}
	return leftover
}

// grabItem picks up the first grabbable instance sharing the avatar's tile.
func (w *World) grabItem(c *Conn) {
	w.cancelAction(c)

	for _, inst := range snapshotVisible(c) {
		if !inst.Entity.Typename.Grabbable() || !inst.At(c.instance.Y, c.instance.X) {
			continue
		}

		item, err := w.store.ItemByEntity(w.ctx, inst.Entity.ID)
		if err != nil {
			w.log.Error("resolving floor item", "entity", inst.Entity.ID, "error", err)
			return
		}

		leftover := w.creditInventory(c, item, inst.Amount)
		if leftover > 0 {
			inst.Amount = leftover
			w.saveInstance(inst)
		} else {
			w.killInstance(inst)
		}
		return
	}

	c.Queue(packet.Deny{Reason: "There is no item here."})
}

// dropItem deletes the referenced inventory row and places its full amount
// on the avatar's tile as a transient world instance with a despawn timer.
func (w *World) dropItem(c *Conn, inventoryItemID int64) {
	w.cancelAction(c)

	row := c.inventory.Remove(inventoryItemID)
	if row == nil {
		c.Queue(packet.Deny{Reason: "You don't have that item."})
		return
	}
	if err := w.store.DeleteInventoryItem(w.ctx, row.ID); err != nil {
		w.log.Error("deleting inventory row", "row", row.ID, "error", err)
	}

	inst := &model.Instance{
		ID:     w.allocDropID(),
		Entity: row.Item.Entity,
		RoomID: c.instance.RoomID,
		Y:      c.instance.Y,
		X:      c.instance.X,
		Amount: row.Amount,
	}
	w.live[inst.RoomID][inst.ID] = inst

	w.sched.Once(int64(w.cfg.TickRate)*despawnDelaySecs, 0, func() {
		w.despawnInstance(inst)
	})

	w.recomputeRoom(inst.RoomID)
}

// despawnInstance removes a dropped item that nobody picked up.
func (w *World) despawnInstance(inst *model.Instance) {
	room, ok := w.live[inst.RoomID]
	if !ok {
		return
	}
	if _, present := room[inst.ID]; !present {
		return // already picked up
	}
	delete(room, inst.ID)
	w.deliverRoom(inst.RoomID, packet.Goodbye{InstanceID: inst.ID}, nil)
}
