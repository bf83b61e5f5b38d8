package gameserver

import (
	"fmt"

	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

// gatherChance: each attempt succeeds 1 time in gatherChance.
const gatherChance = 6

// canGather checks the tool prerequisite for a node, logging to the client
// when it is missing.
func (w *World) canGather(c *Conn, nodeType model.Typename) bool {
	tool := nodeType.RequiredTool()
	if tool == "" {
		return false
	}
	if !c.inventory.Holds(tool) {
		c.Queue(packet.ServerLog{Text: fmt.Sprintf("You do not have a %s.", tool)})
		return false
	}
	return true
}

// startGather arms the repeating gather loop against a node instance,
// replacing any loop already running.
func (w *World) startGather(c *Conn, inst *model.Instance) {
	node, err := w.store.NodeByEntity(w.ctx, inst.Entity.ID)
	if err != nil {
		w.log.Error("resolving resource node", "entity", inst.Entity.ID, "error", err)
		return
	}

	if !w.canGather(c, inst.Entity.Typename) {
		return
	}

	switch inst.Entity.Typename {
	case model.TypeOreNode:
		c.Queue(packet.ServerLog{Text: "You begin to mine at the rocks."})
	case model.TypeTreeNode:
		c.Queue(packet.ServerLog{Text: "You begin to chop at the tree."})
	}

	w.cancelAction(c)
	c.action = w.sched.Every(int64(w.cfg.TickRate), c.id, func() bool {
		return w.attemptGather(c, inst, node)
	})
}

// attemptGather is one iteration of the gather loop. Returning false stops
// the loop.
func (w *World) attemptGather(c *Conn, inst *model.Instance, node *model.ResourceNode) bool {
	// another connection may have harvested the node first
	if !inst.Alive() {
		return false
	}
	if !w.canGather(c, inst.Entity.Typename) {
		return false
	}

	if w.rng.Intn(gatherChance) != 0 {
		c.Queue(packet.ServerLog{Text: "You continue gathering."})
		return true
	}

	drops, err := w.store.DropTableItems(w.ctx, node.DropTableID)
	if err != nil {
		w.log.Error("loading drop table", "droptable", node.DropTableID, "error", err)
		return false
	}
	for _, d := range drops {
		if w.rng.Int63n(d.Chance) != 0 {
			continue
		}
		amt := d.MinAmt + w.rng.Int63n(d.MaxAmt-d.MinAmt+1)
		w.creditInventory(c, d.Item, amt)
		c.Queue(packet.ServerLog{Text: fmt.Sprintf("You acquire %d %s.", amt, d.Item.Entity.Name)})
	}

	w.killInstance(inst)
	return false
}

// killInstance takes an instance out of play: Goodbye to the whole room,
// then either park it for respawn or remove it for good.
func (w *World) killInstance(inst *model.Instance) {
	w.deliverRoom(inst.RoomID, packet.Goodbye{InstanceID: inst.ID}, nil)

	if inst.RespawnTime > 0 {
		inst.BeginRespawn()
		w.sched.Once(int64(w.cfg.TickRate)*inst.RespawnTime, 0, func() {
			inst.CompleteRespawn()
			w.recomputeRoom(inst.RoomID)
		})
		return
	}

	delete(w.live[inst.RoomID], inst.ID)
	if inst.ID > 0 {
		if err := w.store.DeleteInstance(w.ctx, inst.ID); err != nil {
			w.log.Error("deleting instance", "instance", inst.ID, "error", err)
		}
	}
}
