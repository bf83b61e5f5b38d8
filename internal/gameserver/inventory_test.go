package gameserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

func TestGrabWithNoItemHere(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	c := f.login("ada")

	f.w.dispatch(c, packet.GrabItem{})
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, packet.Deny{Reason: "There is no item here."}, msgs[0])
}

func TestGrabItemCreditsInventoryAndRetiresInstance(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	inst := f.seedFloorItem(model.TypeOre, "Iron Ore", 50, 3, forestID, 0, 0, 0)

	c := f.login("ada")
	f.reach(c, 0, 0)

	f.w.dispatch(c, packet.GrabItem{})
	msgs := drain(c)

	rowModel := firstOfKind(msgs, packet.KindServerModel)
	require.NotNil(t, rowModel)
	sm := rowModel.(packet.ServerModel)
	assert.Equal(t, "InventoryItem", sm.TypeTag)
	assert.EqualValues(t, 3, sm.Model["amount"])

	// consumed entirely: the world instance is gone for good
	assert.Equal(t, packet.Goodbye{InstanceID: inst.ID}, firstOfKind(msgs, packet.KindGoodbye))
	_, present := f.w.live[forestID][inst.ID]
	assert.False(t, present)
	assert.EqualValues(t, 3, c.inventory.Count(sm.Model["item"].(map[string]any)["id"].(int64)))

	// persisted row exists
	rows, err := f.store.InventoryByPlayer(context.Background(), c.player.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3, rows[0].Amount)
}

func TestGrabWithFullInventory(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	inst := f.seedFloorItem(model.TypeOre, "Iron Ore", 5, 3, forestID, 0, 0, 0)

	c := f.login("ada")
	f.reach(c, 0, 0)

	item, err := f.store.ItemByEntity(context.Background(), inst.Entity.ID)
	require.NoError(t, err)
	leftover := f.w.creditInventory(c, item, 30*5)
	require.Zero(t, leftover)
	require.Len(t, c.inventory.Rows(), model.MaxInventoryRows)
	drain(c)

	f.w.dispatch(c, packet.GrabItem{})
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, packet.Deny{Reason: "Your inventory is full"}, msgs[0])

	// the floor stack keeps its amount and stays in the world
	assert.EqualValues(t, 3, inst.Amount)
	_, present := f.w.live[forestID][inst.ID]
	assert.True(t, present)
}

func TestGrabPartialWhenAlmostFull(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	inst := f.seedFloorItem(model.TypeOre, "Iron Ore", 5, 3, forestID, 0, 0, 0)

	c := f.login("ada")
	f.reach(c, 0, 0)

	item, err := f.store.ItemByEntity(context.Background(), inst.Entity.ID)
	require.NoError(t, err)
	// 29 full rows plus one row of 4: exactly one unit of headroom
	f.w.creditInventory(c, item, 29*5+4)
	drain(c)

	f.w.dispatch(c, packet.GrabItem{})
	msgs := drain(c)

	require.NotNil(t, firstOfKind(msgs, packet.KindDeny))
	assert.EqualValues(t, 2, inst.Amount, "one unit picked up, two left on the floor")
	_, present := f.w.live[forestID][inst.ID]
	assert.True(t, present)
}

func TestDropItemPlacesInstanceWithDespawnTimer(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID

	c := f.login("ada")
	item := f.seedItemDef(model.TypeLogs, "Logs", 50)
	f.w.creditInventory(c, item, 7)
	drain(c)

	row := c.inventory.Rows()[0]
	f.w.dispatch(c, packet.DropItem{InventoryItemID: row.ID})

	assert.Empty(t, c.inventory.Rows())

	var dropped *model.Instance
	for id, inst := range f.w.live[forestID] {
		if id < 0 {
			dropped = inst
		}
	}
	require.NotNil(t, dropped, "dropped item should be a transient instance")
	assert.Equal(t, c.instance.Y, dropped.Y)
	assert.Equal(t, c.instance.X, dropped.X)
	assert.EqualValues(t, 7, dropped.Amount)
	assert.Equal(t, item.Entity.ID, dropped.Entity.ID)

	// despawn fires tickrate*120 ticks later
	due := int64(f.w.cfg.TickRate) * despawnDelaySecs
	f.w.sched.RunDue(due - 1)
	_, present := f.w.live[forestID][dropped.ID]
	assert.True(t, present)

	f.w.sched.RunDue(due)
	_, present = f.w.live[forestID][dropped.ID]
	assert.False(t, present)
}

func TestDropThenGrabCancelsDespawn(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID

	c := f.login("ada")
	item := f.seedItemDef(model.TypeOre, "Iron Ore", 50)
	f.w.creditInventory(c, item, 5)
	drain(c)

	row := c.inventory.Rows()[0]
	f.w.dispatch(c, packet.DropItem{InventoryItemID: row.ID})
	drain(c)

	f.w.dispatch(c, packet.GrabItem{})
	drain(c)
	assert.EqualValues(t, 5, c.inventory.Count(item.ID))

	// the stale despawn callback must be a no-op
	f.w.sched.RunDue(int64(f.w.cfg.TickRate) * despawnDelaySecs)
	assert.Empty(t, func() []int64 {
		var ids []int64
		for id := range f.w.live[forestID] {
			if id < 0 {
				ids = append(ids, id)
			}
		}
		return ids
	}())
}

func TestDropUnknownRowDenied(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	c := f.login("ada")

	f.w.dispatch(c, packet.DropItem{InventoryItemID: 999})
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, packet.Deny{Reason: "You don't have that item."}, msgs[0])
}
