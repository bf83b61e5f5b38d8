package gameserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

func TestGatherRequiresTool(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	ore := f.seedItemDef(model.TypeOre, "Iron Ore", 50)
	f.seedNode(model.TypeOreNode, "Iron Vein", forestID, 0, 1, 30, 1, ore)

	c := f.login("ada")

	f.w.dispatch(c, packet.MoveRight{})
	msgs := drain(c)

	logMsg := firstOfKind(msgs, packet.KindServerLog)
	require.NotNil(t, logMsg)
	assert.Equal(t, "You do not have a Pickaxe.", logMsg.(packet.ServerLog).Text)
	assert.Nil(t, c.action)
	// no movement happened
	assert.Equal(t, 0, c.instance.Y)
	assert.Equal(t, 0, c.instance.X)
}

func TestGatherLoopHarvestsAndRespawns(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	ore := f.seedItemDef(model.TypeOre, "Iron Ore", 50)
	pickaxe := f.seedItemDef(model.TypePickaxe, "Pickaxe", 1)
	node := f.seedNode(model.TypeOreNode, "Iron Vein", forestID, 0, 1, 30, 1, ore)

	c := f.login("ada")
	f.w.creditInventory(c, pickaxe, 1)
	drain(c)

	f.w.dispatch(c, packet.MoveRight{})
	msgs := drain(c)
	logMsg := firstOfKind(msgs, packet.KindServerLog)
	require.NotNil(t, logMsg)
	assert.Equal(t, "You begin to mine at the rocks.", logMsg.(packet.ServerLog).Text)
	require.NotNil(t, c.action)

	// drive the loop until the 1-in-6 roll lands
	period := int64(f.w.cfg.TickRate)
	var killTick int64
	for now := period; now < period*100_000; now += period {
		f.w.sched.RunDue(now)
		if !node.Alive() {
			killTick = now
			break
		}
		drain(c)
	}
	require.NotZero(t, killTick, "gather loop never succeeded")

	msgs = drain(c)
	assert.Equal(t, packet.Goodbye{InstanceID: node.ID}, firstOfKind(msgs, packet.KindGoodbye))

	got := c.inventory.Count(ore.ID)
	assert.GreaterOrEqual(t, got, int64(1))
	assert.LessOrEqual(t, got, int64(3))

	// parked for respawn, not deleted
	_, present := f.w.live[forestID][node.ID]
	assert.True(t, present)

	// reappears at the original tile exactly respawn_time later
	due := killTick + int64(f.w.cfg.TickRate)*node.RespawnTime
	f.w.sched.RunDue(due - 1)
	assert.False(t, node.Alive())
	f.w.sched.RunDue(due)
	assert.True(t, node.Alive())
	assert.True(t, node.At(0, 1))
}

func TestGatherStopsWhenNodeHarvestedElsewhere(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	ore := f.seedItemDef(model.TypeOre, "Iron Ore", 50)
	pickaxe := f.seedItemDef(model.TypePickaxe, "Pickaxe", 1)
	node := f.seedNode(model.TypeOreNode, "Iron Vein", forestID, 0, 1, 30, 1, ore)

	c := f.login("ada")
	f.w.creditInventory(c, pickaxe, 1)
	drain(c)

	f.w.dispatch(c, packet.MoveRight{})
	require.NotNil(t, c.action)
	drain(c)

	node.BeginRespawn()
	keep := f.w.attemptGather(c, node, &model.ResourceNode{EntityID: node.Entity.ID, DropTableID: 1})
	assert.False(t, keep)
	assert.Zero(t, c.inventory.Count(ore.ID))
}

func TestMovementCancelsGatherLoop(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	ore := f.seedItemDef(model.TypeOre, "Iron Ore", 50)
	pickaxe := f.seedItemDef(model.TypePickaxe, "Pickaxe", 1)
	f.seedNode(model.TypeOreNode, "Iron Vein", forestID, 0, 1, 30, 1, ore)

	c := f.login("ada")
	f.w.creditInventory(c, pickaxe, 1)
	drain(c)

	f.w.dispatch(c, packet.MoveRight{})
	task := c.action
	require.NotNil(t, task)

	f.w.dispatch(c, packet.MoveDown{})
	assert.True(t, task.Cancelled())
	assert.Nil(t, c.action)
}

func TestTreeNodeNeedsAxe(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	forestID := f.w.rooms[0].ID
	logs := f.seedItemDef(model.TypeLogs, "Logs", 50)
	axe := f.seedItemDef(model.TypeAxe, "Axe", 1)
	f.seedNode(model.TypeTreeNode, "Oak Tree", forestID, 0, 1, 0, 2, logs)

	c := f.login("ada")
	f.w.creditInventory(c, axe, 1)
	drain(c)

	f.w.dispatch(c, packet.MoveRight{})
	msgs := drain(c)
	logMsg := firstOfKind(msgs, packet.KindServerLog)
	require.NotNil(t, logMsg)
	assert.Equal(t, "You begin to chop at the tree.", logMsg.(packet.ServerLog).Text)
	require.NotNil(t, c.action)
}
