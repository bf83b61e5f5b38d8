package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceRespawnCycle(t *testing.T) {
	node := &Instance{
		ID:          1,
		Entity:      &Entity{ID: 2, Typename: TypeOreNode, Name: "rocks"},
		RoomID:      1,
		Y:           4,
		X:           7,
		RespawnTime: 30,
	}

	assert.True(t, node.Alive())
	assert.True(t, node.At(4, 7))

	node.BeginRespawn()
	assert.False(t, node.Alive())
	assert.False(t, node.At(4, 7))
	assert.Equal(t, WireOOB, node.Dict()["y"])

	node.CompleteRespawn()
	assert.True(t, node.Alive())
	assert.True(t, node.At(4, 7))
	assert.Equal(t, 4, node.Dict()["y"])
}

func TestTypenameHelpers(t *testing.T) {
	assert.True(t, TypeOre.Grabbable())
	assert.True(t, TypePickaxe.Grabbable())
	assert.False(t, TypePortal.Grabbable())
	assert.False(t, TypeOreNode.Grabbable())

	assert.True(t, TypeOreNode.ResourceNode())
	assert.True(t, TypeTreeNode.ResourceNode())
	assert.False(t, TypeItem.ResourceNode())

	assert.Equal(t, TypePickaxe, TypeOreNode.RequiredTool())
	assert.Equal(t, TypeAxe, TypeTreeNode.RequiredTool())
	assert.Equal(t, Typename(""), TypeItem.RequiredTool())
}

func TestInstanceDictInlinesEntity(t *testing.T) {
	in := &Instance{
		ID:     3,
		Entity: &Entity{ID: 5, Typename: TypePlayer, Name: "ada"},
		RoomID: 2,
		Y:      1,
		X:      9,
	}

	d := in.Dict()
	ent, ok := d["entity"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "Player", ent["typename"])
	assert.Equal(t, "ada", ent["name"])
	assert.Equal(t, int64(2), d["room_id"])
}
