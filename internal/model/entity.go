package model

// Typename classifies an Entity. The set is closed; the database stores the
// string form.
type Typename string

const (
	TypePlayer   Typename = "Player"
	TypeItem     Typename = "Item"
	TypePickaxe  Typename = "Pickaxe"
	TypeAxe      Typename = "Axe"
	TypeOre      Typename = "Ore"
	TypeLogs     Typename = "Logs"
	TypeOreNode  Typename = "OreNode"
	TypeTreeNode Typename = "TreeNode"
	TypePortal   Typename = "Portal"
)

// Grabbable reports whether an instance of this typename can be picked up
// off the floor.
func (t Typename) Grabbable() bool {
	switch t {
	case TypeItem, TypePickaxe, TypeAxe, TypeOre, TypeLogs:
		return true
	}
	return false
}

// ResourceNode reports whether this typename is a harvestable node.
func (t Typename) ResourceNode() bool {
	return t == TypeOreNode || t == TypeTreeNode
}

// RequiredTool returns the tool typename needed to gather from a node,
// or "" if t is not a node.
func (t Typename) RequiredTool() Typename {
	switch t {
	case TypeOreNode:
		return TypePickaxe
	case TypeTreeNode:
		return TypeAxe
	}
	return ""
}

// Entity is the identity shared by everything that can be placed in a room:
// players, items on the floor, resource nodes and portals.
type Entity struct {
	ID       int64
	Typename Typename
	Name     string
}

// Dict returns the wire representation for ServerModel payloads.
func (e *Entity) Dict() map[string]any {
	return map[string]any{
		"id":       e.ID,
		"typename": string(e.Typename),
		"name":     e.Name,
	}
}
