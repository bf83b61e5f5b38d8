package model

// Item extends an Entity with stacking behaviour.
type Item struct {
	ID          int64
	Entity      *Entity
	MaxStackAmt int64
}

// InventoryItem is one stack row in a player's inventory.
// Invariant: 1 <= Amount <= Item.MaxStackAmt.
type InventoryItem struct {
	ID       int64
	PlayerID int64
	Item     *Item
	Amount   int64
}

// Dict returns the wire representation for ServerModel payloads, with the
// item and entity attributes inlined.
func (ii *InventoryItem) Dict() map[string]any {
	return map[string]any{
		"id":        ii.ID,
		"player_id": ii.PlayerID,
		"amount":    ii.Amount,
		"item": map[string]any{
			"id":            ii.Item.ID,
			"max_stack_amt": ii.Item.MaxStackAmt,
			"entity":        ii.Item.Entity.Dict(),
		},
	}
}

// Portal extends an Entity with a travel target.
type Portal struct {
	ID           int64
	EntityID     int64
	LinkedRoomID int64
	LinkedY      int
	LinkedX      int
}

// ResourceNode extends an Entity with a loot table reference.
type ResourceNode struct {
	ID          int64
	EntityID    int64
	DropTableID int64
}

// DropTableItem is one rollable line of a node's loot table: the drop
// succeeds 1 time in Chance, yielding a uniform amount in [MinAmt, MaxAmt].
type DropTableItem struct {
	ID          int64
	DropTableID int64
	Item        *Item
	Chance      int64
	MinAmt      int64
	MaxAmt      int64
}
