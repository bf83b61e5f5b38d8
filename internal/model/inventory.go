package model

// MaxInventoryRows caps the number of stack rows a player can hold.
const MaxInventoryRows = 30

// Inventory is a player's stack rows in deterministic order.
// All mutation happens on the world thread; no locking here.
type Inventory struct {
	playerID int64
	rows     []*InventoryItem
}

// NewInventory creates an inventory preloaded with rows (store order).
func NewInventory(playerID int64, rows []*InventoryItem) *Inventory {
	return &Inventory{playerID: playerID, rows: rows}
}

// Rows returns the stack rows in order. Callers must not mutate the slice.
func (inv *Inventory) Rows() []*InventoryItem {
	return inv.rows
}

// Row returns the row with the given id, or nil.
func (inv *Inventory) Row(id int64) *InventoryItem {
	for _, row := range inv.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

// Holds reports whether any row carries an item of the given typename.
func (inv *Inventory) Holds(t Typename) bool {
	for _, row := range inv.rows {
		if row.Item.Entity.Typename == t {
			return true
		}
	}
	return false
}

// Remove deletes the row with the given id and returns it, or nil.
func (inv *Inventory) Remove(id int64) *InventoryItem {
	for i, row := range inv.rows {
		if row.ID == id {
			inv.rows = append(inv.rows[:i], inv.rows[i+1:]...)
			return row
		}
	}
	return nil
}

// Add credits amt of item, stacking onto existing partial rows first and
// then opening new rows up to MaxInventoryRows.
//
// Returns the rows that changed (updated), the rows that were created with
// ID 0 pending persistence (created), and the amount that did not fit
// (leftover, nonzero only when the inventory hit the row cap).
func (inv *Inventory) Add(item *Item, amt int64) (updated, created []*InventoryItem, leftover int64) {
	leftover = amt

	for _, row := range inv.rows {
		if leftover == 0 {
			break
		}
		if row.Item.ID != item.ID || row.Amount >= item.MaxStackAmt {
			continue
		}
		take := min(item.MaxStackAmt-row.Amount, leftover)
		row.Amount += take
		leftover -= take
		updated = append(updated, row)
	}

	for leftover > 0 && len(inv.rows) < MaxInventoryRows {
		take := min(item.MaxStackAmt, leftover)
		row := &InventoryItem{PlayerID: inv.playerID, Item: item, Amount: take}
		inv.rows = append(inv.rows, row)
		created = append(created, row)
		leftover -= take
	}

	return updated, created, leftover
}

// Count returns the total amount held across rows of the given item.
func (inv *Inventory) Count(itemID int64) int64 {
	var total int64
	for _, row := range inv.rows {
		if row.Item.ID == itemID {
			total += row.Amount
		}
	}
	return total
}
