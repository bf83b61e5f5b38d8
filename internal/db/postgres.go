package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moonvale/mud/internal/model"
)

// Postgres implements Store over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to PostgreSQL and returns a Store handle.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) UserByName(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := p.pool.QueryRow(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user %q: %w", username, err)
	}
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		u.Username, u.PasswordHash,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

func (p *Postgres) DeleteUser(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}

func (p *Postgres) PlayerByUser(ctx context.Context, userID int64) (*model.Player, error) {
	var pl model.Player
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, entity_id FROM players WHERE user_id = $1`, userID,
	).Scan(&pl.ID, &pl.UserID, &pl.EntityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying player for user %d: %w", userID, err)
	}
	return &pl, nil
}

func (p *Postgres) CreatePlayer(ctx context.Context, pl *model.Player) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO players (user_id, entity_id) VALUES ($1, $2) RETURNING id`,
		pl.UserID, pl.EntityID,
	).Scan(&pl.ID)
	if err != nil {
		return fmt.Errorf("creating player for user %d: %w", pl.UserID, err)
	}
	return nil
}

func (p *Postgres) CreateBank(ctx context.Context, b *model.Bank) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO banks (player_id) VALUES ($1) RETURNING id`, b.PlayerID,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("creating bank for player %d: %w", b.PlayerID, err)
	}
	return nil
}

func (p *Postgres) CreateEntity(ctx context.Context, e *model.Entity) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO entities (typename, name) VALUES ($1, $2) RETURNING id`,
		e.Typename, e.Name,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("creating entity %q: %w", e.Name, err)
	}
	return nil
}

func (p *Postgres) DeleteEntity(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM entities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting entity %d: %w", id, err)
	}
	return nil
}

const instanceColumns = `i.id, i.room_id, i.y, i.x, i.amount, i.respawn_time,
	 e.id, e.typename, e.name`

func scanInstance(row pgx.Row) (*model.Instance, error) {
	var in model.Instance
	var e model.Entity
	err := row.Scan(&in.ID, &in.RoomID, &in.Y, &in.X, &in.Amount, &in.RespawnTime,
		&e.ID, &e.Typename, &e.Name)
	if err != nil {
		return nil, err
	}
	in.Entity = &e
	return &in, nil
}

func (p *Postgres) InstanceByEntity(ctx context.Context, entityID int64) (*model.Instance, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+instanceColumns+`
		 FROM instances i JOIN entities e ON e.id = i.entity_id
		 WHERE i.entity_id = $1`, entityID)
	in, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying instance for entity %d: %w", entityID, err)
	}
	return in, nil
}

func (p *Postgres) CreateInstance(ctx context.Context, in *model.Instance) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO instances (entity_id, room_id, y, x, amount, respawn_time)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		in.Entity.ID, in.RoomID, in.Y, in.X, in.Amount, in.RespawnTime,
	).Scan(&in.ID)
	if err != nil {
		return fmt.Errorf("creating instance for entity %d: %w", in.Entity.ID, err)
	}
	return nil
}

func (p *Postgres) SaveInstance(ctx context.Context, in *model.Instance) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE instances SET room_id = $2, y = $3, x = $4, amount = $5 WHERE id = $1`,
		in.ID, in.RoomID, in.Y, in.X, in.Amount,
	)
	if err != nil {
		return fmt.Errorf("saving instance %d: %w", in.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteInstance(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM instances WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting instance %d: %w", id, err)
	}
	return nil
}

func (p *Postgres) Instances(ctx context.Context) ([]*model.Instance, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+instanceColumns+`
		 FROM instances i JOIN entities e ON e.id = i.entity_id
		 ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	defer rows.Close()

	var out []*model.Instance
	for rows.Next() {
		in, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating instances: %w", err)
	}
	return out, nil
}

func (p *Postgres) Rooms(ctx context.Context) ([]*model.Room, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, file_name FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.FileName); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return out, nil
}

func (p *Postgres) ItemByEntity(ctx context.Context, entityID int64) (*model.Item, error) {
	var it model.Item
	var e model.Entity
	err := p.pool.QueryRow(ctx,
		`SELECT it.id, it.max_stack_amt, e.id, e.typename, e.name
		 FROM items it JOIN entities e ON e.id = it.entity_id
		 WHERE it.entity_id = $1`, entityID,
	).Scan(&it.ID, &it.MaxStackAmt, &e.ID, &e.Typename, &e.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying item for entity %d: %w", entityID, err)
	}
	it.Entity = &e
	return &it, nil
}

func (p *Postgres) InventoryByPlayer(ctx context.Context, playerID int64) ([]*model.InventoryItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT ii.id, ii.amount, it.id, it.max_stack_amt, e.id, e.typename, e.name
		 FROM inventory_items ii
		 JOIN items it ON it.id = ii.item_id
		 JOIN entities e ON e.id = it.entity_id
		 WHERE ii.player_id = $1
		 ORDER BY ii.id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var out []*model.InventoryItem
	for rows.Next() {
		var row model.InventoryItem
		var it model.Item
		var e model.Entity
		err := rows.Scan(&row.ID, &row.Amount, &it.ID, &it.MaxStackAmt,
			&e.ID, &e.Typename, &e.Name)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		it.Entity = &e
		row.Item = &it
		row.PlayerID = playerID
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory rows: %w", err)
	}
	return out, nil
}

func (p *Postgres) CreateInventoryItem(ctx context.Context, row *model.InventoryItem) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO inventory_items (player_id, item_id, amount)
		 VALUES ($1, $2, $3) RETURNING id`,
		row.PlayerID, row.Item.ID, row.Amount,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("creating inventory row for player %d: %w", row.PlayerID, err)
	}
	return nil
}

func (p *Postgres) UpdateInventoryItem(ctx context.Context, row *model.InventoryItem) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE inventory_items SET amount = $2 WHERE id = $1`, row.ID, row.Amount)
	if err != nil {
		return fmt.Errorf("updating inventory row %d: %w", row.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteInventoryItem(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting inventory row %d: %w", id, err)
	}
	return nil
}

func (p *Postgres) PortalByEntity(ctx context.Context, entityID int64) (*model.Portal, error) {
	var po model.Portal
	err := p.pool.QueryRow(ctx,
		`SELECT id, entity_id, linked_room_id, linked_y, linked_x
		 FROM portals WHERE entity_id = $1`, entityID,
	).Scan(&po.ID, &po.EntityID, &po.LinkedRoomID, &po.LinkedY, &po.LinkedX)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying portal for entity %d: %w", entityID, err)
	}
	return &po, nil
}

func (p *Postgres) NodeByEntity(ctx context.Context, entityID int64) (*model.ResourceNode, error) {
	var n model.ResourceNode
	err := p.pool.QueryRow(ctx,
		`SELECT id, entity_id, drop_table_id FROM resource_nodes WHERE entity_id = $1`, entityID,
	).Scan(&n.ID, &n.EntityID, &n.DropTableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying node for entity %d: %w", entityID, err)
	}
	return &n, nil
}

func (p *Postgres) DropTableItems(ctx context.Context, dropTableID int64) ([]*model.DropTableItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT d.id, d.drop_table_id, d.chance, d.min_amt, d.max_amt,
		        it.id, it.max_stack_amt, e.id, e.typename, e.name
		 FROM drop_table_items d
		 JOIN items it ON it.id = d.item_id
		 JOIN entities e ON e.id = it.entity_id
		 WHERE d.drop_table_id = $1
		 ORDER BY d.id`, dropTableID)
	if err != nil {
		return nil, fmt.Errorf("querying drop table %d: %w", dropTableID, err)
	}
	defer rows.Close()

	var out []*model.DropTableItem
	for rows.Next() {
		var d model.DropTableItem
		var it model.Item
		var e model.Entity
		err := rows.Scan(&d.ID, &d.DropTableID, &d.Chance, &d.MinAmt, &d.MaxAmt,
			&it.ID, &it.MaxStackAmt, &e.ID, &e.Typename, &e.Name)
		if err != nil {
			return nil, fmt.Errorf("scanning drop table row: %w", err)
		}
		it.Entity = &e
		d.Item = &it
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drop table rows: %w", err)
	}
	return out, nil
}
