package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// PostgresStore persists the marketplace in PostgreSQL using pgx directly.
//
// Serialization: every Update transaction begins with
//
//	SELECT … FROM market WHERE id = 1 FOR UPDATE
//
// The market table holds exactly one row, so this row lock is a single global
// serialization point. A second Update blocks on it until the first commits
// or rolls back, which makes each read-decide-mutate sequence indivisible.
//
// Ids come from BIGSERIAL sequences. Sequences do not roll back, so a failed
// insert can leave a gap, but an id is never reused.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore over a migrated database.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Bootstrap implements Store.
func (s *PostgresStore) Bootstrap(ctx context.Context, owner model.Account) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Concurrent bootstraps race on the primary key; the loser sees the row.
	_, err = tx.Exec(ctx,
		`INSERT INTO market (id, owner, suspended) VALUES (1, $1, FALSE)
		 ON CONFLICT (id) DO NOTHING`,
		string(owner),
	)
	if err != nil {
		return fmt.Errorf("insert market: %w", err)
	}

	var existing string
	err = tx.QueryRow(ctx, `SELECT owner FROM market WHERE id = 1 FOR UPDATE`).Scan(&existing)
	if err != nil {
		return fmt.Errorf("lock market row: %w", err)
	}
	if model.Account(existing) != owner {
		err = ErrOwnerMismatch
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO market_admins (account) VALUES ($1) ON CONFLICT (account) DO NOTHING`,
		string(owner),
	)
	if err != nil {
		return fmt.Errorf("seed owner admin: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var one int
	err = tx.QueryRow(ctx, `SELECT id FROM market WHERE id = 1 FOR UPDATE`).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotBootstrapped
			return err
		}
		return fmt.Errorf("lock market row: %w", err)
	}

	if err = fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View implements Store.
func (s *PostgresStore) View(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	return fn(&pgTx{tx: tx})
}

// Close implements Store.
func (s *PostgresStore) Close() { s.db.Close() }

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Market(ctx context.Context) (model.MarketInfo, error) {
	var m model.MarketInfo
	var owner string
	err := t.tx.QueryRow(ctx, `SELECT owner, suspended FROM market WHERE id = 1`).Scan(&owner, &m.Suspended)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return m, ErrNotBootstrapped
		}
		return m, fmt.Errorf("get market: %w", err)
	}
	m.Owner = model.Account(owner)
	return m, nil
}

func (t *pgTx) SetSuspended(ctx context.Context, suspended bool) error {
	if _, err := t.tx.Exec(ctx, `UPDATE market SET suspended = $1 WHERE id = 1`, suspended); err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}
	return nil
}

func (t *pgTx) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (t *pgTx) accounts(ctx context.Context, query string) ([]model.Account, error) {
	rows, err := t.tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, model.Account(a))
	}
	return out, rows.Err()
}

func (t *pgTx) IsMarketAdmin(ctx context.Context, a model.Account) (bool, error) {
	ok, err := t.exists(ctx, `SELECT EXISTS(SELECT 1 FROM market_admins WHERE account = $1)`, string(a))
	if err != nil {
		return false, fmt.Errorf("check market admin: %w", err)
	}
	return ok, nil
}

func (t *pgTx) InsertMarketAdmin(ctx context.Context, a model.Account) error {
	if _, err := t.tx.Exec(ctx, `INSERT INTO market_admins (account) VALUES ($1)`, string(a)); err != nil {
		return fmt.Errorf("insert market admin: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteMarketAdmin(ctx context.Context, a model.Account) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM market_admins WHERE account = $1`, string(a)); err != nil {
		return fmt.Errorf("delete market admin: %w", err)
	}
	return nil
}

func (t *pgTx) ListMarketAdmins(ctx context.Context) ([]model.Account, error) {
	out, err := t.accounts(ctx, `SELECT account FROM market_admins ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list market admins: %w", err)
	}
	return out, nil
}

func (t *pgTx) IsClubOwner(ctx context.Context, a model.Account) (bool, error) {
	ok, err := t.exists(ctx, `SELECT EXISTS(SELECT 1 FROM club_owners WHERE account = $1)`, string(a))
	if err != nil {
		return false, fmt.Errorf("check club owner: %w", err)
	}
	return ok, nil
}

func (t *pgTx) InsertClubOwner(ctx context.Context, a model.Account) error {
	if _, err := t.tx.Exec(ctx, `INSERT INTO club_owners (account) VALUES ($1)`, string(a)); err != nil {
		return fmt.Errorf("insert club owner: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteClubOwner(ctx context.Context, a model.Account) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM club_owners WHERE account = $1`, string(a)); err != nil {
		return fmt.Errorf("delete club owner: %w", err)
	}
	return nil
}

func (t *pgTx) ListClubOwners(ctx context.Context) ([]model.Account, error) {
	out, err := t.accounts(ctx, `SELECT account FROM club_owners ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list club owners: %w", err)
	}
	return out, nil
}

func (t *pgTx) OwnedClub(ctx context.Context, a model.Account) (model.ClubID, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT club_id FROM owner_to_club WHERE account = $1`, string(a)).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get owned club: %w", err)
	}
	return model.ClubID(id), nil
}

func (t *pgTx) SetOwnedClub(ctx context.Context, a model.Account, id model.ClubID) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO owner_to_club (account, club_id) VALUES ($1, $2)
		 ON CONFLICT (account) DO UPDATE SET club_id = EXCLUDED.club_id`,
		string(a), int64(id),
	)
	if err != nil {
		return fmt.Errorf("set owned club: %w", err)
	}
	return nil
}

func (t *pgTx) InsertClub(ctx context.Context, c *model.Club) error {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO clubs (owner, name, location, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		string(c.Owner), c.Name, c.Location, int16(c.Status),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert club: %w", err)
	}
	c.ID = model.ClubID(id)
	return nil
}

func (t *pgTx) GetClub(ctx context.Context, id model.ClubID) (model.Club, error) {
	var (
		c      model.Club
		owner  string
		status int16
	)
	err := t.tx.QueryRow(ctx,
		`SELECT id, owner, name, location, status FROM clubs WHERE id = $1`,
		int64(id),
	).Scan(&c.ID, &owner, &c.Name, &c.Location, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, ErrNotFound
		}
		return c, fmt.Errorf("get club: %w", err)
	}
	c.Owner = model.Account(owner)
	c.Status = model.ClubStatus(status)
	return c, nil
}

func (t *pgTx) SetClubStatus(ctx context.Context, id model.ClubID, status model.ClubStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE clubs SET status = $1 WHERE id = $2`, int16(status), int64(id))
	if err != nil {
		return fmt.Errorf("set club status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) ListClubIDs(ctx context.Context) ([]model.ClubID, error) {
	rows, err := t.tx.Query(ctx, `SELECT id FROM clubs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[model.ClubID])
	if err != nil {
		return nil, fmt.Errorf("scan club id: %w", err)
	}
	return ids, nil
}

func (t *pgTx) InsertBoat(ctx context.Context, b *model.Boat) error {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO boats (club_id, name, description, unit_price, quantity, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		int64(b.ClubID), b.Name, b.Description, int64(b.UnitPrice), b.Quantity, int16(b.Status),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert boat: %w", err)
	}
	b.ID = model.BoatID(id)
	return nil
}

func (t *pgTx) GetBoat(ctx context.Context, id model.BoatID) (model.Boat, error) {
	var (
		b      model.Boat
		price  int64
		status int16
	)
	err := t.tx.QueryRow(ctx,
		`SELECT id, club_id, name, description, unit_price, quantity, status
		 FROM boats WHERE id = $1`,
		int64(id),
	).Scan(&b.ID, &b.ClubID, &b.Name, &b.Description, &price, &b.Quantity, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return b, ErrNotFound
		}
		return b, fmt.Errorf("get boat: %w", err)
	}
	b.UnitPrice = model.Amount(price)
	b.Status = model.BoatStatus(status)
	return b, nil
}

func (t *pgTx) SetBoatStatus(ctx context.Context, id model.BoatID, status model.BoatStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE boats SET status = $1 WHERE id = $2`, int16(status), int64(id))
	if err != nil {
		return fmt.Errorf("set boat status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) SetBoatQuantity(ctx context.Context, id model.BoatID, quantity int64) error {
	tag, err := t.tx.Exec(ctx, `UPDATE boats SET quantity = $1 WHERE id = $2`, quantity, int64(id))
	if err != nil {
		return fmt.Errorf("set boat quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) ListBoatIDsByClub(ctx context.Context, club model.ClubID) ([]model.BoatID, error) {
	rows, err := t.tx.Query(ctx, `SELECT id FROM boats WHERE club_id = $1 ORDER BY id`, int64(club))
	if err != nil {
		return nil, fmt.Errorf("list boats: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[model.BoatID])
	if err != nil {
		return nil, fmt.Errorf("scan boat id: %w", err)
	}
	return ids, nil
}

func (t *pgTx) Balance(ctx context.Context, a model.Account) (model.Amount, error) {
	var amount int64
	err := t.tx.QueryRow(ctx, `SELECT amount FROM balances WHERE account = $1`, string(a)).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return model.Amount(amount), nil
}

func (t *pgTx) SetBalance(ctx context.Context, a model.Account, amount model.Amount) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO balances (account, amount) VALUES ($1, $2)
		 ON CONFLICT (account) DO UPDATE SET amount = EXCLUDED.amount`,
		string(a), int64(amount),
	)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

const purchaseColumns = `id, reference, club_id, boat_id, buyer, quantity, cost_of_sale, funds_sent, refund, purchased_at`

func scanPurchase(row pgx.Row) (model.Purchase, error) {
	var (
		p     model.Purchase
		buyer string
	)
	err := row.Scan(&p.ID, &p.Reference, &p.ClubID, &p.BoatID, &buyer, &p.Quantity,
		&p.CostOfSale, &p.FundsSent, &p.Refund, &p.PurchasedAt)
	p.Buyer = model.Account(buyer)
	return p, err
}

func (t *pgTx) InsertPurchase(ctx context.Context, p *model.Purchase) error {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO purchases (reference, club_id, boat_id, buyer, quantity, cost_of_sale, funds_sent, refund, purchased_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		p.Reference, int64(p.ClubID), int64(p.BoatID), string(p.Buyer), p.Quantity,
		int64(p.CostOfSale), int64(p.FundsSent), int64(p.Refund), p.PurchasedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	p.ID = model.PurchaseID(id)
	return nil
}

func (t *pgTx) GetPurchase(ctx context.Context, id model.PurchaseID) (model.Purchase, error) {
	p, err := scanPurchase(t.tx.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

func (t *pgTx) ListPurchasesByBuyer(ctx context.Context, buyer model.Account) ([]model.Purchase, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE buyer = $1 ORDER BY id`, string(buyer))
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *pgTx) InsertWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO withdrawals (reference, account, amount, withdrawn_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		w.Reference, string(w.Account), int64(w.Amount), w.WithdrawnAt,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

func (t *pgTx) ListWithdrawals(ctx context.Context, a model.Account) ([]model.Withdrawal, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, reference, account, amount, withdrawn_at
		 FROM withdrawals WHERE account = $1 ORDER BY id`,
		string(a),
	)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []model.Withdrawal
	for rows.Next() {
		var (
			w       model.Withdrawal
			account string
			amount  int64
		)
		if err := rows.Scan(&w.ID, &w.Reference, &account, &amount, &w.WithdrawnAt); err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		w.Account = model.Account(account)
		w.Amount = model.Amount(amount)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (t *pgTx) InsertTransferFailure(ctx context.Context, f *model.TransferFailure) error {
	var purchaseID *int64
	if f.PurchaseID != 0 {
		id := int64(f.PurchaseID)
		purchaseID = &id
	}
	err := t.tx.QueryRow(ctx,
		`INSERT INTO transfer_failures (reference, kind, account, amount, purchase_id, reason, failed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		f.Reference, string(f.Kind), string(f.Account), int64(f.Amount), purchaseID, f.Reason, f.FailedAt,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("insert transfer failure: %w", err)
	}
	return nil
}

func (t *pgTx) ListTransferFailures(ctx context.Context) ([]model.TransferFailure, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, reference, kind, account, amount, COALESCE(purchase_id, 0), reason, failed_at
		 FROM transfer_failures ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfer failures: %w", err)
	}
	defer rows.Close()

	var out []model.TransferFailure
	for rows.Next() {
		var (
			f             model.TransferFailure
			kind, account string
			amount        int64
		)
		if err := rows.Scan(&f.ID, &f.Reference, &kind, &account, &amount, &f.PurchaseID, &f.Reason, &f.FailedAt); err != nil {
			return nil, fmt.Errorf("scan transfer failure: %w", err)
		}
		f.Kind = model.TransferKind(kind)
		f.Account = model.Account(account)
		f.Amount = model.Amount(amount)
		out = append(out, f)
	}
	return out, rows.Err()
}
