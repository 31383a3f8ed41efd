package postgres

import (
	"context"
	"database/sql"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"time"
)

const promotionColumns = `"id", "process", "job", "build_id", "branch", "matched_pattern", "commit", "status",
	"workspace", "console", "error_msg", "created_at", "updated_at"`

// NewPromotion creates a new instance of the repository.
func NewPromotion(conn *sql.DB) app.PromotionRepo {
	return Promotion{conn: conn}
}

// Promotion implements a repository.
type Promotion struct {
	conn *sql.DB
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPromotion(row scanner) (app.Promotion, error) {
	var p app.Promotion
	var errorMsg sql.NullString
	err := row.Scan(&p.ID, &p.Process, &p.Job, &p.BuildID, &p.Branch, &p.MatchedPattern, &p.Commit, &p.Status,
		&p.Workspace, &p.Console, &errorMsg, &p.CreatedAt, &p.UpdatedAt)
	if errorMsg.Valid {
		p.ErrorMsg = &errorMsg.String
	}
	return p, err
}

// FindAll returns all promotions, the latest first.
func (r Promotion) FindAll(ctx context.Context) ([]app.Promotion, error) {
	q := `SELECT ` + promotionColumns + ` FROM "promotions" ORDER BY "id" DESC`
	rows, err := r.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "postgres.Promotion.FindAll.Query"})
	}
	defer rows.Close()
	res := make([]app.Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: "postgres.Promotion.FindAll.Scan"})
		}
		res = append(res, p)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: "postgres.Promotion.FindAll.Next"})
}

// FindByID returns the one promotion with the specific ID.
func (r Promotion) FindByID(ctx context.Context, id uint64) (app.Promotion, error) {
	q := `SELECT ` + promotionColumns + ` FROM "promotions" WHERE "id" = $1`
	p, err := scanPromotion(r.conn.QueryRowContext(ctx, q, int64(id)))
	if err == sql.ErrNoRows {
		err = errtype.ErrNotFound
	}
	return p, errors.WrapContext(err, errors.Context{
		Path:   "postgres.Promotion.FindByID.Scan",
		Params: errors.Params{"promotion": id},
	})
}

// Claim switches the oldest enqueued promotion to running and returns it.
// The row is locked while it is claimed, so concurrent workers never take the same promotion.
func (r Promotion) Claim(ctx context.Context, at time.Time) (app.Promotion, error) {
	q := `UPDATE "promotions" SET "status" = $1, "updated_at" = $2
		WHERE "id" = (
			SELECT "id" FROM "promotions" WHERE "status" = $3 ORDER BY "id" LIMIT 1 FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + promotionColumns
	p, err := scanPromotion(r.conn.QueryRowContext(ctx, q, app.PromotionStatusRunning, at, app.PromotionStatusEnqueued))
	if err == sql.ErrNoRows {
		err = errtype.ErrNotFound
	}
	return p, errors.WrapContext(err, errors.Context{Path: "postgres.Promotion.Claim.Scan"})
}

// Add saves a new promotion; nothing is saved if the build is already promoted by the same process.
func (r Promotion) Add(ctx context.Context, p app.Promotion) (app.Promotion, bool, error) {
	q := `INSERT INTO "promotions" ("process", "job", "build_id", "branch", "matched_pattern", "commit", "status",
			"created_at", "updated_at")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ("process", "build_id") DO NOTHING RETURNING "id"`
	err := r.conn.QueryRowContext(ctx, q, p.Process, p.Job, p.BuildID, p.Branch, p.MatchedPattern, p.Commit, p.Status,
		p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err == sql.ErrNoRows {
		return p, false, nil
	}
	if err != nil {
		return p, false, errors.WrapContext(err, errors.Context{
			Path:   "postgres.Promotion.Add.Scan",
			Params: errors.Params{"process": p.Process, "build": p.BuildID},
		})
	}
	return p, true, nil
}

// Update modifies a specific promotion.
func (r Promotion) Update(ctx context.Context, p app.Promotion) (app.Promotion, error) {
	var errorMsg sql.NullString
	if p.ErrorMsg != nil {
		errorMsg = sql.NullString{String: *p.ErrorMsg, Valid: true}
	}
	q := `UPDATE "promotions" SET "status" = $2, "workspace" = $3, "console" = $4, "error_msg" = $5, "updated_at" = $6
		WHERE "id" = $1`
	_, err := r.conn.ExecContext(ctx, q, int64(p.ID), p.Status, p.Workspace, p.Console, errorMsg, p.UpdatedAt)
	return p, errors.WrapContext(err, errors.Context{
		Path:   "postgres.Promotion.Update.Exec",
		Params: errors.Params{"promotion": p.ID, "status": p.Status},
	})
}

// FailRunning marks every running promotion as failed and returns the number of affected rows.
func (r Promotion) FailRunning(ctx context.Context, errorMsg string, at time.Time) (int64, error) {
	q := `UPDATE "promotions" SET "status" = $1, "error_msg" = $2, "updated_at" = $3 WHERE "status" = $4`
	res, err := r.conn.ExecContext(ctx, q, app.PromotionStatusFailed, errorMsg, at, app.PromotionStatusRunning)
	if err != nil {
		return 0, errors.WrapContext(err, errors.Context{Path: "postgres.Promotion.FailRunning.Exec"})
	}
	n, err := res.RowsAffected()
	return n, errors.WrapContext(err, errors.Context{Path: "postgres.Promotion.FailRunning.RowsAffected"})
}
