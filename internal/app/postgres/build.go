package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
)

// NewBuild creates a new instance of the repository.
func NewBuild(conn *sql.DB) app.BuildRepo {
	return Build{conn: conn}
}

// Build implements a repository.
type Build struct {
	conn *sql.DB
}

// FindByID returns the one build with the specific ID.
func (r Build) FindByID(ctx context.Context, id string) (app.Build, error) {
	var b app.Build
	var branch sql.NullString
	var modules []byte
	q := `SELECT "id", "job", "number", "outcome", "branch", "commit", "repository_url", "scm", "modules", "completed_at"
		FROM "builds" WHERE "id" = $1`
	err := r.conn.QueryRowContext(ctx, q, id).
		Scan(&b.ID, &b.Job, &b.Number, &b.Outcome, &branch, &b.Commit, &b.RepositoryURL, &b.SCM, &modules, &b.CompletedAt)
	if err == sql.ErrNoRows {
		err = errtype.ErrNotFound
	}
	if err != nil {
		return b, errors.WrapContext(err, errors.Context{
			Path:   "postgres.Build.FindByID.Scan",
			Params: errors.Params{"build": id},
		})
	}
	if branch.Valid {
		b.Branch = &branch.String
	}
	err = json.Unmarshal(modules, &b.Modules)
	return b, errors.WrapContext(err, errors.Context{
		Path:   "postgres.Build.FindByID.modules",
		Params: errors.Params{"build": id},
	})
}

// Save adds the build or replaces the stored one with the same ID.
func (r Build) Save(ctx context.Context, b app.Build) error {
	if b.Modules == nil {
		b.Modules = []app.ModuleCoordinates{}
	}
	modules, err := json.Marshal(b.Modules)
	if err != nil {
		return errors.WrapContext(err, errors.Context{
			Path:   "postgres.Build.Save.modules",
			Params: errors.Params{"build": b.ID},
		})
	}
	var branch sql.NullString
	if b.Branch != nil {
		branch = sql.NullString{String: *b.Branch, Valid: true}
	}
	q := `INSERT INTO "builds" ("id", "job", "number", "outcome", "branch", "commit", "repository_url", "scm", "modules", "completed_at")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ("id") DO UPDATE SET "outcome" = EXCLUDED."outcome", "branch" = EXCLUDED."branch",
			"commit" = EXCLUDED."commit", "repository_url" = EXCLUDED."repository_url", "scm" = EXCLUDED."scm",
			"modules" = EXCLUDED."modules", "completed_at" = EXCLUDED."completed_at"`
	_, err = r.conn.ExecContext(ctx, q,
		b.ID, b.Job, int64(b.Number), string(b.Outcome), branch, b.Commit, b.RepositoryURL, b.SCM, modules, b.CompletedAt)
	return errors.WrapContext(err, errors.Context{
		Path:   "postgres.Build.Save.Exec",
		Params: errors.Params{"build": b.ID},
	})
}
