package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkravetz/sixtyfix/internal/dbx"
	"github.com/dkravetz/sixtyfix/internal/server/repositories/items"
	"github.com/dkravetz/sixtyfix/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Items(db dbx.DBTX) items.Repository
}
