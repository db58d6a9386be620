// Package sqlite3 implements a chunk store in a local SQLite database,
// suitable as a persistent vault or an offline staging area.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/vaultic/blobnet"
	"github.com/vaultic/blobnet/chunkstore"
)

var _ chunkstore.Store = &Store{}
var _ chunkstore.Lister = &Store{}

// Store is a SQLite-based chunk store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `chunks` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS chunks (
  addr BLOB PRIMARY KEY NOT NULL,
  payload BLOB NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create the table `chunks`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, err
}

// FetchChunk gets the chunk with the given content address.
func (s *Store) FetchChunk(ctx context.Context, hash blobnet.ContentHash) (blobnet.Chunk, error) {
	const q = `SELECT payload FROM chunks WHERE addr = $1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, q, hash[:]).Scan(&payload)
	if stderrs.Is(err, sql.ErrNoRows) {
		return blobnet.Chunk{}, chunkstore.ErrNotFound
	}
	if err != nil {
		return blobnet.Chunk{}, errors.Wrap(err, "querying chunk")
	}
	return blobnet.Chunk{Address: hash, Payload: payload}, nil
}

// StoreChunk adds a chunk to the store if it wasn't already present.
func (s *Store) StoreChunk(ctx context.Context, chunk blobnet.Chunk) error {
	const q = `INSERT INTO chunks (addr, payload) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	_, err := s.db.ExecContext(ctx, q, chunk.Address[:], chunk.Payload)
	return errors.Wrap(err, "inserting chunk")
}

// ListChunks produces all chunk addresses in the store, in lexicographic order.
func (s *Store) ListChunks(ctx context.Context, start blobnet.ContentHash, f func(blobnet.ContentHash) error) error {
	const q = `SELECT addr FROM chunks WHERE addr > $1 ORDER BY addr`

	return sqlutil.ForQueryRows(ctx, s.db, q, start[:], func(addr []byte) error {
		return f(blobnet.HashFromBytes(addr))
	})
}

func init() {
	chunkstore.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (chunkstore.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
