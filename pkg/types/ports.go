package types

import "errors"

// Store is the access port the backup and restore engines use against the
// live relational store. One call covers one table in one direction.
//
// Implementations guarantee that each call is individually atomic, reads
// return rows in primary-key ascending order, and the view stays consistent
// across calls while a single backup or restore runs. The engines never
// reimplement transaction control; they rely on this contract.
type Store interface {
	// ReadAllRows returns every row of the named table in primary-key
	// ascending order. Rows are typed pointers (*Pattern, *TestSession,
	// and so on per table). Returns ErrUnknownTable for unmanaged names.
	ReadAllRows(table string) ([]any, error)

	// ClearTable removes every row from the named table.
	ClearTable(table string) error

	// InsertRows inserts rows in the given order, reusing any primary keys
	// already set on them. Returns the number of rows inserted before the
	// first failure, so callers can report partial progress exactly.
	InsertRows(table string, rows []any) (int, error)
}

// Snapshotter is implemented by stores that can read every managed table at
// one point in time. The backup engine prefers it over per-table reads so
// concurrent writers cannot produce a torn cross-table view.
type Snapshotter interface {
	// ReadSnapshot returns all rows of every managed table, keyed by table
	// name, read inside one logical transaction.
	ReadSnapshot() (map[string][]any, error)
}

// AssetStore is the port for binary side-assets (practice videos). Rows
// carry asset references; the bytes live outside the structured document.
type AssetStore interface {
	// ResolveAsset returns the bytes for a reference, or ErrAssetMissing
	// when no asset exists for it.
	ResolveAsset(ref string) ([]byte, error)

	// StoreAsset writes the bytes under the given name and returns the
	// reference that resolves to them.
	StoreAsset(name string, data []byte) (string, error)

	// AssetExists reports whether the reference resolves to stored bytes.
	AssetExists(ref string) bool
}

// Store and port errors.
var (
	ErrUnknownTable = errors.New("unknown table")
	ErrNotFound     = errors.New("record not found")
	ErrInvalidData  = errors.New("invalid row data")
	ErrStoreClosed  = errors.New("store is closed")
	ErrAssetMissing = errors.New("asset missing")
)

// Archive errors surfaced by the serializer and the engines.
var (
	ErrMalformedArchive   = errors.New("malformed archive")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
	ErrChecksumMismatch   = errors.New("archive checksum mismatch")
	ErrStoreCleared       = errors.New("store cleared but restore did not complete")
)
