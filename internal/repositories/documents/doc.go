// Package documents provides the persistence layer for document rows.
//
// # Overview
//
// The package defines a Repository interface for the document table and a
// SQL implementation (SQLRepository) over dbx.DBTX, so the same repository
// works on a *sql.DB or inside a transaction opened with dbx.WithTx.
// Queries use "?" placeholders; wrap the handle with dbx.Bind for dialects
// that number their parameters.
//
// # Data Model
//
// A document row carries its title, creation and modification timestamps
// (Unix milliseconds), the pointer to its newest manual version and an
// optional folder. Manual versions and the draft live in their own tables
// and are removed by ON DELETE CASCADE when the document goes away.
//
// Key Types
//
//   - type Repository: interface used by the store
//   - type SQLRepository: SQL implementation over dbx.DBTX
//
// Typical Usage
//
//	repo := documents.NewSQLRepository(tx)
//	_ = repo.Insert(ctx, doc)
//	list, _ := repo.List(ctx)
//	hits, _ := repo.Search(ctx, "draft")
package documents
