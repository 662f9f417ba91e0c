// Package drafts persists the single autosave slot of each document.
// The table is keyed by document id, so writing a draft is an upsert.
package drafts
