// Package folders persists the folder tree that documents can be filed in.
package folders
