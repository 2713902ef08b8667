// Package items implements persistence for the tracked reminder items.
//
// The FileRepository stores the items as YAML on disk, exposes a Repository
// interface the server service depends on and watches the file for edits.
package items
