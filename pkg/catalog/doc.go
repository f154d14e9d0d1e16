/*
Package catalog defines the problem catalog that drives exercise generation.

A catalog is an ordered list of entries, each naming one problem in the
curriculum by identifier, title, and a one-line focus description. Entries
can come from three places, in order of precedence: an HCL catalog file,
the SQLite-backed store, or the built-in default table. The store is the
source of truth at generation time; the HCL file is imported into it so
that edits made through the management API and edits made in the file end
up in the same place.
*/
package catalog
