/*
Package generate runs generation passes over the problem catalog.

A pass walks the catalog in order and, for every entry whose target
directory already exists, renders the exercise template and writes the
result atomically into that directory. Entries without a pre-existing
directory are skipped, never created: provisioning the directories is an
external step. Each pass produces a Summary with per-entry results so
that skips and failures stay observable instead of silent.
*/
package generate
