// Package reconcile restricts annotation tables and GTF files to the
// sequences present in a split assembly. Rows are matched on an exact
// chromosome identifier and emitted in input order.
package reconcile
