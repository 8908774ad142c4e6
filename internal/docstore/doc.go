// Package docstore holds the object stores the metrics document can live in.
//
// Every store addresses exactly one named document and supports three
// operations: an existence check, a full read and a full overwrite. An
// overwrite is all-or-nothing: readers see either the previous content or the
// new one, never a mix of both. None of the stores lock; keeping a single
// writer is left to the caller.
package docstore
