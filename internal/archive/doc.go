package archive

// Package archive implements the archive worker: it compresses scene files into
// single-entry zip or tar.gz archives, validates every archive it writes before the
// source may be deleted, and extracts archives back next to themselves. Jobs are
// executed one at a time by Service, which hands each caller a Future to await.
