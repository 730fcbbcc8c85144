// Package normalisers provides text extractors for uploaded documents.
// Each extractor turns a stored file into per-page plain text that the
// chunking pipeline can consume.
package normalisers
