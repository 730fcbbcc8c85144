// Package services holds the question answering core: the lazy document
// index, the retrieval pipeline, reply parsing, conversation memory and the
// ask flow that ties them together. Services depend only on ports.
package services
