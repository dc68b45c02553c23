// Package embeddings generates dense vector representations of text for
// knowledge-base retrieval. Similar texts produce vectors with high cosine
// similarity, which is how caller utterances are matched against indexed
// documents.
package embeddings
