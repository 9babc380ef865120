package rag

import (
	"encoding/hex"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// PageKey returns "{source}:{page}", with an empty page segment when page is nil.
func PageKey(source string, page *int) string {
	if page == nil {
		return source + ":"
	}
	return source + ":" + strconv.Itoa(*page)
}

// AssignChunkIDs returns a copy of chunks with ChunkIndex and ID set from their
// position. The index restarts at 0 whenever the source/page pair changes from the
// previous chunk, so chunks of one page must be contiguous. ContentHash is filled in
// when empty.
func AssignChunkIDs(chunks []Chunk) []Chunk {
	out := make([]Chunk, len(chunks))

	lastPageKey := ""
	counter := 0
	for i, c := range chunks {
		key := PageKey(c.Source, c.Page)
		if i > 0 && key == lastPageKey {
			counter++
		} else {
			counter = 0
		}
		lastPageKey = key

		c.ChunkIndex = counter
		c.ID = key + ":" + strconv.Itoa(counter)
		if c.ContentHash == "" {
			c.ContentHash = ContentHash(c.Content)
		}
		out[i] = c
	}

	return out
}

// ContentHash returns the hex BLAKE2b-64 digest of content.
func ContentHash(content string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
