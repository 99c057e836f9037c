package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "documents/abc/CTR-123456.pdf", DocumentKey("abc", "CTR-123456"))
}
