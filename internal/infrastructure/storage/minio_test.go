package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tenant := uuid.MustParse("6f1c1b8e-2d7a-4c43-9d1e-2b0b1d8f7a11")
	at := time.Unix(1700000000, 42)

	assert.Equal(t,
		"tenants/6f1c1b8e-2d7a-4c43-9d1e-2b0b1d8f7a11/meetings/abc123/1700000000000000042.json",
		ObjectKey(tenant, "abc123", at))

	assert.Equal(t,
		"tenants/6f1c1b8e-2d7a-4c43-9d1e-2b0b1d8f7a11/meetings/a_b_c/1700000000000000042.json",
		ObjectKey(tenant, "a/b c", at))
}
