package s3blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormaliseEndpoint(t *testing.T) {
	assert.Equal(t, "https://minio.local:9000", normaliseEndpoint("https://minio.local:9000", false))
	assert.Equal(t, "https://e2.example.com", normaliseEndpoint("e2.example.com", true))
	assert.Equal(t, "http://localhost:9000", normaliseEndpoint("localhost:9000", false))
}

func TestObjectKeyPrefix(t *testing.T) {
	c := &Client{prefix: normalisePrefix("/betledger/")}
	assert.Equal(t, "betledger/exports/wagers/2026-10-19.csv", c.objectKey("/exports/wagers/2026-10-19.csv"))
	assert.Equal(t, "exports/a.csv", c.relativePath("betledger/exports/a.csv"))

	bare := &Client{prefix: normalisePrefix("")}
	assert.Equal(t, "exports/a.csv", bare.objectKey("exports/a.csv"))
}
