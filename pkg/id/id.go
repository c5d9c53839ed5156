package id

import (
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/cespare/xxhash"
)

type Unique = int64

// Generator hands out time-ordered capture ids.
type Generator struct {
	node *snowflake.Node
}

func NewGenerator() (*Generator, error) {
	node, err := snowflake.NewNode(hostNode())
	if err != nil {
		return nil, fmt.Errorf("init snowflake node: %w", err)
	}
	return &Generator{node: node}, nil
}

func (g *Generator) Next() Unique {
	return g.node.Generate().Int64()
}

// Node extracts the generator node an id was issued by.
func Node(id Unique) int64 {
	return (id >> 12) & 0x3FF
}

func hostNode() int64 {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return 1 // fallback
	}
	return int64(xxhash.Sum64([]byte(host)) % 1024)
}
