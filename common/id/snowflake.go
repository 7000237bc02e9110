// Package id generates globally unique, time-ordered entity identifiers.
package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID. Must be called
// once at process startup before New is used.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new globally unique int64 ID using the Snowflake algorithm.
// IDs are time-ordered and unique across distributed instances, which makes
// them suitable primary keys for Word/Definition/SynthesizedEntry rows
// created concurrently by provider fan-out.
func New() int64 {
	return node.Generate().Int64()
}

// NewString returns New formatted as a decimal string, for contexts (JSON
// IDs, cache keys) where a string identifier is more convenient.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}
