package utilities

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// ErrInvalidID is returned by ParseID for anything that is not a positive snowflake.
var ErrInvalidID = errors.New("invalid id")

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out snowflake ids for persisted records. One generator per process.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator builds a generator for the given snowflake node (0-1023).
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &IDGenerator{node: node}, nil
}

// IDGeneratorFromEnv reads the node id from SNOWFLAKE_NODE and defaults to
// node 1 when the variable is missing or malformed.
func IDGeneratorFromEnv() (*IDGenerator, error) {
	nodeID, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64)
	if err != nil {
		nodeID = 1
	}
	return NewIDGenerator(nodeID)
}

// Next returns a fresh id.
func (g *IDGenerator) Next() snowflake.ID {
	return g.node.Generate()
}

// ParseID parses a path or body id. Zero and negative values are rejected so a
// parsed id can never match an unpopulated owner reference.
func ParseID(s string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
