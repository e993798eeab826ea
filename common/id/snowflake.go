package id

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Node IDs per binary so IDs never collide across processes.
const (
	NodeServer int64 = 1
	NodeWorker int64 = 2
	NodeCLI    int64 = 3
)

var ErrNotInitialized = errors.New("id generator not initialized")

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new time-ordered int64 ID for reply and summary run rows.
func New() (int64, error) {
	if node == nil {
		return 0, ErrNotInitialized
	}
	return node.Generate().Int64(), nil
}
