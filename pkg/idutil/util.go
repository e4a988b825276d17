package idutil

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	once sync.Once
	node *snowflake.Node
)

// Init sets the snowflake node of this process. Calling it is optional; the
// default node is 1.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})

	return err
}

// NextSequence returns a process-wide increasing id used to order ledger
// rows.
func NextSequence() int64 {
	once.Do(func() {
		var err error
		node, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})

	return node.Generate().Int64()
}
