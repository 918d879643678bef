package bestfirst

import (
	"container/heap"
	"fmt"

	"github.com/pdrpinto/bestfirst/internal"
)

type PriorityQueueItem struct {
	Node     internal.NodeID
	Priority float64
	Sequence uint64
}

// PriorityQueue orders items by priority, then by insertion sequence so
// equal-cost nodes come out first-in first-out.
type PriorityQueue []PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	if queue[i].Priority != queue[j].Priority {
		return queue[i].Priority < queue[j].Priority
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue PriorityQueue) Swap(i, j int) { queue[i], queue[j] = queue[j], queue[i] }

func (queue *PriorityQueue) Push(x any) {
	*queue = append(*queue, x.(PriorityQueueItem))
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	*queue = oldQueue[:n-1]
	return item
}

// frontier is the open list of one run. Relaxation pushes a second entry
// for the same node instead of fixing the heap in place; the stale entry
// is dropped when it surfaces because its node is already closed.
type frontier[NodeType comparable] struct {
	queue    PriorityQueue
	nodes    *internal.Arena[NodeType]
	sequence uint64
	open     int
}

func newFrontier[NodeType comparable](nodes *internal.Arena[NodeType]) *frontier[NodeType] {
	return &frontier[NodeType]{nodes: nodes}
}

func (f *frontier[NodeType]) reset() {
	f.queue = f.queue[:0]
	f.sequence = 0
	f.open = 0
}

// Insert marks the node open and queues it at priority.
func (f *frontier[NodeType]) Insert(id internal.NodeID, priority float64) error {
	node := f.nodes.Node(id)
	switch node.Status {
	case internal.Closed:
		return fmt.Errorf("%w: insert of closed node %v", ErrInvariantViolation, node.Element)
	case internal.Unexplored:
		node.Status = internal.Open
		f.open++
	}
	heap.Push(&f.queue, PriorityQueueItem{Node: id, Priority: priority, Sequence: f.sequence})
	f.sequence++
	return nil
}

// Pop removes the cheapest open node and closes it.
func (f *frontier[NodeType]) Pop() (internal.NodeID, error) {
	for f.queue.Len() > 0 {
		item := heap.Pop(&f.queue).(PriorityQueueItem)
		node := f.nodes.Node(item.Node)
		if node.Status == internal.Closed {
			continue
		}
		node.Status = internal.Closed
		f.open--
		return item.Node, nil
	}
	return internal.NoParent, ErrEmptyFrontier
}

func (f *frontier[NodeType]) Contains(id internal.NodeID) bool {
	return f.nodes.Node(id).Status == internal.Open
}

func (f *frontier[NodeType]) IsEmpty() bool { return f.open == 0 }

// Len counts open nodes, not queued entries.
func (f *frontier[NodeType]) Len() int { return f.open }
