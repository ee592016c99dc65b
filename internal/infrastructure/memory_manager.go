package infrastructure

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/quarklang/quarkc/internal/interfaces"
)

// CompactMemoryManager implements interfaces.MemoryManager with a single
// allocation log rather than type-keyed pools — adapted from the teacher's
// internal/infrastructure/memory_manager.go CompactMemoryManager (the
// PooledMemoryManager variant is dropped; see DESIGN.md).
type CompactMemoryManager struct {
	mutex       sync.RWMutex
	allocations []allocation
	totalMemory int
}

type allocation struct {
	size       int
	objectType string
}

func NewCompactMemoryManager() *CompactMemoryManager {
	return &CompactMemoryManager{}
}

func (mm *CompactMemoryManager) AllocateNode(nodeType string, size int) (interface{}, error) {
	mm.mutex.Lock()
	defer mm.mutex.Unlock()
	mm.allocations = append(mm.allocations, allocation{size: size, objectType: nodeType})
	mm.totalMemory += size
	return nil, nil
}

func (mm *CompactMemoryManager) AllocateString(s string) (interface{}, error) {
	mm.mutex.Lock()
	defer mm.mutex.Unlock()
	mm.allocations = append(mm.allocations, allocation{size: len(s), objectType: "string"})
	mm.totalMemory += len(s)
	return s, nil
}

func (mm *CompactMemoryManager) FreeAll() {
	mm.mutex.Lock()
	defer mm.mutex.Unlock()
	mm.allocations = mm.allocations[:0]
	mm.totalMemory = 0
}

func (mm *CompactMemoryManager) GetStats() interfaces.MemoryStats {
	mm.mutex.RLock()
	defer mm.mutex.RUnlock()

	nodeCount, stringCount := 0, 0
	for _, a := range mm.allocations {
		if a.objectType == "string" {
			stringCount++
		} else {
			nodeCount++
		}
	}
	return interfaces.MemoryStats{
		NodesAllocated:   nodeCount,
		StringsAllocated: stringCount,
		TotalMemoryUsed:  mm.totalMemory,
	}
}

// AllocationEvent is one entry in a TrackingMemoryManager's log.
type AllocationEvent struct {
	Type   string
	Size   int
	Action string // "allocate" or "free"
}

// TrackingMemoryManager wraps another MemoryManager and records every
// allocation in an in-memory log. Node allocations are also logged through
// logrus at Trace level and FreeAll at Debug level; string allocations are
// not logged through logrus.
type TrackingMemoryManager struct {
	underlying    interfaces.MemoryManager
	allocationLog []AllocationEvent
	mutex         sync.RWMutex
	log           *logrus.Logger
}

func NewTrackingMemoryManager(underlying interfaces.MemoryManager, log *logrus.Logger) *TrackingMemoryManager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TrackingMemoryManager{underlying: underlying, log: log}
}

func (mm *TrackingMemoryManager) AllocateNode(nodeType string, size int) (interface{}, error) {
	result, err := mm.underlying.AllocateNode(nodeType, size)
	if err != nil {
		return nil, err
	}
	mm.mutex.Lock()
	mm.allocationLog = append(mm.allocationLog, AllocationEvent{Type: nodeType, Size: size, Action: "allocate"})
	mm.mutex.Unlock()
	mm.log.WithFields(logrus.Fields{"type": nodeType, "size": size}).Trace("node allocated")
	return result, nil
}

func (mm *TrackingMemoryManager) AllocateString(s string) (interface{}, error) {
	result, err := mm.underlying.AllocateString(s)
	if err != nil {
		return nil, err
	}
	mm.mutex.Lock()
	mm.allocationLog = append(mm.allocationLog, AllocationEvent{Type: "string", Size: len(s), Action: "allocate"})
	mm.mutex.Unlock()
	return result, nil
}

func (mm *TrackingMemoryManager) FreeAll() {
	mm.underlying.FreeAll()
	mm.mutex.Lock()
	mm.allocationLog = append(mm.allocationLog, AllocationEvent{Type: "all", Action: "free"})
	mm.mutex.Unlock()
	mm.log.Debug("freed all tracked allocations")
}

func (mm *TrackingMemoryManager) GetStats() interfaces.MemoryStats {
	return mm.underlying.GetStats()
}

func (mm *TrackingMemoryManager) GetAllocationLog() []AllocationEvent {
	mm.mutex.RLock()
	defer mm.mutex.RUnlock()
	out := make([]AllocationEvent, len(mm.allocationLog))
	copy(out, mm.allocationLog)
	return out
}
