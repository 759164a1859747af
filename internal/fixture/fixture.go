// Package fixture builds a small synthetic profile for the demo CLI and
// for engine smoke tests: two nodes with CPU and GPU processors, a
// system memory with two overlapping instances, and one copy channel,
// with enough waiters, events, operations, and provenance to exercise
// every field the resolver and tile builder populate.
package fixture

import (
	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/state"
)

// Event ids referenced by fixture entries.
var (
	taskDoneEvent = ids.EventID{Raw: 0x10, Node: 0}
	copyPrecond   = ids.EventID{Raw: 0x20, Node: 0}
)

// BuildState constructs and finalizes a two-node demonstration profile.
func BuildState() *state.State {
	st := state.New()
	st.SourceLocators = []string{"fixture/node0.prof", "fixture/node1.prof"}

	addCPU(st, 0)
	addGPU(st, 0)
	addCPU(st, 1)
	addMemory(st)
	addChannel(st)
	addOpsAndEvents(st)

	st.Finalize()
	return st
}

func taskColor() ids.Color { return ids.ColorSteelBlue }

func addCPU(st *state.State, node ids.NodeID) {
	proc := state.NewProcState(ids.ProcID{Node: node, Local: 0}, state.ProcCPU)

	top := ids.ProfUID(uint64(node)*100 + 1)
	proc.AddEntry(&state.ContainerEntry{
		ProfUID:  top,
		Category: state.CategoryTask,
		TimeRange: state.TimeRange{
			Create: ids.FromNs(0), HasCreate: true,
			Ready: ids.FromNs(100), Start: ids.FromNs(500), Stop: ids.FromNs(3000), HasStop: true,
		},
		NameFn:       func(*state.State) string { return "top_level_task" },
		ColorFn:      func(*state.State) ids.Color { return taskColor() },
		ProvenanceFn: func(*state.State) string { return `["alice", {"host": "node0", "pid": 4242}]` },
		Initiation:   ids.OpID(1),
		OpID:         ids.OpID(1),
		HasOpID:      true,
		CreationTime: ids.FromNs(0),
	})

	proc.AddEntry(&state.ContainerEntry{
		ProfUID:  ids.ProfUID(uint64(node)*100 + 2),
		Category: state.CategoryTask,
		TimeRange: state.TimeRange{
			Create: ids.FromNs(3000), HasCreate: true,
			Ready: ids.FromNs(3200), Start: ids.FromNs(3200), Stop: ids.FromNs(4000), HasStop: true,
		},
		Waiters: []state.Waiter{
			{
				Start: ids.FromNs(3400), Ready: ids.FromNs(3600), End: ids.FromNs(3700),
				Event: copyPrecond, HasEvent: true,
				Backtrace: "main -> launch_subtask -> wait",
			},
		},
		NameFn:       func(*state.State) string { return "dependent_task" },
		ColorFn:      func(*state.State) ids.Color { return taskColor() },
		Creator:      top,
		HasCreator:   true,
		CreationTime: ids.FromNs(3000),
		Critical:     taskDoneEvent,
		HasCritical:  true,
	})

	proc.AddEntry(&state.ContainerEntry{
		ProfUID:  ids.ProfUID(uint64(node)*100 + 3),
		Category: state.CategoryMapperCall,
		TimeRange: state.TimeRange{
			Ready: ids.FromNs(400), Start: ids.FromNs(400), Stop: ids.FromNs(480), HasStop: true,
		},
		Level:        1,
		NameFn:       func(*state.State) string { return "map_task" },
		ColorFn:      func(*state.State) ids.Color { return ids.ColorCrimson },
		Creator:      top,
		HasCreator:   true,
		CreationTime: ids.FromNs(400),
		MapperName:   "default_mapper",
		MapperProc:   ids.ProcID{Node: node, Local: 0},
		HasMapper:    true,
	})

	st.AddProc(proc)
}

func addGPU(st *state.State, node ids.NodeID) {
	proc := state.NewProcState(ids.ProcID{Node: node, Local: 1}, state.ProcGPU)
	proc.AddEntry(&state.ContainerEntry{
		ProfUID:  ids.ProfUID(uint64(node)*100 + 10),
		Category: state.CategoryMetaTask,
		TimeRange: state.TimeRange{
			Create: ids.FromNs(200), HasCreate: true,
			Spawn: ids.FromNs(150), HasSpawn: true,
			Ready: ids.FromNs(600), Start: ids.FromNs(900), Stop: ids.FromNs(2200), HasStop: true,
		},
		NameFn:  func(*state.State) string { return "gpu_kernel" },
		ColorFn: func(*state.State) ids.Color { return ids.ColorOliveDrab },
	})
	st.AddProc(proc)
}

func addMemory(st *state.State) {
	mem := state.NewMemState(ids.MemID{Node: 0, Local: 0}, state.MemSystem)
	mem.SetCapacityBytes(1 << 20)
	mem.AddEntry(&state.ContainerEntry{
		ProfUID:   201,
		Category:  state.CategoryInstance,
		Level:     0,
		SizeBytes: 1 << 18,
		TimeRange: state.TimeRange{
			Create: ids.FromNs(0), HasCreate: true,
			Start: ids.FromNs(0), Stop: ids.FromNs(4000), HasStop: true,
		},
		NameFn:               func(*state.State) string { return "instance(fspace=0)" },
		ColorFn:              func(*state.State) ids.Color { return ids.ColorCrimson },
		Initiation:           ids.OpID(1),
		Creator:              1,
		HasCreator:           true,
		CreationTime:         ids.FromNs(0),
		AllocatedImmediately: true,
	})
	mem.AddEntry(&state.ContainerEntry{
		ProfUID: 202, Level: 1,
		Category:  state.CategoryInstance,
		SizeBytes: 1 << 17,
		TimeRange: state.TimeRange{
			Create: ids.FromNs(1200), HasCreate: true,
			Ready: ids.FromNs(1500), Start: ids.FromNs(1500), Stop: ids.FromNs(3500), HasStop: true,
		},
		NameFn:       func(*state.State) string { return "instance(fspace=1)" },
		ColorFn:      func(*state.State) ids.Color { return ids.ColorCrimson },
		Creator:      1,
		HasCreator:   true,
		CreationTime: ids.FromNs(1200),
		// Placed only after instance 201 shrank the free pool: waits on
		// deallocation rather than allocating immediately.
		AllocatedImmediately: false,
	})
	st.AddMem(mem)
	st.BindInstance(1, mem.ID, 201)
	st.BindInstance(2, mem.ID, 202)
}

func addChannel(st *state.State) {
	ch := state.NewChanState(ids.ChanID{
		Kind: ids.ChanKindCopy,
		Src:  ids.MemID{Node: 0, Local: 0},
		Dst:  ids.MemID{Node: 1, Local: 0},
		Node: 0,
	})
	ch.AddEntry(&state.ContainerEntry{
		ProfUID:  301,
		Category: state.CategoryCopy,
		TimeRange: state.TimeRange{
			Create: ids.FromNs(800), HasCreate: true,
			Ready: ids.FromNs(1000), Start: ids.FromNs(1000), Stop: ids.FromNs(1800), HasStop: true,
		},
		NameFn:       func(*state.State) string { return "copy" },
		ColorFn:      func(*state.State) ids.Color { return ids.ColorOrangeRed },
		Initiation:   ids.OpID(1),
		SizeBytes:    1 << 16,
		ChanReqs:     []string{"Requirement 0", "Source: instance(fspace=0)", "Destination: instance(fspace=1)", "Number of Hops: 1"},
		Creator:      1,
		HasCreator:   true,
		CreationTime: ids.FromNs(800),
	})
	st.AddChan(ch)
}

func addOpsAndEvents(st *state.State) {
	st.AddOp(ids.OpID(1), &state.OpInfo{
		Name:     "top_level_task",
		TaskUID:  1,
		HasTask:  true,
		InstUIDs: []ids.InstUID{1, 2},
	})

	st.AddEvent(taskDoneEvent, &state.EventEntry{
		Kind:        state.EventTask,
		Event:       taskDoneEvent,
		Creator:     1,
		HasCreator:  true,
		TriggerTime: ids.FromNs(3000),
		Node:        0,
	})
	st.AddEvent(copyPrecond, &state.EventEntry{
		Kind:        state.EventCopy,
		Event:       copyPrecond,
		Creator:     301,
		HasCreator:  true,
		TriggerTime: ids.FromNs(1800),
		Node:        0,
	})
}
