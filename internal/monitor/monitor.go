package monitor

import (
	"time"

	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/protocol"
	"surgical-scheduling-backend/internal/store"
)

// Snapshot is a derived, point-in-time summary of system state. It is
// never persisted and is recomputed on every request.
type Snapshot struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	TotalCases    int             `json:"total_cases"`
	CasesByStatus map[string]int  `json:"cases_by_status"`
	Rooms         []RoomOccupancy `json:"rooms"`
}

// RoomOccupancy flags whether a room has a booking covering the snapshot
// instant.
type RoomOccupancy struct {
	RoomID   string `json:"room_id"`
	Occupied bool   `json:"occupied"`
}

// Monitor produces snapshots from the store. Read-only: it never mutates
// state.
type Monitor struct {
	store store.Store
}

func NewMonitor(st store.Store) *Monitor {
	return &Monitor{store: st}
}

// Snapshot summarizes the store's state as of now.
func (m *Monitor) Snapshot(now time.Time) (*Snapshot, error) {
	cases, err := m.store.ListCases()
	if err != nil {
		return nil, err
	}
	bookings, err := m.store.ListBookings()
	if err != nil {
		return nil, err
	}
	rooms, err := m.store.ListRooms()
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int)
	for i := range cases {
		byStatus[cases[i].DeriveStatus()]++
	}

	occupied := make(map[string]bool)
	for i := range bookings {
		b := &bookings[i]
		if !now.Before(b.StartAt) && now.Before(b.EndAt) {
			occupied[b.RoomID] = true
		}
	}

	occupancy := make([]RoomOccupancy, 0, len(rooms))
	for _, room := range rooms {
		occupancy = append(occupancy, RoomOccupancy{RoomID: room.ID, Occupied: occupied[room.ID]})
	}

	return &Snapshot{
		GeneratedAt:   now,
		TotalCases:    len(cases),
		CasesByStatus: byStatus,
		Rooms:         occupancy,
	}, nil
}

// Register wires the monitor's query vocabulary into the router.
func (m *Monitor) Register(router *dispatch.Router) {
	router.Register(protocol.RoleMonitor, protocol.KindSnapshot, m.handleSnapshot)
}

func (m *Monitor) handleSnapshot(env *protocol.Envelope) (*protocol.Envelope, error) {
	snapshot, err := m.Snapshot(time.Now())
	if err != nil {
		return nil, err
	}
	reply := protocol.NewEnvelope(
		protocol.PerformativeInform,
		protocol.RoleMonitor,
		env.Sender,
		protocol.KindSnapshot,
		snapshot,
	)
	return reply, nil
}
