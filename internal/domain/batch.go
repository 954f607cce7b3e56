package domain

type OpKind int

const (
	OpInsertReservation OpKind = iota + 1
	OpUpdateReservation
	OpUpdateRoom
	OpInsertTask
)

func (k OpKind) String() string {
	switch k {
	case OpInsertReservation:
		return "insert reservation"
	case OpUpdateReservation:
		return "update reservation"
	case OpUpdateRoom:
		return "update room"
	case OpInsertTask:
		return "insert task"
	}
	return "unknown"
}

type BatchOp struct {
	Kind             OpKind
	TargetID         string
	Reservation      Reservation
	ReservationPatch ReservationPatch
	RoomPatch        RoomPatch
	Task             HousekeepingTask
}

// Batch is an ordered set of writes that a Store commits all-or-nothing.
type Batch struct{ ops []BatchOp }

func (b *Batch) InsertReservation(r Reservation) {
	b.ops = append(b.ops, BatchOp{Kind: OpInsertReservation, Reservation: r})
}

func (b *Batch) UpdateReservation(id string, p ReservationPatch) {
	b.ops = append(b.ops, BatchOp{Kind: OpUpdateReservation, TargetID: id, ReservationPatch: p})
}

func (b *Batch) UpdateRoom(id string, p RoomPatch) {
	b.ops = append(b.ops, BatchOp{Kind: OpUpdateRoom, TargetID: id, RoomPatch: p})
}

func (b *Batch) InsertTask(t HousekeepingTask) {
	b.ops = append(b.ops, BatchOp{Kind: OpInsertTask, Task: t})
}

func (b *Batch) Ops() []BatchOp { return b.ops }
func (b *Batch) Len() int       { return len(b.ops) }
