package datarecording

import (
	"context"

	"github.com/sarchlab/orbitsync/alignment"
	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/orderparam"
	"github.com/sarchlab/orbitsync/simulation"
)

// Table names used by the session recorder.
const (
	SessionTable        = "session"
	OrderParameterTable = "order_parameter"
	AlignmentTable      = "alignment_event"
	FullSyncTable       = "full_sync"
)

// A SessionEntry describes one oscillator of a recorded session.
type SessionEntry struct {
	SessionID  string
	Oscillator int
	PeriodMs   float64
}

// An OrderParameterEntry is the order parameter of one frame.
type OrderParameterEntry struct {
	SessionID      string
	TimeMs         float64
	OrderParameter float64
	FullSync       bool
}

// An AlignmentEntry is one oscillator reaching the top.
type AlignmentEntry struct {
	SessionID  string
	Oscillator int
	TimeMs     float64
}

// A FullSyncEntry marks the group entering full synchronization.
type FullSyncEntry struct {
	SessionID      string
	TimeMs         float64
	OrderParameter float64
}

// A SessionRecorder writes the frames and events of a session into a
// DataRecorder. Alignment and full sync events arrive through the hook side,
// frames through RecordFrame.
type SessionRecorder struct {
	recorder  DataRecorder
	sessionID string
}

// NewSessionRecorder creates the tables and records the oscillators of the
// session.
func NewSessionRecorder(
	recorder DataRecorder,
	session *simulation.Session,
) *SessionRecorder {
	r := &SessionRecorder{
		recorder:  recorder,
		sessionID: session.ID(),
	}

	recorder.CreateTable(SessionTable, SessionEntry{})
	recorder.CreateTable(OrderParameterTable, OrderParameterEntry{})
	recorder.CreateTable(AlignmentTable, AlignmentEntry{})
	recorder.CreateTable(FullSyncTable, FullSyncEntry{})

	r.RecordOscillators(session.Periods())

	return r
}

// RecordOscillators stores the periods of the session, e.g. after
// reconfiguration.
func (r *SessionRecorder) RecordOscillators(periods []float64) {
	for i, p := range periods {
		r.recorder.InsertData(SessionTable, SessionEntry{
			SessionID:  r.sessionID,
			Oscillator: i,
			PeriodMs:   p,
		})
	}
}

// RecordFrame stores the order parameter of a frame.
func (r *SessionRecorder) RecordFrame(frame simulation.Frame) {
	r.recorder.InsertData(OrderParameterTable, OrderParameterEntry{
		SessionID:      r.sessionID,
		TimeMs:         float64(frame.Time),
		OrderParameter: frame.OrderParameter,
		FullSync:       frame.FullSync,
	})
}

// Func records alignment and full sync events.
func (r *SessionRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case alignment.HookPosTopReached:
		evt := ctx.Item.(alignment.Event)
		r.recorder.InsertData(AlignmentTable, AlignmentEntry{
			SessionID:  r.sessionID,
			Oscillator: evt.OscillatorIndex,
			TimeMs:     float64(evt.Time),
		})
	case orderparam.HookPosFullSync:
		r.recorder.InsertData(FullSyncTable, FullSyncEntry{
			SessionID:      r.sessionID,
			TimeMs:         ctx.Time,
			OrderParameter: ctx.Item.(float64),
		})
	}
}

// Flush writes buffered entries.
func (r *SessionRecorder) Flush() {
	r.recorder.Flush()
}

// MapTables registers the session tables on a reader.
func MapTables(reader DataReader) {
	reader.MapTable(SessionTable, SessionEntry{})
	reader.MapTable(OrderParameterTable, OrderParameterEntry{})
	reader.MapTable(AlignmentTable, AlignmentEntry{})
	reader.MapTable(FullSyncTable, FullSyncEntry{})
}

// Sessions returns the IDs of the recorded sessions in recording order.
func Sessions(ctx context.Context, reader DataReader) ([]string, error) {
	entries, err := queryEntries[SessionEntry](ctx, reader, SessionTable,
		QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)

	for _, e := range entries {
		if !seen[e.SessionID] {
			seen[e.SessionID] = true
			ids = append(ids, e.SessionID)
		}
	}

	return ids, nil
}

// Periods returns the most recently recorded period of every oscillator of
// a session.
func Periods(
	ctx context.Context,
	reader DataReader,
	sessionID string,
) ([]float64, error) {
	entries, err := queryEntries[SessionEntry](ctx, reader, SessionTable,
		bySession(sessionID, "rowid"))
	if err != nil {
		return nil, err
	}

	var periods []float64
	for _, e := range entries {
		for len(periods) <= e.Oscillator {
			periods = append(periods, 0)
		}
		periods[e.Oscillator] = e.PeriodMs
	}

	return periods, nil
}

// FullSyncs returns the full sync events of a session in time order.
func FullSyncs(
	ctx context.Context,
	reader DataReader,
	sessionID string,
) ([]FullSyncEntry, error) {
	return queryEntries[FullSyncEntry](ctx, reader, FullSyncTable,
		bySession(sessionID, "TimeMs"))
}

// AlignmentEvents returns the alignment events of a session in time order.
func AlignmentEvents(
	ctx context.Context,
	reader DataReader,
	sessionID string,
) ([]AlignmentEntry, error) {
	return queryEntries[AlignmentEntry](ctx, reader, AlignmentTable,
		bySession(sessionID, "TimeMs, Oscillator"))
}

// CountRows returns the number of rows in a mapped table.
func CountRows(ctx context.Context, reader DataReader, table string) (int, error) {
	_, total, err := reader.Query(ctx, table, QueryParams{Limit: 1})
	return total, err
}

func bySession(sessionID, orderBy string) QueryParams {
	return QueryParams{
		Where:   "SessionID = ?",
		Args:    []any{sessionID},
		OrderBy: orderBy,
	}
}

func queryEntries[T any](
	ctx context.Context,
	reader DataReader,
	table string,
	params QueryParams,
) ([]T, error) {
	results, _, err := reader.Query(ctx, table, params)
	if err != nil {
		return nil, err
	}

	entries := make([]T, 0, len(results))
	for _, r := range results {
		entries = append(entries, *r.(*T))
	}

	return entries, nil
}
