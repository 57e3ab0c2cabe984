// Package store persists processing runs and their audit logs in BoltDB.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"
)

const (
	runsBucket = "runs"
	logsBucket = "logs"
)

type RunKind string

const (
	RunStatement RunKind = "statement"
	RunReceipt   RunKind = "receipt"
)

// Run is one stored processing run. Exactly one of Statement and Invoice is
// set, depending on Kind.
type Run struct {
	ID        string               `json:"id"`
	Kind      RunKind              `json:"kind"`
	Document  string               `json:"document"`
	Statement *dto.StatementResult `json:"statement,omitempty"`
	Invoice   *dto.InvoiceResult   `json:"invoice,omitempty"`
	Logs      []dto.LogEntry       `json:"logs"`
	SavedAt   time.Time            `json:"saved_at"`
}

// BoltStore keeps runs keyed by run ID and an append-only log bucket per run.
type BoltStore struct {
	db  *bbolt.DB
	log zerolog.Logger
}

// NewBoltStore opens (or creates) the database file at path.
func NewBoltStore(path string, log zerolog.Logger) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(logsBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db, log: log}, nil
}

func (s *BoltStore) putRun(run *Run) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshaling run: %w", err)
		}
		return tx.Bucket([]byte(runsBucket)).Put([]byte(run.ID), data)
	})
}

// SaveStatement stores or replaces the statement run. Its logs are kept in
// the log bucket, not in the run record.
func (s *BoltStore) SaveStatement(ctx context.Context, res *dto.StatementResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := *res
	stored.Logs = nil
	return s.putRun(&Run{
		ID:        res.RunID,
		Kind:      RunStatement,
		Document:  res.Document,
		Statement: &stored,
		SavedAt:   time.Now().UTC(),
	})
}

// SaveInvoice stores or replaces the receipt run.
func (s *BoltStore) SaveInvoice(ctx context.Context, res *dto.InvoiceResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := *res
	stored.Logs = nil
	return s.putRun(&Run{
		ID:       res.RunID,
		Kind:     RunReceipt,
		Document: res.Document,
		Invoice:  &stored,
		SavedAt:  time.Now().UTC(),
	})
}

// AppendLog adds one entry to the run's audit trail.
func (s *BoltStore) AppendLog(runID string, entry dto.LogEntry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket([]byte(logsBucket)).CreateBucketIfNotExists([]byte(runID))
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling log entry: %w", err)
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, data)
	})
}

type runSink struct {
	store *BoltStore
	runID string
}

func (s runSink) Write(e dto.LogEntry) {
	if err := s.store.AppendLog(s.runID, e); err != nil {
		s.store.log.Error().Err(err).Str("run_id", s.runID).Msg("failed to append run log")
	}
}

// Sink returns a log sink appending to the run's audit trail.
func (s *BoltStore) Sink(runID string) logger.Sink {
	return runSink{store: s, runID: runID}
}

func readLogs(tx *bbolt.Tx, runID string) ([]dto.LogEntry, error) {
	entries := make([]dto.LogEntry, 0)
	bucket := tx.Bucket([]byte(logsBucket)).Bucket([]byte(runID))
	if bucket == nil {
		return entries, nil
	}
	err := bucket.ForEach(func(k, v []byte) error {
		var e dto.LogEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return fmt.Errorf("unmarshaling log entry: %w", err)
		}
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// GetRun loads a run together with its audit trail.
func (s *BoltStore) GetRun(runID string) (*Run, error) {
	var run *Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(runsBucket)).Get([]byte(runID))
		if data == nil {
			return fmt.Errorf("%w: %s", dto.ErrRunNotFound, runID)
		}
		if err := json.Unmarshal(data, &run); err != nil {
			return fmt.Errorf("unmarshaling run: %w", err)
		}
		logs, err := readLogs(tx, runID)
		if err != nil {
			return err
		}
		run.Logs = logs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns every stored run without logs, most recent first.
func (s *BoltStore) ListRuns() ([]*Run, error) {
	runs := make([]*Run, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("unmarshaling run: %w", err)
			}
			runs = append(runs, &run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].SavedAt.After(runs[j].SavedAt) })
	return runs, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
