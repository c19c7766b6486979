// Package queue manages the submission queue snapshot: the queue_id ->
// sub_id -> submission mapping shared with the submission pipeline.
package queue

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/msageha/wfinterop/internal/lock"
	"github.com/msageha/wfinterop/internal/model"
	"github.com/msageha/wfinterop/internal/snapshot"
	atomicyaml "github.com/msageha/wfinterop/internal/yaml"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidField       = errors.New("submission field name is required")
)

// Store reads and writes one submission queue file. Writers serialize on a
// flock in lockDir; JSON files are written atomically.
type Store struct {
	path    string
	lockDir string
	loader  snapshot.Loader
	locks   *lock.MutexMap
}

func NewStore(path, lockDir string, loader snapshot.Loader) *Store {
	return &Store{
		path:    path,
		lockDir: lockDir,
		loader:  loader,
		locks:   lock.NewMutexMap(),
	}
}

func (s *Store) Path() string { return s.path }

func (s *Store) load() (model.SubmissionQueue, error) {
	var sq model.SubmissionQueue
	if err := s.loader.Load(s.path, &sq); err != nil {
		return model.SubmissionQueue{}, fmt.Errorf("load submission queue: %w", err)
	}
	return sq, nil
}

// Bundle returns submission subID of queueID.
func (s *Store) Bundle(queueID, subID string) (model.Submission, error) {
	sq, err := s.load()
	if err != nil {
		return model.Submission{}, err
	}
	subs, ok := sq.Get(queueID)
	if !ok {
		return model.Submission{}, fmt.Errorf("%w: queue=%s sub=%s", ErrSubmissionNotFound, queueID, subID)
	}
	sub, ok := subs.Get(subID)
	if !ok {
		return model.Submission{}, fmt.Errorf("%w: queue=%s sub=%s", ErrSubmissionNotFound, queueID, subID)
	}
	return sub, nil
}

// IDs lists the submissions of queueID whose status is in statuses and not
// in exclude, in file order. A nil statuses means DefaultQueueStatuses; an
// unknown queue yields no ids.
func (s *Store) IDs(queueID string, statuses, exclude []model.Status) ([]string, error) {
	if statuses == nil {
		statuses = model.DefaultQueueStatuses
	}
	want := make([]model.Status, 0, len(statuses))
	for _, st := range statuses {
		if !slices.Contains(exclude, st) {
			want = append(want, st)
		}
	}

	sq, err := s.load()
	if err != nil {
		return nil, err
	}
	subs, _ := sq.Get(queueID)
	ids := make([]string, 0, subs.Len())
	for _, id := range subs.Keys() {
		sub, _ := subs.Get(id)
		if slices.Contains(want, sub.Status) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Create queues a new RECEIVED submission and returns its id.
func (s *Store) Create(queueID string, data any, wesID string) (string, error) {
	id, err := model.GenerateID(model.IDTypeSubmission)
	if err != nil {
		return "", err
	}
	err = s.update(func(sq *model.SubmissionQueue) error {
		subs, _ := sq.Get(queueID)
		subs.Set(id, model.Submission{
			Status: model.StatusReceived,
			Data:   data,
			WESID:  wesID,
		})
		sq.Set(queueID, subs)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update sets one field of an existing submission. status, wes_id and
// run_id take strings and run_log takes a RunLog; any other name is stored
// as an extra key of the submission.
func (s *Store) Update(queueID, subID, field string, value any) error {
	return s.update(func(sq *model.SubmissionQueue) error {
		subs, ok := sq.Get(queueID)
		if !ok {
			return fmt.Errorf("%w: queue=%s sub=%s", ErrSubmissionNotFound, queueID, subID)
		}
		sub, ok := subs.Get(subID)
		if !ok {
			return fmt.Errorf("%w: queue=%s sub=%s", ErrSubmissionNotFound, queueID, subID)
		}
		if err := setField(&sub, field, value); err != nil {
			return err
		}
		subs.Set(subID, sub)
		sq.Set(queueID, subs)
		return nil
	})
}

func setField(sub *model.Submission, field string, value any) error {
	switch field {
	case "data":
		sub.Data = value
	case "status":
		str, err := stringValue(field, value)
		if err != nil {
			return err
		}
		sub.Status = model.Status(str)
	case "wes_id":
		str, err := stringValue(field, value)
		if err != nil {
			return err
		}
		sub.WESID = str
	case "run_id":
		str, err := stringValue(field, value)
		if err != nil {
			return err
		}
		sub.RunID = str
	case "run_log":
		switch rl := value.(type) {
		case model.RunLog:
			sub.RunLog = &rl
		case *model.RunLog:
			sub.RunLog = rl
		default:
			return fmt.Errorf("field run_log: want RunLog, got %T", value)
		}
	case "":
		return ErrInvalidField
	default:
		if sub.Extra == nil {
			sub.Extra = make(map[string]any)
		}
		sub.Extra[field] = value
	}
	return nil
}

func stringValue(field string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case model.Status:
		return string(v), nil
	default:
		return "", fmt.Errorf("field %s: want string, got %T", field, value)
	}
}

func (s *Store) update(fn func(sq *model.SubmissionQueue) error) error {
	lockPath := filepath.Join(s.lockDir, filepath.Base(s.path)+".lock")
	return lock.With(s.locks, s.path, lockPath, func() error {
		sq, err := s.load()
		if err != nil {
			return err
		}
		if err := fn(&sq); err != nil {
			return err
		}
		if err := atomicyaml.AtomicWriteJSON(s.path, sq); err != nil {
			return fmt.Errorf("write submission queue: %w", err)
		}
		return nil
	})
}
