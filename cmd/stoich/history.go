package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/stoich"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const historyLockTimeout = 5 * time.Second

type historyEntry struct {
	AnalysisID    string             `json:"analysis_id"`
	Time          time.Time          `json:"time"`
	Input         stoich.Composition `json:"input"`
	FormulaString string             `json:"formula_string"`
	Multiplier    int                `json:"multiplier"`
	Deviation     float64            `json:"deviation"`
}

func newHistoryEntry(a *stoich.Analysis) historyEntry {
	return historyEntry{
		AnalysisID:    uuid.NewString(),
		Time:          time.Now().UTC(),
		Input:         a.Input,
		FormulaString: a.FormulaString,
		Multiplier:    a.Multiplier,
		Deviation:     a.Deviation,
	}
}

// lockHistory takes an exclusive lock on path+".lock".
// The caller must unlock it.
func lockHistory(path string) (*flock.Flock, error) {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	lock := flock.New(lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), historyLockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, errors.New("timeout waiting for history lock")
	}
	return lock, nil
}

// appendHistory writes e as one JSON line at the end of the file at path.
func appendHistory(path string, e historyEntry) error {
	lock, err := lockHistory(path)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err = f.Write(line); err != nil {
		f.Close()
		return err
	}
	log.Debug("history appended", "path", path, "analysis_id", e.AnalysisID)
	return f.Close()
}
