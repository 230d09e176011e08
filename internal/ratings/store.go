package ratings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
)

// ErrDataLoad marks a missing or malformed base ratings snapshot. Fatal at
// startup.
var ErrDataLoad = errors.New("ratings: data load failed")

// ErrPersistence marks an append that could not be flushed and forced to
// stable storage. The in-memory state is left unchanged so callers may
// retry the same batch.
var ErrPersistence = errors.New("ratings: durable append failed")

const logHeader = "userId,movieId,rating,timestamp"

// Stats summarizes the current logical rating set.
type Stats struct {
	Ratings int
	Users   int
}

// Store merges an immutable base rating snapshot with an append-only CSV
// log. The base snapshot is loaded once and shared read-only; the log is
// external mutable state shared across sessions, so it is re-read whenever
// the current rating set is requested.
//
// NextUserID and Append share one critical section, and NextUserID keeps an
// issued-id high-water mark, so two sessions allocating ids before either
// has appended cannot collide within this process.
type Store struct {
	base    []domain.Rating
	logPath string
	logger  *log.Logger

	mu     sync.Mutex
	issued int64
}

// Open loads the base snapshot from basePath and binds the store to the
// incremental log at logPath. The log does not need to exist yet.
func Open(basePath, logPath string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}

	f, err := os.Open(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataLoad, basePath, err)
	}
	defer f.Close()

	base, err := parseBase(f, basePath)
	if err != nil {
		return nil, err
	}

	logger.Printf("ratings: loaded %d base ratings from %s", len(base), basePath)
	return &Store{base: base, logPath: logPath, logger: logger}, nil
}

// parseBase reads the base snapshot strictly: the first row is a header and
// is skipped, every following row must carry four parseable fields.
func parseBase(r io.Reader, name string) ([]domain.Rating, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrDataLoad, name, err)
	}

	var out []domain.Rating
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s line %d: %v", ErrDataLoad, name, line, err)
		}
		rating, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrDataLoad, name, line, err)
		}
		out = append(out, rating)
	}
	return out, nil
}

func parseRecord(record []string) (domain.Rating, error) {
	if len(record) < 3 {
		return domain.Rating{}, fmt.Errorf("expected at least 3 fields, got %d", len(record))
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("invalid userId %q", record[0])
	}
	movieID, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("invalid movieId %q", record[1])
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("invalid rating %q", record[2])
	}

	var timestamp string
	if len(record) > 3 {
		timestamp = record[3]
	}
	return domain.Rating{UserID: userID, MovieID: movieID, Value: value, Timestamp: timestamp}, nil
}

// Current returns the logical rating set: the base snapshot followed by all
// log entries in append order. The log is read from disk on every call.
func (s *Store) Current() ([]domain.Rating, error) {
	entries, err := s.readLog()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Rating, 0, len(s.base)+len(entries))
	out = append(out, s.base...)
	out = append(out, entries...)
	return out, nil
}

// ForUser filters the current rating set down to one user.
func (s *Store) ForUser(userID int64) ([]domain.Rating, error) {
	all, err := s.Current()
	if err != nil {
		return nil, err
	}
	var out []domain.Rating
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// readLog parses the incremental log leniently. The header row and any
// ragged or unparseable rows (a crash mid-append can truncate the last
// line) are skipped with a warning rather than treated as fatal.
func (s *Store) readLog() ([]domain.Rating, error) {
	f, err := os.Open(s.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ratings: open log %s: %w", s.logPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var out []domain.Rating
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.logger.Printf("ratings: skipping unreadable log line %d: %v", line, err)
			continue
		}
		if line == 1 && len(record) > 0 && strings.TrimSpace(record[0]) == "userId" {
			continue
		}
		rating, err := parseRecord(record)
		if err != nil {
			s.logger.Printf("ratings: skipping malformed log line %d: %v", line, err)
			continue
		}
		out = append(out, rating)
	}
	return out, nil
}

// NextUserID allocates a fresh user id: one more than the highest id seen
// across the base snapshot and the log, or 1 when no ratings exist. Ids
// already issued by this process are never handed out twice, even before
// the first append for them lands.
func (s *Store) NextUserID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.Current()
	if err != nil {
		return 0, err
	}

	var max int64
	for _, r := range all {
		if r.UserID > max {
			max = r.UserID
		}
	}

	next := max + 1
	if next <= s.issued {
		next = s.issued + 1
	}
	s.issued = next
	return next, nil
}

// Append durably persists one rating per batch entry, all sharing userID
// and a fresh timestamp. The header row is written exactly once, only when
// the log file is being created. A nil error means the rows were flushed
// and fsynced; on error the log may hold a ragged trailing line, which
// readLog tolerates.
func (s *Store) Append(userID int64, batch map[int64]float64) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.logPath)
	creating := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open log %s: %v", ErrPersistence, s.logPath, err)
	}
	defer f.Close()

	movieIDs := make([]int64, 0, len(batch))
	for id := range batch {
		movieIDs = append(movieIDs, id)
	}
	sort.Slice(movieIDs, func(i, j int) bool { return movieIDs[i] < movieIDs[j] })

	w := csv.NewWriter(f)
	if creating {
		if err := w.Write(strings.Split(logHeader, ",")); err != nil {
			return fmt.Errorf("%w: write header: %v", ErrPersistence, err)
		}
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	for _, movieID := range movieIDs {
		record := []string{
			strconv.FormatInt(userID, 10),
			strconv.FormatInt(movieID, 10),
			strconv.FormatFloat(batch[movieID], 'g', -1, 64),
			timestamp,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("%w: write row: %v", ErrPersistence, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush log: %v", ErrPersistence, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: fsync log: %v", ErrPersistence, err)
	}

	s.logger.Printf("ratings: appended %d ratings for user %d", len(batch), userID)
	return nil
}

// Stats counts ratings and distinct users over the current rating set.
func (s *Store) Stats() (Stats, error) {
	all, err := s.Current()
	if err != nil {
		return Stats{}, err
	}
	users := make(map[int64]struct{}, len(all))
	for _, r := range all {
		users[r.UserID] = struct{}{}
	}
	return Stats{Ratings: len(all), Users: len(users)}, nil
}
