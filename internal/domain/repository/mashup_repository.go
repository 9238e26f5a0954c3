package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"

	"github.com/goccy/go-json"
)

// MashupRepository persists generated mashups. Records are written once and never updated.
type MashupRepository interface {
	// Create assigns m.ID and m.CreatedAt.
	Create(ctx context.Context, m *model.Mashup) error
	FindByID(ctx context.Context, id int64) (*model.Mashup, error)
}

type pgMashupRepository struct {
	db *sql.DB
}

func NewPgMashupRepository(db *sql.DB) MashupRepository {
	return &pgMashupRepository{db: db}
}

func (r *pgMashupRepository) Create(ctx context.Context, m *model.Mashup) error {
	requestData, problemsData, err := encodeMashup(m)
	if err != nil {
		return fmt.Errorf("pgMashupRepository.Create: %w", err)
	}

	query := `INSERT INTO mashups (request_data, problems, title)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, string(requestData), string(problemsData), m.Title).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgMashupRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMashupRepository) FindByID(ctx context.Context, id int64) (*model.Mashup, error) {
	query := `SELECT id, title, request_data, problems, created_at FROM mashups WHERE id = $1`

	m := &model.Mashup{}
	var requestData, problemsData []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Title, &requestData, &problemsData, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgMashupRepository.FindByID: %w", err)
	}

	if err := decodeMashup(m, requestData, problemsData); err != nil {
		return nil, fmt.Errorf("pgMashupRepository.FindByID: %w", err)
	}
	return m, nil
}

type storedMashup struct {
	title       string
	requestData []byte
	problems    []byte
	createdAt   time.Time
}

// memoryMashupRepository keeps the same serialized payloads as the SQL table,
// so callers never share slices with the store.
type memoryMashupRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]storedMashup
	now    func() time.Time
}

func NewMemoryMashupRepository() MashupRepository {
	return &memoryMashupRepository{
		rows: make(map[int64]storedMashup),
		now:  time.Now,
	}
}

func (r *memoryMashupRepository) Create(ctx context.Context, m *model.Mashup) error {
	requestData, problemsData, err := encodeMashup(m)
	if err != nil {
		return fmt.Errorf("memoryMashupRepository.Create: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	row := storedMashup{
		title:       m.Title,
		requestData: requestData,
		problems:    problemsData,
		createdAt:   r.now().UTC(),
	}
	r.rows[r.nextID] = row

	m.ID = r.nextID
	m.CreatedAt = row.createdAt
	return nil
}

func (r *memoryMashupRepository) FindByID(ctx context.Context, id int64) (*model.Mashup, error) {
	r.mu.RLock()
	row, ok := r.rows[id]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrNotFound
	}

	m := &model.Mashup{ID: id, Title: row.title, CreatedAt: row.createdAt}
	if err := decodeMashup(m, row.requestData, row.problems); err != nil {
		return nil, fmt.Errorf("memoryMashupRepository.FindByID: %w", err)
	}
	return m, nil
}

func encodeMashup(m *model.Mashup) (requestData, problemsData []byte, err error) {
	requestData, err = json.Marshal(m.Request)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}
	problems := m.Problems
	if problems == nil {
		problems = []model.Problem{}
	}
	problemsData, err = json.Marshal(problems)
	if err != nil {
		return nil, nil, fmt.Errorf("encode problems: %w", err)
	}
	return requestData, problemsData, nil
}

func decodeMashup(m *model.Mashup, requestData, problemsData []byte) error {
	if err := json.Unmarshal(requestData, &m.Request); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if err := json.Unmarshal(problemsData, &m.Problems); err != nil {
		return fmt.Errorf("decode problems: %w", err)
	}
	return nil
}
