package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/repository"
)

// memRepo keeps everything the handlers persist in memory.
type memRepo struct {
	mu       sync.Mutex
	players  []repository.Player
	sessions map[int64]*repository.GameSession
	slots    map[int64][]string
	nextId   int64

	// beforeUpdate runs ahead of every UpdateGameSession.
	beforeUpdate func(s *repository.GameSession)
	// failUpdate, when set, is returned by UpdateGameSession.
	failUpdate error
}

func newMemRepo() *memRepo {
	return &memRepo{
		sessions: make(map[int64]*repository.GameSession),
		slots:    make(map[int64][]string),
	}
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func (m *memRepo) CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.Username == params.Username {
			return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		}
	}
	m.nextId++
	p := repository.Player{
		PlayerId:     m.nextId,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    timestamptz(time.Now()),
		UpdatedAt:    timestamptz(time.Now()),
	}
	m.players = append(m.players, p)
	return &p, nil
}

func (m *memRepo) FetchPlayer(ctx context.Context, username string) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memRepo) CreateGameSession(
	ctx context.Context, board *puzzle.Board, params repository.CreateGameSessionParams,
) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextId++
	now := time.Now()
	s := &repository.GameSession{
		GameSessionId: m.nextId,
		PlayerId:      params.PlayerId,
		Ranked:        params.Ranked,
		Size:          board.Size(),
		HiddenNumber:  board.EmptyTileNumber(),
		Solved:        board.Solved(),
		State:         repository.EncodeState(board),
		StartedAt:     timestamptz(now),
		CreatedAt:     timestamptz(now),
		UpdatedAt:     timestamptz(now),
	}
	m.sessions[s.GameSessionId] = s
	copied := *s
	return &copied, nil
}

func (m *memRepo) FetchGameSession(ctx context.Context, id int64) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (m *memRepo) UpdateGameSession(
	ctx context.Context, id int64, params repository.UpdateGameSessionParams,
) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if m.failUpdate != nil {
		return nil, m.failUpdate
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(s)
	}
	if params.ExpectMoveCount != nil && *params.ExpectMoveCount != s.MoveCount {
		return nil, pgx.ErrNoRows
	}
	if params.Solved != nil {
		s.Solved = *params.Solved
	}
	if params.MoveCount != nil {
		s.MoveCount = *params.MoveCount
	}
	if params.State != nil {
		s.State = *params.State
	}
	if params.Ranked != nil {
		s.Ranked = *params.Ranked
	}
	if params.StartedAt != nil {
		s.StartedAt = timestamptz(*params.StartedAt)
	}
	if params.ClearEndedAt {
		s.EndedAt = pgtype.Timestamptz{}
	} else if params.EndedAt != nil {
		s.EndedAt = timestamptz(*params.EndedAt)
	}
	s.UpdatedAt = timestamptz(time.Now())
	copied := *s
	return &copied, nil
}

func (m *memRepo) setFailUpdate(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpdate = err
}

func (m *memRepo) username(playerId *int64) *string {
	if playerId == nil {
		return nil
	}
	for _, p := range m.players {
		if p.PlayerId == *playerId {
			name := p.Username
			return &name
		}
	}
	return nil
}

func (m *memRepo) GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var scores []repository.Highscore
	for _, s := range m.sessions {
		if !s.Solved || !s.Ranked || !s.EndedAt.Valid {
			continue
		}
		username := m.username(s.PlayerId)
		if filter.Size != nil && *filter.Size != s.Size {
			continue
		}
		if filter.Username != nil && (username == nil || *username != *filter.Username) {
			continue
		}
		scores = append(scores, repository.Highscore{
			GameSessionId: s.GameSessionId,
			Username:      username,
			Size:          s.Size,
			MoveCount:     s.MoveCount,
			PlaytimeMs:    float64(s.EndedAt.Time.Sub(s.StartedAt.Time).Milliseconds()),
		})
	}
	slices.SortFunc(scores, func(a, b repository.Highscore) int {
		return a.MoveCount - b.MoveCount
	})
	return scores, nil
}

func (m *memRepo) PlayerSlot(playerId int64) game.Slot {
	return memSlot{repo: m, playerId: playerId}
}

type memSlot struct {
	repo     *memRepo
	playerId int64
}

func (s memSlot) ReadLines(ctx context.Context) ([]string, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	lines, ok := s.repo.slots[s.playerId]
	if !ok {
		return nil, game.ErrNoSave
	}
	return lines, nil
}

func (s memSlot) WriteLines(ctx context.Context, lines []string) error {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	s.repo.slots[s.playerId] = slices.Clone(lines)
	return nil
}
