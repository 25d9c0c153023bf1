package puzzle

type MoveResult uint8

const (
	Rejected MoveResult = iota
	Moved
	MovedWin
)

func (m MoveResult) String() string {
	switch m {
	case Rejected:
		return "rejected"
	case Moved:
		return "moved"
	case MovedWin:
		return "won"
	default:
		return "unknown"
	}
}

// Accepted reports whether the move changed the board.
func (m MoveResult) Accepted() bool {
	return m == Moved || m == MovedWin
}
