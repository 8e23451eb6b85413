package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/maze"
	"github.com/wricardo/gift-journey/game/memory"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/quiz"
	"github.com/wricardo/gift-journey/game/service"
)

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nContent: %s (%s)\nCreated: %s\n\n%s",
		info.ID, info.ContentID, info.ContentName,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatJourney(&info.Journey))
}

func formatJourney(status *journey.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Screen: %s | Completed: %d/%d\n", status.Screen, status.Completed, status.Total)
	for _, g := range status.Games {
		mark := "[ ]"
		if g.Completed {
			mark = "[✓]"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, g.ID)
	}
	if status.FinaleUnlocked {
		b.WriteString("Finale unlocked: use open_finale\n")
	}
	return b.String()
}

func formatSessionState(state *service.SessionState) string {
	if state == nil {
		return "No state available"
	}
	var b strings.Builder
	b.WriteString(formatJourney(&state.Journey))
	if state.Game != nil {
		b.WriteString("\n")
		b.WriteString(formatGameView(state.Game))
	}
	return b.String()
}

func formatGameView(view *service.GameView) string {
	switch {
	case view.Memory != nil:
		return formatMemory(view.Memory)
	case view.Quiz != nil:
		return formatQuiz(view.Quiz)
	case view.Maze != nil:
		return formatMaze(view.Maze)
	case view.Puzzle != nil:
		return formatPuzzle(view.Puzzle)
	}
	return fmt.Sprintf("Game: %s\n", view.Game)
}

func formatMemory(st *memory.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MEMORY | Pairs: %d/%d | Moves: %d\n", st.MatchedPairs, st.TotalPairs, st.Moves)
	for _, c := range st.Cards {
		switch {
		case c.Matched:
			fmt.Fprintf(&b, "  #%d ✓ %s\n", c.ID, c.ContentKey)
		case c.Revealed:
			fmt.Fprintf(&b, "  #%d   %s\n", c.ID, c.ContentKey)
		default:
			fmt.Fprintf(&b, "  #%d   ?\n", c.ID)
		}
	}
	if st.Resolving {
		b.WriteString("Mismatch showing; cards will turn back shortly\n")
	}
	if st.Complete {
		b.WriteString("🎉 All pairs matched!\n")
	}
	return b.String()
}

func formatQuiz(st *quiz.State) string {
	var b strings.Builder
	if st.Phase == quiz.PhaseComplete {
		fmt.Fprintf(&b, "QUIZ COMPLETE | Score: %d/%d | Result: %s\n", st.Score, st.Total, st.Tier)
		return b.String()
	}

	fmt.Fprintf(&b, "QUIZ | Question %d/%d | Score: %d\n", st.Index+1, st.Total, st.Score)
	fmt.Fprintf(&b, "%s\n", st.Prompt)
	for i, opt := range st.Options {
		mark := " "
		switch {
		case st.CorrectOption != nil && *st.CorrectOption == i:
			mark = "✓"
		case st.Selected == i:
			mark = "✗"
		}
		fmt.Fprintf(&b, "  %s %d) %s\n", mark, i, opt)
	}
	if st.Phase == quiz.PhaseRevealing {
		b.WriteString("Answer locked; next question shortly\n")
	}
	return b.String()
}

func formatMaze(st *maze.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MAZE | Position: (%d,%d) | Goal: (%d,%d) | Moves: %d\n",
		st.Player.Row, st.Player.Col, st.Goal.Row, st.Goal.Col, st.Moves)

	for r, row := range st.Layout {
		line := []byte(row)
		if r == st.Player.Row && st.Player.Col < len(line) {
			line[st.Player.Col] = 'P'
		}
		b.Write(line)
		b.WriteString("\n")
	}

	moves := make([]string, 0, len(st.PossibleMoves))
	for _, d := range st.PossibleMoves {
		moves = append(moves, string(d))
	}
	fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(moves, ", "))
	if st.Complete {
		b.WriteString("🎉 Goal reached!\n")
	}
	return b.String()
}

func formatTileRow(tiles []puzzle.Tile) string {
	labels := make([]string, len(tiles))
	for i, t := range tiles {
		labels[i] = fmt.Sprintf("[%d:%s]", t.ID, t.Label)
	}
	return strings.Join(labels, " ")
}

func formatPuzzle(st *puzzle.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PUZZLE | Moves: %d\n", st.Moves)

	byID := make(map[int]puzzle.Tile, len(st.Tiles))
	for _, t := range st.Tiles {
		byID[t.ID] = t
	}
	board := make([]puzzle.Tile, 0, len(st.Board))
	for _, id := range st.Board {
		board = append(board, byID[id])
	}
	b.WriteString("Board: " + formatTileRow(board) + "\n")

	if st.Selection.Active {
		fmt.Fprintf(&b, "Selected tile: %d\n", st.Selection.TileID)
	}
	if st.Solved {
		b.WriteString("🎉 Solved!\n")
		if st.Message != "" {
			b.WriteString(st.Message + "\n")
		}
	}
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Accepted {
		b.WriteString("✓ Accepted")
	} else {
		b.WriteString("○ Ignored")
	}
	if result.Direction != "" {
		fmt.Fprintf(&b, " (%s)", result.Direction)
	}
	b.WriteString("\n")
	for _, ev := range result.Events {
		fmt.Fprintf(&b, "Event: %s\n", ev.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatSessionState(result.State))
	return b.String()
}

func formatBulkMoveResult(result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}
	for _, ev := range result.Events {
		fmt.Fprintf(&b, "Event: %s\n", ev.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatSessionState(result.State))
	return b.String()
}

func formatFinale(view *service.FinaleView) string {
	var b strings.Builder
	b.WriteString(view.Letter)
	if view.Signature != "" {
		b.WriteString("\n\n" + view.Signature)
	}
	if view.Screen == journey.ScreenSecret {
		b.WriteString("\n\n")
		b.WriteString(view.SecretInvitation + "\n")
		b.WriteString(view.SecretQuestion + "\n")
		if view.SecretPromise != "" {
			b.WriteString(view.SecretPromise + "\n")
		}
		b.WriteString(view.SecretAccepted)
	} else {
		b.WriteString("\n\nThere is a secret: use reveal_secret")
	}
	return b.String()
}
