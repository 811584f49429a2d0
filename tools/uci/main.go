package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"github.com/MF-FOOM/chessgpt/pkg/connector"
)

// Bridges a room to any UCI engine binary (stockfish and friends). The
// engine gets the full game so far, so repetition-aware search works.

func main() {
	color := flag.String("color", "b", "color the engine plays (w|b|w+b)")
	moveTime := flag.Duration("movetime", 30*time.Second, "search time per move")
	depth := flag.Int("depth", 20, "maximum search depth")
	flag.Parse()

	if flag.NArg() != 2 || (*color != "w" && *color != "b" && *color != "w+b") {
		fmt.Println("Usage: uci [-color w|b|w+b] [-movetime d] [-depth n] <room URL> <UCI engine path>")
		os.Exit(1)
	}

	conn, err := connector.NewConnection(flag.Arg(0))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer conn.Close()

	eng, err := uci.New(flag.Arg(1))
	if err != nil {
		fmt.Println("failed to start UCI engine:", err)
		os.Exit(1)
	}
	defer eng.Close()

	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	for update := range conn.C {
		if len(update.Opening) > 0 {
			fmt.Println(update.FEN, "-", update.Opening, "-", update.Status)
		} else {
			fmt.Println(update.FEN, "-", update.Status)
		}
		if update.IsGameOver {
			return
		}
		if update.Turn == *color || *color == "w+b" {
			move, err := bestMove(eng, update.PGN, *moveTime, *depth)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			fmt.Println("best move:", move)
			if !conn.Move(move) {
				fmt.Println("server rejected the move (someone else moved?)")
				if conn.State.Load() == update {
					os.Exit(1)
				}
			}
		}
	}
}

func bestMove(eng *uci.Engine, pgn string, moveTime time.Duration, depth int) (string, error) {
	game := chess.NewGame()
	if err := game.UnmarshalText([]byte(pgn)); err != nil {
		return "", fmt.Errorf("bad PGN from server: %w", err)
	}
	cmdPos := uci.CmdPosition{Position: game.Position()}
	cmdGo := uci.CmdGo{
		MoveTime: moveTime,
		Depth:    depth,
	}
	if err := eng.Run(cmdPos, cmdGo); err != nil {
		return "", err
	}
	move := eng.SearchResults().BestMove
	if err := game.Move(move); err != nil {
		return "", err
	}
	return chess.UCINotation{}.Encode(game.Position(), move), nil
}
