package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/razzie/blunder/engine"

	"github.com/MF-FOOM/chessgpt/pkg/connector"
)

// A headless room client backed by the blunder engine. Point it at a room
// and it answers whenever its color is to move, so a model can play
// against a real engine instead of another model.

type Bot struct {
	search engine.Search
}

func NewBot(moveTime int64, maxDepth uint8) *Bot {
	engine.InitBitboards()
	engine.InitTables()
	engine.InitZobrist()
	engine.InitEvalBitboards()
	engine.InitSearchTables()

	bot := &Bot{}
	bot.search.TT.Resize(engine.DefaultTTSize, engine.SearchEntrySize)
	timeLeft, increment, movesToGo, maxNodeCount := engine.InfiniteTime, engine.NoValue, int16(engine.NoValue), uint64(math.MaxUint64)
	bot.search.Timer.Setup(
		timeLeft,
		increment,
		moveTime,
		movesToGo,
		maxDepth,
		maxNodeCount,
	)
	return bot
}

// BestMove searches the position given by FEN and returns the chosen move
// in coordinate form.
func (bot *Bot) BestMove(fen string) string {
	bot.search.Setup(fen)
	return bot.search.Search().String()
}

func main() {
	color := flag.String("color", "b", "color the bot plays (w|b)")
	moveTime := flag.Int64("movetime", 5000, "search time per move in milliseconds")
	depth := flag.Uint("depth", 20, "maximum search depth")
	flag.Parse()

	if flag.NArg() != 1 || (*color != "w" && *color != "b") {
		fmt.Println("Usage: bot [-color w|b] [-movetime ms] [-depth n] <room URL>")
		os.Exit(1)
	}

	conn, err := connector.NewConnection(flag.Arg(0))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer conn.Close()

	bot := NewBot(*moveTime, uint8(*depth))

	for update := range conn.C {
		if len(update.Opening) > 0 {
			fmt.Println(update.Opening, "-", update.Status)
		} else {
			fmt.Println(update.Status)
		}
		if update.IsGameOver {
			return
		}
		if update.Turn == *color {
			move := bot.BestMove(update.FEN)
			valid := conn.Move(move)
			fmt.Println("engine move:", move, "accepted:", valid)
		}
	}
}
