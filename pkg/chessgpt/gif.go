package chessgpt

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/notnil/chess"
	"github.com/razzie/chessimage"
)

const boardSize = 512

var boardPalette = buildPalette()

// MoveHistoryToGIF renders the whole game as an animated GIF, one frame per
// position, with the last move and a check highlighted.
func MoveHistoryToGIF(w io.Writer, moves []*chess.Move, positions []*chess.Position) error {
	anim := &gif.GIF{LoopCount: -1}

	initialPos := positions[0]
	positions = positions[1:]

	frame, err := renderFrame(initialPos, nil)
	if err != nil {
		return err
	}
	anim.Image = append(anim.Image, frame)
	anim.Delay = append(anim.Delay, 100)

	for i, move := range moves {
		frame, err := renderFrame(positions[i], move)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100)
	}

	return gif.EncodeAll(w, anim)
}

func renderFrame(pos *chess.Position, move *chess.Move) (*image.Paletted, error) {
	r, err := chessimage.NewRendererFromFEN(pos.String())
	if err != nil {
		return nil, err
	}

	if move != nil {
		from, _ := chessimage.TileFromAN(move.S1().String())
		to, _ := chessimage.TileFromAN(move.S2().String())
		r.SetLastMove(chessimage.LastMove{
			From: from,
			To:   to,
		})
		if move.HasTag(chess.Check) {
			kingSq, _ := chessimage.TileFromAN(pos.Board().KingSquare(pos.Turn()).String())
			r.SetCheckTile(kingSq)
		}
	}

	img, err := r.Render(chessimage.Options{
		PieceRatio: 1,
		BoardSize:  boardSize,
	})
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	frame := image.NewPaletted(bounds, boardPalette)
	draw.Draw(frame, bounds, img, image.Point{}, draw.Over)
	return frame, nil
}

func rgb(r, g, b uint8) color.Color {
	return &color.RGBA{R: r, G: g, B: b, A: 255}
}

func mix(c1, c2 color.Color) color.Color {
	r1, g1, b1, _ := c1.RGBA()
	r2, g2, b2, _ := c2.RGBA()
	return &color.RGBA{
		R: uint8((r1 + r2) / 2),
		G: uint8((g1 + g2) / 2),
		B: uint8((b1 + b2) / 2),
		A: 255,
	}
}

func buildPalette() []color.Color {
	lightSq := rgb(240, 217, 181)
	darkSq := rgb(181, 136, 99)
	lightSqHigh := rgb(247, 193, 99)
	darkSqHigh := rgb(215, 149, 54)
	check := rgb(255, 0, 0)

	var palette []color.Color
	pieceColors := []color.Color{color.White, color.Black, &color.Gray{Y: 128}}
	sqColors := []color.Color{lightSq, darkSq, lightSqHigh, darkSqHigh, check}

	palette = append(palette, pieceColors...)
	palette = append(palette, sqColors...)
	for _, pieceColor := range pieceColors {
		for _, sqColor := range sqColors {
			palette = append(palette, mix(pieceColor, sqColor))
		}
	}
	return palette
}
