package normalize

import (
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits text into model tokens.
type Tokenizer interface {
	// Ends returns the byte offset just past each token, in order.
	Ends(text string) []int
}

const (
	maxLetterPiece = 4
	maxDigitPiece  = 3
)

// PieceTokenizer approximates BPE segmentation without a vocabulary:
// letter runs are cut into pieces of up to four runes, digit runs into
// pieces of up to three, and any other visible rune is a token on its own.
// Whitespace only separates tokens.
type PieceTokenizer struct{}

func (PieceTokenizer) Ends(text string) []int {
	ends := make([]int, 0, len(text)/maxLetterPiece+1)

	var (
		class   runeClass
		pieceSz int
		offset  int
	)

	for offset < len(text) {
		r, size := utf8.DecodeRuneInString(text[offset:])
		next := classify(r)

		if class != classNone && (next != class || pieceSz == class.limit()) {
			ends = append(ends, offset)
			class, pieceSz = classNone, 0
		}

		switch next {
		case classSpace:
		case classSymbol:
			ends = append(ends, offset+size)
		default:
			class = next
			pieceSz++
		}

		offset += size
	}

	if class != classNone {
		ends = append(ends, offset)
	}

	return ends
}

type runeClass int

const (
	classNone runeClass = iota
	classSpace
	classLetter
	classDigit
	classSymbol
)

func (c runeClass) limit() int {
	switch c {
	case classLetter:
		return maxLetterPiece
	case classDigit:
		return maxDigitPiece
	default:
		return 1
	}
}

func classify(r rune) runeClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r), unicode.IsMark(r):
		return classLetter
	case unicode.IsDigit(r):
		return classDigit
	default:
		return classSymbol
	}
}
