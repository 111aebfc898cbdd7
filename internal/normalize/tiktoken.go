package normalize

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the BPE vocabulary used to count resume tokens.
const DefaultEncoding = "r50k_base"

var loaderOnce sync.Once

// TiktokenTokenizer counts tokens with a real BPE vocabulary. Ranks are
// loaded from the embedded offline loader, no network access is needed.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encoding, err)
	}

	return &TiktokenTokenizer{enc: enc}, nil
}

// Ends decodes every token back to its bytes and accumulates their lengths.
// A token may end inside a multi-byte rune.
func (t *TiktokenTokenizer) Ends(text string) []int {
	if text == "" {
		return nil
	}

	tokens := t.enc.Encode(text, nil, nil)
	ends := make([]int, 0, len(tokens))

	offset := 0
	for _, token := range tokens {
		offset += len(t.enc.Decode([]int{token}))
		ends = append(ends, offset)
	}

	return ends
}

var (
	defaultOnce      sync.Once
	defaultTokenizer Tokenizer
)

// defaultTok returns the shared r50k tokenizer, or PieceTokenizer when the
// vocabulary cannot be loaded.
func defaultTok() Tokenizer {
	defaultOnce.Do(func() {
		tok, err := NewTiktokenTokenizer(DefaultEncoding)
		if err != nil {
			defaultTokenizer = PieceTokenizer{}
			return
		}
		defaultTokenizer = tok
	})
	return defaultTokenizer
}
