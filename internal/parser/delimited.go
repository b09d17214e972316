package parser

import (
	"github.com/calc-lang/calc-lang/internal/lexer"
)

type delimitedConfig struct {
	Closing   lexer.TokenType
	Separator lexer.TokenType
}

// parseDelimited parses a separator-delimited list ending at cfg.Closing.
// The list may be empty and may carry a trailing separator; both lists in
// the grammar allow them. parseItem is called with curTok on the first
// token of an element and must leave curTok on the element's last token.
// On success curTok is the closing token. A missing separator is the
// caller's expected-set error, so a stray token between elements reports
// "expected ',' or ')'".
func parseDelimited[T any](p *Parser, cfg delimitedConfig, parseItem func(idx int) (T, error)) ([]T, error) {
	var items []T

	if p.curTok.Type == cfg.Closing {
		return items, nil
	}

	for {
		item, err := parseItem(len(items))
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		switch p.peekTok.Type {
		case cfg.Separator:
			p.nextToken() // move to separator
			p.nextToken() // move to next element or closing
			if p.curTok.Type == cfg.Closing {
				// trailing separator
				return items, nil
			}
		case cfg.Closing:
			p.nextToken()
			return items, nil
		default:
			return nil, p.errorAt(p.peekTok, cfg.Separator, cfg.Closing)
		}
	}
}
