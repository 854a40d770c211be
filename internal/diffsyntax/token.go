// Package diffsyntax implements the diff-language lexer/parser: diff
// source to patch AST, including nested token streams and selector
// expressions. It reuses the QML token scanner
// (internal/qmltoken) with the diff language's own keyword set, since both
// grammars share identifier/number/string/symbol/hash-reference lexing.
package diffsyntax

import "github.com/oxhq/qmldiff/internal/qmltoken"

// Keywords are the diff language's reserved words.
var Keywords = map[string]bool{
	"VERSION": true, "AFFECT": true, "END": true, "IMPORT": true,
	"TRAVERSE": true, "ASSERT": true, "LOCATE": true, "BEFORE": true,
	"AFTER": true, "ALL": true, "INSERT": true, "SLOT": true,
	"TEMPLATE": true, "REMOVE": true, "REPLACE": true, "WITH": true,
	"REPLICATE": true, "RENAME": true, "TO": true, "REBUILD": true,
	"REDEFINE": true, "UNTIL": true, "LOCATED": true, "ARGUMENT": true,
	"AT": true, "STREAM": true, "LOAD": true, "AS": true,
}

func lex(src []byte) ([]qmltoken.Token, error) {
	lx := qmltoken.NewWithKeywords(src, Keywords)
	var toks []qmltoken.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == qmltoken.EOF {
			return toks, nil
		}
	}
}
