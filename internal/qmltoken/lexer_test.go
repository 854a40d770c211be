package qmltoken

import "testing"

func collect(t *testing.T, src string) []Token {
	t.Helper()
	lx := New([]byte(src))
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLexIdentifiersAndKeywords(t *testing.T) {
	toks := collect(t, "Item property visible")
	want := []Kind{Identifier, Keyword, Identifier}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexStringPreservesQuote(t *testing.T) {
	toks := collect(t, `"red" 'blue'`)
	if len(toks) != 2 {
		t.Fatalf("got %d tokens", len(toks))
	}
	if toks[0].Text != `"red"` || toks[1].Text != `'blue'` {
		t.Errorf("unexpected string text: %q %q", toks[0].Text, toks[1].Text)
	}
}

func TestLexHashRef(t *testing.T) {
	toks := collect(t, "~&12345&~")
	if len(toks) != 1 || toks[0].Kind != HashRef || toks[0].Hash != 12345 {
		t.Fatalf("unexpected hashref token: %+v", toks)
	}
}

func TestLexSlotRef(t *testing.T) {
	toks := collect(t, "~{footer}~")
	if len(toks) != 1 || toks[0].Kind != SlotRef || toks[0].Name != "footer" {
		t.Fatalf("unexpected slotref token: %+v", toks)
	}
}

func TestLexCommentsDropped(t *testing.T) {
	toks := collect(t, "a // comment\nb /* block */ c")
	var kinds []Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	want := []Kind{Identifier, Newline, Identifier, Identifier}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want kinds %v", kinds, want)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %v, want %v", i, kinds[i], k)
		}
	}
}

func TestLexUnterminatedStringFails(t *testing.T) {
	lx := New([]byte(`"unterminated`))
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected LexError for unterminated string")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

func TestLexBalancedSymbols(t *testing.T) {
	toks := collect(t, "{}():;,.=!<>")
	if len(toks) != len("{}():;,.=!<>") {
		t.Fatalf("got %d tokens, want one per symbol char", len(toks))
	}
	for _, tk := range toks {
		if tk.Kind != Symbol {
			t.Errorf("expected symbol, got %v for %q", tk.Kind, tk.Text)
		}
	}
}
