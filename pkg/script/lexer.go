package script

import "github.com/alecthomas/participle/v2/lexer"

// scriptLexer splits a stimulus script into tokens. Newlines are significant:
// every statement sits on its own line.
var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n\r]*`},
	{Name: "EOL", Pattern: `[\n\r]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Hex", Pattern: `0[xX][0-9a-fA-F]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_\-]*`},
})
