package script

import "github.com/alecthomas/participle/v2/lexer"

type scriptFile struct {
	Statements []*statementNode `EOL* ( @@ EOL+ )*`
}

type statementNode struct {
	Pos lexer.Position

	Reset  bool        `  @"reset"`
	TRST   bool        `| @"trst"`
	TMS    *bitsNode   `| "tms" @@`
	Goto   string      `| "goto" @Ident`
	Shift  *bitsNode   `| "shift" @@`
	Idle   *int        `| "idle" @Int`
	ScanIR *bitsNode   `| "scanir" @@`
	ScanDR *bitsNode   `| "scandr" @@`
	Expect *expectNode `| "expect" @@`
}

// bitsNode accepts bits as separate words, packed ("0110") or both.
type bitsNode struct {
	Groups []string `@Int+`
}

type expectNode struct {
	State string    `  "state" @Ident`
	IR    *string   `| "ir" @( Hex | Int )`
	TDO   *string   `| "tdo" @Int`
	Pulse string    `| "pulse" @Ident`
	DR    *bitsNode `| "dr" @@`
}
