package highlight

import (
	"regexp"
	"strings"
)

// Priorities shared by the builtin rule sets. Comments and strings win over
// everything that could match inside them.
const (
	prioComment = 1
	prioString  = 2
	prioKeyword = 3
	prioType    = 4
	prioNumber  = 5
	prioFunc    = 6
	prioOp      = 7
	prioPunct   = 8
)

func rule(pattern string, class Class, priority int) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Class: class, Priority: priority}
}

func groupRule(pattern string, class Class, priority, group int) Rule {
	r := rule(pattern, class, priority)
	r.Group = group
	return r
}

func words(class Class, priority int, list ...string) Rule {
	return rule(`\b(?:`+strings.Join(list, "|")+`)\b`, class, priority)
}

// Patterns run against escaped text: < > & appear as &lt; &gt; &amp;.
var (
	lineComment   = `//[^\n]*`
	blockComment  = `/\*[\s\S]*?\*/`
	hashComment   = `#[^\n]*`
	doubleQuoted  = `"(?:[^"\\\n]|\\.)*"`
	singleQuoted  = `'(?:[^'\\\n]|\\.)*'`
	backtickQuote = "`(?:[^`\\\\]|\\\\.)*`"
	number        = `\b(?:0[xX][0-9a-fA-F_]+|0[bB][01_]+|\d[\d_]*(?:\.\d+)?(?:[eE][+-]?\d+)?)\b`
	callName      = `\b([A-Za-z_$][\w$]*)\s*\(`
	operators     = `&amp;&amp;|\|\||&lt;=|&gt;=|&lt;|&gt;|&amp;|[-+*/%=!^~?:|]+`
	punctuation   = `[{}\[\]();,.]`
)

func genericRules() []Rule {
	return []Rule{
		rule(lineComment, ClassComment, prioComment),
		rule(blockComment, ClassComment, prioComment),
		rule(doubleQuoted, ClassString, prioString),
		rule(singleQuoted, ClassString, prioString),
		rule(number, ClassNumber, prioNumber),
	}
}

func registerBuiltins(r *Registry) {
	r.Register("javascript", javascriptRules(), "js", "jsx", "mjs", "node")
	r.Register("typescript", typescriptRules(), "ts", "tsx")
	r.Register("python", pythonRules(), "py", "python3")
	r.Register("go", goRules(), "golang")
	r.Register("rust", rustRules(), "rs")
	r.Register("java", javaRules())
	r.Register("css", cssRules(), "scss", "less")
	r.Register("html", htmlRules(), "xml", "svg", "markup")
	r.Register("json", jsonRules(), "jsonc")
	r.Register("bash", bashRules(), "sh", "shell", "zsh")
	r.Register("sql", sqlRules(), "postgres", "mysql", "sqlite")
	r.Register("plaintext", nil, "text", "txt", "plain")
}

func javascriptRules() []Rule {
	return []Rule{
		rule(lineComment, ClassComment, prioComment),
		rule(blockComment, ClassComment, prioComment),
		rule(doubleQuoted, ClassString, prioString),
		rule(singleQuoted, ClassString, prioString),
		rule(backtickQuote, ClassString, prioString),
		words(ClassKeyword, prioKeyword,
			"var", "let", "const", "function", "return", "if", "else", "for", "while", "do",
			"switch", "case", "default", "break", "continue", "new", "delete", "typeof", "instanceof",
			"in", "of", "class", "extends", "super", "this", "import", "export", "from", "as",
			"async", "await", "yield", "try", "catch", "finally", "throw", "void"),
		words(ClassBuiltin, prioType, "true", "false", "null", "undefined", "NaN", "Infinity",
			"console", "window", "document", "Math", "JSON", "Promise", "Array", "Object", "String"),
		rule(number, ClassNumber, prioNumber),
		groupRule(callName, ClassFunction, prioFunc, 1),
		rule(`=&gt;|`+operators, ClassOperator, prioOp),
		rule(punctuation, ClassPunctuation, prioPunct),
	}
}

func typescriptRules() []Rule {
	rules := javascriptRules()
	return append(rules,
		words(ClassKeyword, prioKeyword, "interface", "type", "enum", "implements", "namespace",
			"declare", "readonly", "public", "private", "protected", "abstract", "keyof", "satisfies"),
		words(ClassType, prioType, "string", "number", "boolean", "any", "unknown", "never", "void", "object"),
	)
}

func pythonRules() []Rule {
	return []Rule{
		rule(hashComment, ClassComment, prioComment),
		rule(`"""[\s\S]*?"""|'''[\s\S]*?'''`, ClassString, prioString-1),
		rule(`[rbfRBF]?`+doubleQuoted, ClassString, prioString),
		rule(`[rbfRBF]?`+singleQuoted, ClassString, prioString),
		words(ClassKeyword, prioKeyword,
			"def", "class", "return", "if", "elif", "else", "for", "while", "in", "not", "and", "or",
			"is", "import", "from", "as", "with", "try", "except", "finally", "raise", "pass",
			"break", "continue", "lambda", "yield", "global", "nonlocal", "async", "await", "del", "assert"),
		words(ClassBuiltin, prioType, "True", "False", "None", "self", "print", "len", "range",
			"str", "int", "float", "list", "dict", "set", "tuple"),
		rule(`@[\w.]+`, ClassAttr, prioType),
		rule(number, ClassNumber, prioNumber),
		groupRule(callName, ClassFunction, prioFunc, 1),
		rule(operators, ClassOperator, prioOp),
		rule(punctuation, ClassPunctuation, prioPunct),
	}
}

func goRules() []Rule {
	return []Rule{
		rule(lineComment, ClassComment, prioComment),
		rule(blockComment, ClassComment, prioComment),
		rule(doubleQuoted, ClassString, prioString),
		rule(backtickQuote, ClassString, prioString),
		rule(singleQuoted, ClassString, prioString),
		words(ClassKeyword, prioKeyword,
			"break", "case", "chan", "const", "continue", "default", "defer", "else", "fallthrough",
			"for", "func", "go", "goto", "if", "import", "interface", "map", "package", "range",
			"return", "select", "struct", "switch", "type", "var"),
		words(ClassType, prioType, "bool", "byte", "complex64", "complex128", "error", "float32",
			"float64", "int", "int8", "int16", "int32", "int64", "rune", "string", "uint", "uint8",
			"uint16", "uint32", "uint64", "uintptr", "any"),
		words(ClassBuiltin, prioType, "true", "false", "nil", "iota", "append", "cap", "close",
			"copy", "delete", "len", "make", "new", "panic", "recover", "print", "println"),
		rule(number, ClassNumber, prioNumber),
		groupRule(callName, ClassFunction, prioFunc, 1),
		rule(`:=|&lt;-|`+operators, ClassOperator, prioOp),
		rule(punctuation, ClassPunctuation, prioPunct),
	}
}

func rustRules() []Rule {
	return []Rule{
		rule(lineComment, ClassComment, prioComment),
		rule(blockComment, ClassComment, prioComment),
		rule(doubleQuoted, ClassString, prioString),
		words(ClassKeyword, prioKeyword,
			"as", "break", "const", "continue", "crate", "else", "enum", "extern", "fn", "for", "if",
			"impl", "in", "let", "loop", "match", "mod", "move", "mut", "pub", "ref", "return",
			"self", "Self", "static", "struct", "super", "trait", "type", "unsafe", "use", "where",
			"while", "async", "await", "dyn"),
		words(ClassType, prioType, "i8", "i16", "i32", "i64", "i128", "isize", "u8", "u16", "u32",
			"u64", "u128", "usize", "f32", "f64", "bool", "char", "str", "String", "Vec", "Option", "Result"),
		words(ClassBuiltin, prioType, "true", "false", "Some", "None", "Ok", "Err"),
		groupRule(`\b([a-z_]\w*!)`, ClassFunction, prioFunc, 1),
		rule(number, ClassNumber, prioNumber),
		groupRule(callName, ClassFunction, prioFunc, 1),
		rule(`-&gt;|=&gt;|::|`+operators, ClassOperator, prioOp),
		rule(punctuation, ClassPunctuation, prioPunct),
	}
}

func javaRules() []Rule {
	return []Rule{
		rule(lineComment, ClassComment, prioComment),
		rule(blockComment, ClassComment, prioComment),
		rule(doubleQuoted, ClassString, prioString),
		rule(singleQuoted, ClassString, prioString),
		words(ClassKeyword, prioKeyword,
			"abstract", "break", "case", "catch", "class", "continue", "default", "do", "else",
			"enum", "extends", "final", "finally", "for", "if", "implements", "import", "instanceof",
			"interface", "new", "package", "private", "protected", "public", "return", "static",
			"super", "switch", "this", "throw", "throws", "try", "void", "while", "var", "record"),
		words(ClassType, prioType, "int", "long", "short", "byte", "char", "boolean", "float", "double", "String"),
		words(ClassBuiltin, prioType, "true", "false", "null"),
		rule(`@\w+`, ClassAttr, prioType),
		rule(number, ClassNumber, prioNumber),
		groupRule(callName, ClassFunction, prioFunc, 1),
		rule(operators, ClassOperator, prioOp),
		rule(punctuation, ClassPunctuation, prioPunct),
	}
}

func cssRules() []Rule {
	return []Rule{
		rule(blockComment, ClassComment, prioComment),
		rule(doubleQuoted, ClassString, prioString),
		rule(singleQuoted, ClassString, prioString),
		rule(`@[\w-]+`, ClassKeyword, prioKeyword),
		groupRule(`([\w-]+)\s*:[^;{}\n]*;`, ClassProperty, prioKeyword, 1),
		rule(`#[0-9a-fA-F]{3,8}\b`, ClassNumber, prioNumber),
		rule(`-?\b\d+(?:\.\d+)?(?:px|em|rem|%|vh|vw|s|ms|deg)?`, ClassNumber, prioNumber),
		rule(`[.#][A-Za-z_][\w-]*`, ClassType, prioType),
		rule(`[{}();:,]`, ClassPunctuation, prioPunct),
	}
}

func htmlRules() []Rule {
	return []Rule{
		rule(`&lt;!--[\s\S]*?--&gt;`, ClassComment, prioComment),
		rule(doubleQuoted, ClassString, prioString),
		rule(singleQuoted, ClassString, prioString),
		rule(`&lt;/?[A-Za-z][\w:-]*|/?&gt;`, ClassTag, prioKeyword),
		groupRule(`\s([A-Za-z_:][\w:.-]*)=`, ClassAttr, prioType, 1),
		rule(`&amp;[#\w]+;`, ClassBuiltin, prioNumber),
	}
}

func jsonRules() []Rule {
	return []Rule{
		groupRule(`(`+doubleQuoted+`)\s*:`, ClassProperty, prioString-1, 1),
		rule(doubleQuoted, ClassString, prioString),
		words(ClassBuiltin, prioKeyword, "true", "false", "null"),
		rule(`-?\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b`, ClassNumber, prioNumber),
		rule(`[{}\[\]:,]`, ClassPunctuation, prioPunct),
	}
}

func bashRules() []Rule {
	return []Rule{
		groupRule(`(?m)(?:^|\s)(#[^\n]*)`, ClassComment, prioComment, 1),
		rule(doubleQuoted, ClassString, prioString),
		rule(`'[^']*'`, ClassString, prioString),
		words(ClassKeyword, prioKeyword,
			"if", "then", "else", "elif", "fi", "for", "while", "until", "do", "done", "case", "esac",
			"in", "function", "return", "local", "export", "readonly", "select"),
		words(ClassBuiltin, prioType, "echo", "cd", "printf", "read", "source", "exit", "set",
			"unset", "shift", "test", "eval", "exec", "trap"),
		rule(`\$\{[^}\n]*\}|\$[\w@#?$!*-]`, ClassProperty, prioType),
		rule(number, ClassNumber, prioNumber),
		rule(`\|\||&amp;&amp;|[|;]`, ClassOperator, prioOp),
	}
}

func sqlRules() []Rule {
	return []Rule{
		rule(`--[^\n]*`, ClassComment, prioComment),
		rule(blockComment, ClassComment, prioComment),
		rule(singleQuoted, ClassString, prioString),
		rule(`(?i)\b(?:select|from|where|insert|into|values|update|set|delete|create|table|drop|alter|`+
			`join|left|right|inner|outer|on|group|by|order|having|limit|offset|as|and|or|not|null|is|`+
			`in|like|between|distinct|union|all|primary|key|foreign|references|index|default|case|when|then|else|end)\b`,
			ClassKeyword, prioKeyword),
		rule(`(?i)\b(?:int|integer|bigint|text|varchar|char|boolean|date|timestamp|numeric|real|serial)\b`, ClassType, prioType),
		rule(number, ClassNumber, prioNumber),
		groupRule(callName, ClassFunction, prioFunc, 1),
		rule(`&lt;&gt;|!=|&lt;=|&gt;=|[=*+/%-]|&lt;|&gt;`, ClassOperator, prioOp),
		rule(`[(),;.]`, ClassPunctuation, prioPunct),
	}
}
