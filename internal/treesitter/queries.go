package treesitter

// Capture names are highlight class names; see captureClass.

const goQuery = `
(comment) @comment
[(interpreted_string_literal) (raw_string_literal) (rune_literal)] @string
[(int_literal) (float_literal) (imaginary_literal)] @number
[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch"
  "type" "var"
] @keyword
(label_name) @keyword
[(nil) (true) (false) (iota)] @builtin
((identifier) @type
  (#match? @type "^(bool|byte|rune|string|u?int(8|16|32|64)?|uintptr|float(32|64)|complex(64|128)|error|any|comparable)$"))
((identifier) @builtin
  (#match? @builtin "^(append|cap|clear|close|complex|copy|delete|imag|len|make|max|min|new|panic|print|println|real|recover)$"))
[(type_identifier) (package_identifier)] @type
(function_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @function)
(call_expression function: (identifier) @function)
(call_expression function: (selector_expression field: (field_identifier) @function))
(field_identifier) @property
[
  "+" "-" "*" "/" "%" "==" "!=" "<=" ">=" "<" ">" "=" ":=" "&&" "||"
  "!" "&" "|" "^" "<<" ">>" "&^" "+=" "-=" "*=" "/=" "%=" "&=" "|="
  "^=" "<<=" ">>=" "&^=" "<-" "++" "--" "..."
] @operator
["." "," ";" ":" "(" ")" "[" "]" "{" "}"] @punctuation
`

const yamlQuery = `
(comment) @comment
[(double_quote_scalar) (single_quote_scalar) (string_scalar)] @string
[(integer_scalar) (float_scalar)] @number
[(null_scalar) (boolean_scalar)] @builtin
(block_mapping_pair key: (_) @property)
(flow_pair key: (_) @property)
[(anchor_name) (alias_name)] @keyword
(tag) @type
["," ":" "-" "[" "]" "{" "}" ">" "|" "*" "&"] @punctuation
`

const tomlQuery = `
(comment) @comment
[(string) (local_date) (local_time) (local_date_time) (offset_date_time)] @string
[(integer) (float)] @number
(boolean) @builtin
(table [(bare_key) (quoted_key) (dotted_key)] @type)
(table_array_element [(bare_key) (quoted_key) (dotted_key)] @type)
[(bare_key) (quoted_key)] @property
["=" "." "," "[" "]" "[[" "]]" "{" "}"] @punctuation
`

const bashQuery = `
(comment) @comment
[(string) (raw_string) (heredoc_body)] @string
(number) @number
(command_name) @function
(function_definition name: (word) @function)
[
  "if" "then" "else" "elif" "fi" "case" "esac" "for" "while" "until"
  "do" "done" "in" "function" "select"
  "local" "export" "readonly" "declare" "typeset" "unset"
] @keyword
["$" "${" "}" "(" ")" "((" "))" "[" "]" "[[" "]]" "{" "}" ";" ";;" "&&" "||" "|" "&" "<" ">" ">>" "<<" "<<<"] @operator
`
