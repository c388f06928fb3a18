package stdlib

import (
	"strings"
	"unicode/utf8"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// registerText registers the string functions.
func (r *Registry) registerText() {
	r.Register("quote", textQuote)
	r.Register("unquote", textUnquote)
	r.Register("str-length", textLength)
	r.Register("str-index", textIndex)
	r.Register("str-slice", textSlice)
	r.Register("to-upper-case", textMap("to-upper-case", strings.ToUpper))
	r.Register("to-lower-case", textMap("to-lower-case", strings.ToLower))
}

// textQuote wraps the text in double quotes, as it should appear in CSS.
func textQuote(args []types.Value) (types.Value, error) {
	if err := requireArgs("quote", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := textArg("quote", args, 0)
	if err != nil {
		return nil, err
	}
	if isQuoted(s) {
		return types.NewString(s), nil
	}
	return types.NewString(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`), nil
}

// textUnquote returns the text as a bare identifier.
func textUnquote(args []types.Value) (types.Value, error) {
	if err := requireArgs("unquote", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := textArg("unquote", args, 0)
	if err != nil {
		return nil, err
	}
	if isQuoted(s) {
		s = s[1 : len(s)-1]
	}
	return types.NewIdent(s), nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}

func textLength(args []types.Value) (types.Value, error) {
	if err := requireArgs("str-length", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := textArg("str-length", args, 0)
	if err != nil {
		return nil, err
	}
	return types.NewNumeric(float64(utf8.RuneCountInString(s)), types.UnitNone), nil
}

// textIndex returns the 1-based rune position of a substring, or false.
func textIndex(args []types.Value) (types.Value, error) {
	if err := requireArgs("str-index", args, 2, 2); err != nil {
		return nil, err
	}
	s, err := textArg("str-index", args, 0)
	if err != nil {
		return nil, err
	}
	sub, err := textArg("str-index", args, 1)
	if err != nil {
		return nil, err
	}
	i := strings.Index(s, sub)
	if i < 0 {
		return types.False, nil
	}
	return types.NewNumeric(float64(utf8.RuneCountInString(s[:i])+1), types.UnitNone), nil
}

// textSlice returns the runes from start to end, both 1-based and
// inclusive. end defaults to the last rune.
func textSlice(args []types.Value) (types.Value, error) {
	if err := requireArgs("str-slice", args, 2, 3); err != nil {
		return nil, err
	}
	s, err := textArg("str-slice", args, 0)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	start, err := numberArg("str-slice", args, 1)
	if err != nil {
		return nil, err
	}
	end := types.NewNumeric(float64(len(runes)), types.UnitNone)
	if len(args) == 3 {
		if end, err = numberArg("str-slice", args, 2); err != nil {
			return nil, err
		}
	}
	from := clamp(int(start.Magnitude()), len(runes))
	to := clamp(int(end.Magnitude()), len(runes))
	if from < 1 {
		from = 1
	}
	if to < from {
		return types.NewString(""), nil
	}
	return types.NewString(string(runes[from-1 : to])), nil
}

// clamp maps a 1-based index, negative counting from the end, into 0..n.
func clamp(i, n int) int {
	if i < 0 {
		i = n + i + 1
	}
	return max(0, min(i, n))
}

func textMap(name string, f func(string) string) types.Builtin {
	return func(args []types.Value) (types.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		switch v := args[0].(type) {
		case types.StringValue:
			return types.NewString(f(v.Text())), nil
		case types.Ident:
			return types.NewIdent(f(v.Name())), nil
		}
		return nil, types.NewParameterError(name, "argument 1 must be a string, got %s", args[0].Kind())
	}
}
