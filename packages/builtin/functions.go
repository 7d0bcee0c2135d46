package builtin

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBadArgument is returned, wrapped, when a function argument cannot be
// used. The function still produces a value from its defaults.
var ErrBadArgument = errors.New("bad argument")

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Func computes a template value from its arguments. A non-nil error is a
// warning about the arguments; the returned value is used regardless.
type Func func(args []string) (any, error)

type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{
		funcs: map[string]Func{
			"now":          constant(func() any { return time.Now().UTC().Format(time.RFC3339) }),
			"timestamp":    constant(func() any { return time.Now().Unix() }),
			"timestampMs":  constant(func() any { return time.Now().UnixMilli() }),
			"uuid":         constant(func() any { return uuid.NewString() }),
			"random":       randomInt,
			"randomString": randomAlphanumeric,
			"base64":       encodeBase64,
			"date":         formatDate,
		},
	}
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

var callPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates expr, which must look like name(arg, ...). ok is false
// when expr is not a call or names an unknown function. err reports
// arguments that were ignored in favour of defaults.
func (r *Registry) Call(expr string) (value any, ok bool, err error) {
	m := callPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, false, nil
	}
	fn, found := r.funcs[m[1]]
	if !found {
		return nil, false, nil
	}

	value, err = fn(splitArgs(m[2]))
	if err != nil {
		err = fmt.Errorf("%s(): %w", m[1], err)
	}
	return value, true, err
}

// splitArgs splits a comma-separated argument list. Commas inside single
// or double quotes do not split, and the quotes are dropped.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var (
		args  []string
		cur   strings.Builder
		quote byte
	)
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && ch == ',':
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(args, strings.TrimSpace(cur.String()))
}

func constant(fn func() any) Func {
	return func([]string) (any, error) {
		return fn(), nil
	}
}

func intArg(args []string, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return def, fmt.Errorf("%w: %q is not an integer", ErrBadArgument, args[i])
	}
	return n, nil
}

// randomInt returns an integer in [min, max], 0 and 100 by default.
func randomInt(args []string) (any, error) {
	lo, errLo := intArg(args, 0, 0)
	hi, errHi := intArg(args, 1, 100)
	if hi < lo {
		lo, hi = hi, lo
	}
	return rand.Intn(hi-lo+1) + lo, errors.Join(errLo, errHi)
}

func randomAlphanumeric(args []string) (any, error) {
	n, err := intArg(args, 0, 16)
	if n < 0 {
		n, err = 16, fmt.Errorf("%w: negative length %d", ErrBadArgument, n)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return string(b), err
}

func encodeBase64(args []string) (any, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: nothing to encode", ErrBadArgument)
	}
	return base64.StdEncoding.EncodeToString([]byte(args[0])), nil
}

// formatDate formats the current UTC time with a Go layout, 2006-01-02 by default.
func formatDate(args []string) (any, error) {
	layout := "2006-01-02"
	if len(args) > 0 && args[0] != "" {
		layout = args[0]
	}
	return time.Now().UTC().Format(layout), nil
}
