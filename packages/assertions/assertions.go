package assertions

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/paychain/packages/capture"
	"github.com/abdul-hamid-achik/paychain/packages/http"
)

// Result is the outcome of one check. A skipped result is neither passed
// nor failed.
type Result struct {
	Name     string
	Passed   bool
	Skipped  bool
	Message  string
	Expected any
	Actual   any
}

func (r *Result) Failed() bool {
	return !r.Passed && !r.Skipped
}

func pass(name string) *Result {
	return &Result{Name: name, Passed: true}
}

func fail(name, format string, args ...any) *Result {
	return &Result{Name: name, Message: fmt.Sprintf(format, args...)}
}

func skip(name, format string, args ...any) *Result {
	return &Result{Name: name, Skipped: true, Message: fmt.Sprintf(format, args...)}
}

// StatusSuccess passes iff the status code is in [200,299].
func StatusSuccess(name string, resp *http.Response) *Result {
	r := &Result{Name: name, Expected: "2xx", Actual: resp.StatusCode}
	if resp.IsSuccess() {
		r.Passed = true
		return r
	}
	r.Message = fmt.Sprintf("expected status 2xx, got %d", resp.StatusCode)
	return r
}

// HeaderContains passes iff the named header is present and its value
// contains substring. The header lookup ignores case.
func HeaderContains(name string, resp *http.Response, header, substring string) *Result {
	value, ok := resp.LookupHeader(header)
	if !ok {
		r := fail(name, "expected header %s to be present", header)
		r.Expected = substring
		return r
	}

	r := &Result{Name: name, Expected: substring, Actual: value}
	if strings.Contains(value, substring) {
		r.Passed = true
		return r
	}
	r.Message = fmt.Sprintf("expected header %s '%s' to include '%s'", header, value, substring)
	return r
}

// JSONBody passes iff the body parsed as a JSON object.
func JSONBody(name string, parsed capture.ParseResult) *Result {
	if parsed.Failed() {
		return fail(name, "%v", parsed.Err)
	}
	return pass(name)
}

// FieldEquals compares body[path] with expected using JSON equality. It
// runs only when the guard field is present and not null; otherwise the
// result is skipped rather than failed. The guard defaults to path.
func FieldEquals(name string, body capture.Body, path string, expected any, guard ...string) *Result {
	g := path
	if len(guard) > 0 && guard[0] != "" {
		g = guard[0]
	}
	if _, ok := body.Get(g); !ok {
		r := skip(name, "skipped: %s is undefined", g)
		r.Expected = expected
		return r
	}

	r := &Result{Name: name, Expected: expected}
	value, ok := body.Get(path)
	if !ok {
		r.Message = fmt.Sprintf("expected %s to equal %s, got undefined", path, formatJSON(expected))
		return r
	}
	r.Actual = value.Interface()

	if equal, msg := jsonEqual(r.Actual, expected); !equal {
		r.Message = msg
		return r
	}
	r.Passed = true
	return r
}

// FieldExists passes iff the key is present in the body. A null value
// counts as present. Unlike FieldEquals it is never skipped.
func FieldExists(name string, body capture.Body, path string) *Result {
	if body.Has(path) {
		r := pass(name)
		if v, ok := body.Get(path); ok {
			r.Actual = v.Interface()
		}
		return r
	}
	return fail(name, "expected %s to exist", path)
}
