package assertions

// Report collects the results of a run in the order they were produced.
type Report struct {
	Results []*Result
}

func (r *Report) Add(results ...*Result) {
	r.Results = append(r.Results, results...)
}

func (r *Report) Passed() int {
	return r.count(func(res *Result) bool { return res.Passed })
}

func (r *Report) Failed() int {
	return r.count(func(res *Result) bool { return res.Failed() })
}

func (r *Report) Skipped() int {
	return r.count(func(res *Result) bool { return res.Skipped })
}

// OK reports whether no result failed. Skipped results do not count as failures.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// Failures returns the failed results.
func (r *Report) Failures() []*Result {
	var out []*Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) count(pred func(*Result) bool) int {
	n := 0
	for _, res := range r.Results {
		if pred(res) {
			n++
		}
	}
	return n
}
