package engine

// Entry is one audit record. Rejections carry Code, Message and Constraint;
// scoring records carry Scorer and Score.
type Entry struct {
	Stage      string  `json:"stage"`
	Candidate  string  `json:"candidate"`
	Code       string  `json:"code,omitempty"`
	Message    string  `json:"message,omitempty"`
	Constraint string  `json:"constraint,omitempty"`
	Scorer     string  `json:"scorer,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// IsRejection reports whether the entry records a dropped candidate.
func (e Entry) IsRejection() bool { return e.Code != "" }

// Audit is an append-only log that shares its history with the audit it was
// derived from. Deriving a child is O(1): the child remembers how many
// entries the parent had at that point and never sees later parent writes.
type Audit struct {
	parent    *Audit
	parentLen int
	entries   []Entry
}

func NewAudit() *Audit { return &Audit{} }

// Child derives an audit that starts with a's current entries.
func (a *Audit) Child() *Audit {
	return &Audit{parent: a, parentLen: len(a.entries)}
}

func (a *Audit) Add(e Entry) { a.entries = append(a.entries, e) }

// Len counts entries including inherited ones.
func (a *Audit) Len() int {
	n := 0
	for cur, limit := a, len(a.entries); cur != nil; {
		n += limit
		limit = cur.parentLen
		cur = cur.parent
	}
	return n
}

// Entries returns every visible entry, oldest first.
func (a *Audit) Entries() []Entry {
	var chain [][]Entry
	for cur, limit := a, len(a.entries); cur != nil; {
		chain = append(chain, cur.entries[:limit])
		limit = cur.parentLen
		cur = cur.parent
	}

	out := make([]Entry, 0, a.Len())
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i]...)
	}
	return out
}

// ViolationCounts tallies rejections by violation code.
func (a *Audit) ViolationCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range a.Entries() {
		if e.IsRejection() {
			counts[e.Code]++
		}
	}
	return counts
}
