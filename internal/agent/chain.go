package agent

// Entry is one stage's output as seen by later stages.
type Entry struct {
	Stage  string
	Output string
}

// Chain is the append-only context passed from one stage to the next.
type Chain struct {
	entries []Entry
}

// Append returns a new chain; the receiver is not modified.
func (c Chain) Append(stage, output string) Chain {
	entries := make([]Entry, len(c.entries), len(c.entries)+1)
	copy(entries, c.entries)
	return Chain{entries: append(entries, Entry{Stage: stage, Output: output})}
}

// Last returns the most recent entry.
func (c Chain) Last() (Entry, bool) {
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	return c.entries[len(c.entries)-1], true
}

func (c Chain) Len() int {
	return len(c.entries)
}

func (c Chain) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
