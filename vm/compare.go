package vm

import "fmt"

// Mismatch describes the first position where two programs diverge.
// Got or Want is empty when one program is a prefix of the other.
type Mismatch struct {
	Index int
	Got   string
	Want  string
}

func (m *Mismatch) Error() string {
	switch {
	case m.Got == "":
		return fmt.Sprintf("instruction %d: missing, want '%s'", m.Index, m.Want)
	case m.Want == "":
		return fmt.Sprintf("instruction %d: unexpected '%s'", m.Index, m.Got)
	}
	return fmt.Sprintf("instruction %d: got '%s', want '%s'", m.Index, m.Got, m.Want)
}

// Compare returns nil when got and want are identical.
func Compare(got, want Program) *Mismatch {
	for i := 0; i < len(got) || i < len(want); i++ {
		m := &Mismatch{Index: i}
		if i < len(got) {
			m.Got = got[i].String()
		}
		if i < len(want) {
			m.Want = want[i].String()
		}
		if m.Got != m.Want {
			return m
		}
	}
	return nil
}
