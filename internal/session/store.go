package session

// Store is the shared variable map a lesson's widgets read and write.
// Values are untyped: a name may hold a number, a string, a bool, a list,
// or a record, and may change kind across writes. Later writes overwrite.
type Store struct {
	variables map[string]any
	selected  any
}

func NewStore() *Store {
	return &Store{variables: make(map[string]any)}
}

// SetVariable always succeeds and overwrites any previous value.
func (s *Store) SetVariable(name string, value any) {
	s.variables[name] = value
}

// Variable reports the current value for name and whether it is set.
func (s *Store) Variable(name string) (any, bool) {
	v, ok := s.variables[name]
	return v, ok
}

// Variables returns a copy of the current variable map.
func (s *Store) Variables() map[string]any {
	out := make(map[string]any, len(s.variables))
	for k, v := range s.variables {
		out[k] = v
	}
	return out
}

// SetSelected records the drag-selection side channel used by drop targets.
func (s *Store) SetSelected(value any) {
	s.selected = value
}

func (s *Store) Selected() any {
	return s.selected
}

// ResetVariables clears every variable and the selection side channel.
func (s *Store) ResetVariables() {
	s.variables = make(map[string]any)
	s.selected = nil
}
