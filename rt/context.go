package rt

// EvalContext carries processing-state fields for boolean gates.
// Gate expressions reference fields via $$self{Make} or bare scalars
// like $count; the dispatcher fills the context from the file being
// processed before invoking gates.
type EvalContext struct {
	fields map[string]Value
}

// NewEvalContext creates a context with the given fields.
// The map is used directly; callers must not mutate it afterwards.
func NewEvalContext(fields map[string]Value) *EvalContext {
	return &EvalContext{fields: fields}
}

// Get returns the named field, or undef when absent or when the
// context itself is nil. Missing fields behave as undefined scalars,
// so gates over absent state evaluate to false rather than failing.
func (c *EvalContext) Get(name string) Value {
	if c == nil || c.fields == nil {
		return Undef()
	}
	v, ok := c.fields[name]
	if !ok {
		return Undef()
	}
	return v
}

// Set stores a field value, creating the map on first use.
func (c *EvalContext) Set(name string, v Value) {
	if c.fields == nil {
		c.fields = make(map[string]Value)
	}
	c.fields[name] = v
}
