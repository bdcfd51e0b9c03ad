package body

// Mover binds one body to a registry so the body's owner can opt in and out of
// collision avoidance without holding the registry itself.
type Mover struct {
	body     *Body
	registry *Registry
}

func NewMover(b *Body, r *Registry) *Mover {
	return &Mover{body: b, registry: r}
}

func (m *Mover) Body() *Body {
	return m.body
}

// Activate registers the body.
func (m *Mover) Activate() {
	if m.registry != nil {
		m.registry.Insert(m.body)
	}
}

// Deactivate unregisters the body.
func (m *Mover) Deactivate() {
	if m.registry != nil {
		m.registry.Remove(m.body)
	}
}

func (m *Mover) Active() bool {
	return m.registry != nil && m.registry.Contains(m.body)
}

// FindLikeliestCollision asks the registry for the body this one is about to hit.
// A mover without a registry never sees a threat.
func (m *Mover) FindLikeliestCollision(threshold float64) (*Threat, bool) {
	if m.registry == nil {
		return nil, false
	}
	return m.registry.FindLikeliestCollision(m.body, threshold)
}
