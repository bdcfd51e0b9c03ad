package simulation

// Health is a hit point pool that refills over time.
type Health struct {
	current float64
	max     float64
	rate    float64
}

func NewHealth(starting, maxHealth, healingRate float64) *Health {
	if maxHealth <= 0 {
		maxHealth = starting
	}
	return &Health{current: min(starting, maxHealth), max: maxHealth, rate: healingRate}
}

func (h *Health) Current() float64 { return h.current }
func (h *Health) Full() bool       { return h.current >= h.max }

// Percentage is the fraction of max health left, in [0, 1].
func (h *Health) Percentage() float64 {
	if h.max <= 0 {
		return 0
	}
	return h.current / h.max
}

// TakeDamage removes amount and reports whether the pool went below zero.
func (h *Health) TakeDamage(amount float64) (dead bool) {
	h.current -= amount
	if h.current < 0 {
		h.current = 0
		return true
	}
	return false
}

// Heal refills for dt seconds. It reports true on the call that tops the pool up.
func (h *Health) Heal(dt float64) (restored bool) {
	if h.Full() {
		return false
	}
	h.current += h.rate * dt
	if h.current >= h.max {
		h.current = h.max
		return true
	}
	return false
}
