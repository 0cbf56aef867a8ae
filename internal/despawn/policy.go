package despawn

// TTLPolicy decides the despawn countdown for a newly tracked item.
type TTLPolicy struct {
	EnforceFloor bool
	FloorSeconds int
}

// Resolve picks the TTL in seconds. An explicit per-item override always
// wins and is never clamped; profile-derived TTLs are clamped up to the
// floor when enforcement is on. Requests are silently clamped, not
// rejected.
func (p TTLPolicy) Resolve(overrideSeconds, profileSeconds int) int {
	if overrideSeconds > 0 {
		return overrideSeconds
	}
	ttl := profileSeconds
	if p.EnforceFloor && ttl < p.FloorSeconds {
		ttl = p.FloorSeconds
	}
	return ttl
}
