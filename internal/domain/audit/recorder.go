package audit

import (
	"encoding/json"

	"coop-lending-engine/internal/domain/jsonmap"
)

// Diff compares before and after over a fixed allow-list of tracked fields
// and returns an entry carrying only the fields that changed. It returns
// nil when nothing on the allow-list changed, so no-op mutations produce no
// audit noise. actor may be nil for system-originated changes.
func Diff(entity, entityID string, actor *string, action Action, tracked []string, before, after jsonmap.Map) *Entry {
	prev := jsonmap.Map{}
	next := jsonmap.Map{}
	for _, field := range tracked {
		b, inBefore := before[field]
		a, inAfter := after[field]
		if !inBefore && !inAfter {
			continue
		}
		if sameValue(b, a) {
			continue
		}
		prev[field] = b
		next[field] = a
	}
	if len(next) == 0 {
		return nil
	}
	return &Entry{
		Entity:     entity,
		EntityID:   entityID,
		ActorID:    actor,
		Action:     action,
		PrevValues: prev,
		NewValues:  next,
		Metadata:   jsonmap.Map{},
	}
}

// sameValue compares tracked values through their JSON form, which keeps
// nested maps and numeric wrappers comparable without reflection rules.
func sameValue(a, b any) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(ab) == string(bb)
}
