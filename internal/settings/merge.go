package settings

import (
	"encoding/json"
	"fmt"
)

// Apply merges patch onto doc and returns the new document together with
// the modules the patch touched, in canonical order. Each module is a
// shallow replace-by-key merge: keys absent from the patch keep their
// current value, keys present replace the whole value (nested objects
// included). doc itself is never modified. The patch must already have
// passed Validate.
func Apply(doc Document, patch Patch) (Document, []Module, error) {
	next := doc
	touched := make([]Module, 0, len(patch))
	for _, m := range Modules {
		raw, ok := patch[string(m)]
		if !ok {
			continue
		}
		var err error
		switch m {
		case ModuleGeneral:
			next.General, err = mergeSection(doc.General, raw)
		case ModuleSecurity:
			next.Security, err = mergeSection(doc.Security, raw)
		case ModulePayments:
			next.Payments, err = mergeSection(doc.Payments, raw)
		case ModuleStore:
			next.Store, err = mergeSection(doc.Store, raw)
		case ModuleLeagues:
			next.Leagues, err = mergeSection(doc.Leagues, raw)
		case ModuleBroadcast:
			next.Broadcast, err = mergeSection(doc.Broadcast, raw)
		case ModuleNotifications:
			next.Notifications, err = mergeSection(doc.Notifications, raw)
		case ModuleLGPD:
			next.LGPD, err = mergeSection(doc.LGPD, raw)
		case ModuleIntegrations:
			next.Integrations, err = mergeSection(doc.Integrations, raw)
		}
		if err != nil {
			return doc, nil, fmt.Errorf("merge %s: %w", m, err)
		}
		touched = append(touched, m)
	}
	return next, touched, nil
}

func mergeSection[T any](current T, raw json.RawMessage) (T, error) {
	var out T
	base, err := json.Marshal(current)
	if err != nil {
		return out, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return out, err
	}
	overlay := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return out, err
	}
	for key, value := range overlay {
		fields[key] = value
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, err
	}
	return out, nil
}
