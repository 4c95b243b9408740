package config

import "reflect"

// RestartRequired lists changed sections that are not hot-applied.
// Only logging is applied live; everything else is read once at startup.
func RestartRequired(oldCfg, newCfg *Config) []string {
	if oldCfg == nil || newCfg == nil {
		return nil
	}
	var changed []string
	if oldCfg.Practicum != newCfg.Practicum {
		changed = append(changed, "practicum")
	}
	if oldCfg.Telegram != newCfg.Telegram {
		changed = append(changed, "telegram")
	}
	if oldCfg.Poll != newCfg.Poll {
		changed = append(changed, "poll")
	}
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
	}
	return changed
}
