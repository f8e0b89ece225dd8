package conf

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/viper"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

// legacyKeys maps the flat keys of the first config.json format to their
// section and key. Keys whose name did not change are not listed.
var legacyKeys = map[string][2]string{
	"save_path_bing":        {"paths", "bing"},
	"save_path_spotlight":   {"paths", "spotlight"},
	"bing_regions":          {"bing", "regions"},
	"spotlight_batch_count": {"spotlight", "batch_count"},
	"spotlight_country":     {"spotlight", "country"},
	"spotlight_locale":      {"spotlight", "locale"},
}

// migrateLegacyKeys copies legacy keys found in the config file into the
// config layer under their current names, so environment overrides still
// win. A current key in the same file takes precedence. It returns the
// legacy keys that were applied.
func migrateLegacyKeys(v *viper.Viper) ([]string, error) {
	var applied []string
	for _, old := range slices.Sorted(maps.Keys(legacyKeys)) {
		section, key := legacyKeys[old][0], legacyKeys[old][1]
		if !v.InConfig(old) || v.InConfig(section+"."+key) {
			continue
		}
		err := v.MergeConfigMap(map[string]any{section: map[string]any{key: v.Get(old)}})
		if err != nil {
			return nil, errors.New(fmt.Errorf("error migrating legacy key %s: %w", old, err)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
		applied = append(applied, old)
	}
	return applied, nil
}
