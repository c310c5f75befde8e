package config

import (
	"github.com/ytget/scene-archiver/internal/model"
)

// LoadSection reads the compression section of a project settings map, as
// handed to the host's pre-load hook. A missing section is seeded with the
// defaults. It returns false when settings is empty.
func LoadSection(settings map[string]any) (model.ArchiveSettings, bool) {
	if len(settings) == 0 {
		return model.DefaultSettings(), false
	}

	section, ok := settings[SectionCompression].(map[string]any)
	if !ok {
		defaults := model.DefaultSettings()
		section = map[string]any{
			KeyType:      defaults.Format.String(),
			KeyZipLevel:  defaults.ZipMethod.String(),
			KeyDeleteOld: defaults.DeleteOld,
		}
		settings[SectionCompression] = section
	}

	values := model.DefaultSettings()
	if v, ok := section[KeyType].(string); ok {
		values.Format = model.ArchiveFormat(v)
	}
	if v, ok := section[KeyZipLevel].(string); ok {
		values.ZipMethod = model.ZipMethod(v)
	}
	if v, ok := section[KeyDeleteOld].(bool); ok {
		values.DeleteOld = v
	}
	return values, true
}

// SaveSection writes values into the compression section of a project
// settings map, as handed to the host's pre-save hook. An existing section is
// overwritten.
func SaveSection(settings map[string]any, values model.ArchiveSettings) {
	if settings == nil {
		return
	}
	settings[SectionCompression] = map[string]any{
		KeyType:      values.Format.String(),
		KeyZipLevel:  values.ZipMethod.String(),
		KeyDeleteOld: values.DeleteOld,
	}
}
